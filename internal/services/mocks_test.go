package services

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	log.SetOutput(io.Discard)
	return log
}

// mockRideRepository keeps rides in a map and reproduces the store's
// conditional-update semantics: Accept checks its predicate and mutates
// under one lock, so concurrent callers serialize exactly like
// concurrent findOneAndUpdate calls on a single document.
type mockRideRepository struct {
	mu    sync.RWMutex
	rides map[primitive.ObjectID]*models.Ride

	AcceptCallCount int32

	CreateError      error
	AcceptError      error
	GetByIDError     error
	SetChatroomError error
}

func newMockRideRepository() *mockRideRepository {
	return &mockRideRepository{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (m *mockRideRepository) AddRide(ride *models.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	m.rides[ride.ID] = ride
}

func copyRide(ride *models.Ride) *models.Ride {
	c := *ride
	c.Members = append([]primitive.ObjectID(nil), ride.Members...)
	return &c
}

func (m *mockRideRepository) Create(ctx context.Context, ride *models.Ride) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	m.rides[ride.ID] = copyRide(ride)
	return nil
}

func (m *mockRideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return copyRide(ride), nil
}

func (m *mockRideRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return interfaces.ErrNotFound
	}
	return nil
}

func (m *mockRideRepository) Accept(ctx context.Context, id, userID primitive.ObjectID) (*models.Ride, error) {
	atomic.AddInt32(&m.AcceptCallCount, 1)
	if m.AcceptError != nil {
		return nil, m.AcceptError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, interfaces.ErrNotAccepted
	}
	if ride.Status != models.RideStatusAwaitingMemberJoin || ride.AcceptedBy != nil || ride.HasMember(userID) {
		return nil, interfaces.ErrNotAccepted
	}
	now := time.Now()
	acceptedBy := userID
	ride.AcceptedBy = &acceptedBy
	ride.AcceptedAt = &now
	ride.Status = models.RideStatusAccepted
	ride.Members = append(ride.Members, userID)
	return copyRide(ride), nil
}

func (m *mockRideRepository) SetChatroom(ctx context.Context, id, chatroomID primitive.ObjectID) error {
	if m.SetChatroomError != nil {
		return m.SetChatroomError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	ride.ChatroomID = &chatroomID
	return nil
}

func (m *mockRideRepository) GetOpenRides(ctx context.Context, excludeMember primitive.ObjectID) ([]*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*models.Ride, 0, len(m.rides))
	for _, ride := range m.rides {
		if !ride.IsOpen() || ride.HasMember(excludeMember) {
			continue
		}
		result = append(result, copyRide(ride))
	}
	return result, nil
}

func (m *mockRideRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*models.Ride, 0)
	for _, ride := range m.rides {
		if ride.RiderID == userID || ride.HasMember(userID) {
			result = append(result, copyRide(ride))
		}
	}
	return result, nil
}

// GetRide returns the stored ride for assertions.
func (m *mockRideRepository) GetRide(id primitive.ObjectID) *models.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

type mockChatroomRepository struct {
	mu        sync.RWMutex
	chatrooms map[primitive.ObjectID]*models.Chatroom

	CreateCallCount int32

	CreateError        error
	AppendMessageError error
}

func newMockChatroomRepository() *mockChatroomRepository {
	return &mockChatroomRepository{chatrooms: make(map[primitive.ObjectID]*models.Chatroom)}
}

func (m *mockChatroomRepository) AddChatroom(chatroom *models.Chatroom) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chatroom.ID.IsZero() {
		chatroom.ID = primitive.NewObjectID()
	}
	m.chatrooms[chatroom.ID] = chatroom
}

func copyChatroom(chatroom *models.Chatroom) *models.Chatroom {
	c := *chatroom
	c.Participants = append([]primitive.ObjectID(nil), chatroom.Participants...)
	c.Messages = append([]models.ChatMessage(nil), chatroom.Messages...)
	return &c
}

func (m *mockChatroomRepository) Create(ctx context.Context, chatroom *models.Chatroom) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	chatroom.ID = primitive.NewObjectID()
	chatroom.CreatedAt = time.Now()
	m.chatrooms[chatroom.ID] = copyChatroom(chatroom)
	return nil
}

func (m *mockChatroomRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chatroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chatroom, ok := m.chatrooms[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return copyChatroom(chatroom), nil
}

func (m *mockChatroomRepository) GetByRideID(ctx context.Context, rideID primitive.ObjectID) (*models.Chatroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, chatroom := range m.chatrooms {
		if chatroom.RideID == rideID {
			return copyChatroom(chatroom), nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockChatroomRepository) AppendMessage(ctx context.Context, id primitive.ObjectID, message *models.ChatMessage) error {
	if m.AppendMessageError != nil {
		return m.AppendMessageError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	chatroom, ok := m.chatrooms[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	chatroom.Messages = append(chatroom.Messages, *message)
	return nil
}

func (m *mockChatroomRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Chatroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*models.Chatroom, 0)
	for _, chatroom := range m.chatrooms {
		if chatroom.HasParticipant(userID) {
			result = append(result, copyChatroom(chatroom))
		}
	}
	return result, nil
}

// GetChatroom returns the stored chatroom for assertions.
func (m *mockChatroomRepository) GetChatroom(id primitive.ObjectID) *models.Chatroom {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chatrooms[id]
}

type mockUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User

	CreateError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *mockUserRepository) AddUser(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = user
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	c := *user
	return &c, nil
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*models.User, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if user, ok := m.users[id]; ok {
			c := *user
			result = append(result, &c)
		}
	}
	return result, nil
}

func (m *mockUserRepository) GetByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == identifier || user.Phone == identifier {
			c := *user
			return &c, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return interfaces.ErrNotFound
	}
	return nil
}

// capturedEvent is one Publish call recorded by the stub publisher.
type capturedEvent struct {
	Event   string
	Payload interface{}
}

// stubPublisher records published events for assertions. Publish is
// fire-and-forget in production; here it just appends under a lock.
type stubPublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func newStubPublisher() *stubPublisher {
	return &stubPublisher{}
}

func (p *stubPublisher) Publish(event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Event: event, Payload: payload})
}

func (p *stubPublisher) Events() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}

func (p *stubPublisher) EventsNamed(name string) []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []capturedEvent
	for _, e := range p.events {
		if e.Event == name {
			result = append(result, e)
		}
	}
	return result
}
