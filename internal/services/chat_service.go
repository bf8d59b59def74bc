package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrChatroomNotFound     = errors.New("chatroom not found")
	ErrChatroomAccessDenied = errors.New("not authorized to access this chatroom")
	ErrEmptyMessage         = errors.New("message is required")
)

type ChatService interface {
	GetChatroomForRide(ctx context.Context, rideID, userID primitive.ObjectID) (*ChatroomView, error)
	PostMessage(ctx context.Context, chatroomID, senderID primitive.ObjectID, text string) (*ChatroomView, error)
	ListMyChatrooms(ctx context.Context, userID primitive.ObjectID) ([]*ChatroomView, error)
}

// ChatroomView is a chatroom with participant ids and message senders
// resolved to names.
type ChatroomView struct {
	ChatroomID   string               `json:"chatroomId"`
	RideID       string               `json:"rideId"`
	Participants []models.UserSummary `json:"participants"`
	Messages     []MessageView        `json:"messages"`
	IsActive     bool                 `json:"isActive"`
	CreatedAt    time.Time            `json:"createdAt"`
}

type MessageView struct {
	Sender    MessageSender `json:"sender"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

type chatService struct {
	chatroomRepo interfaces.ChatroomRepository
	rideRepo     interfaces.RideRepository
	userRepo     interfaces.UserRepository
	events       EventPublisher
	logger       *logger.Logger
}

func NewChatService(
	chatroomRepo interfaces.ChatroomRepository,
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	events EventPublisher,
	log *logger.Logger,
) ChatService {
	return &chatService{
		chatroomRepo: chatroomRepo,
		rideRepo:     rideRepo,
		userRepo:     userRepo,
		events:       events,
		logger:       log,
	}
}

// GetChatroomForRide returns the ride's chatroom to its creator or any
// member. The room is located by ride id, falling back through the
// ride's chatroom back-reference for rooms created before the backfill
// completed.
func (s *chatService) GetChatroomForRide(ctx context.Context, rideID, userID primitive.ObjectID) (*ChatroomView, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if !ride.CanView(userID) {
		return nil, ErrChatroomAccessDenied
	}

	chatroom, err := s.chatroomRepo.GetByRideID(ctx, ride.ID)
	if errors.Is(err, interfaces.ErrNotFound) && ride.ChatroomID != nil {
		chatroom, err = s.chatroomRepo.GetByID(ctx, *ride.ChatroomID)
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrChatroomNotFound
		}
		return nil, err
	}

	return s.buildChatroomView(ctx, chatroom), nil
}

// PostMessage appends to the room's log and broadcasts the message on
// the room-scoped event. Appends are conflict-free, so no conditional
// predicate guards them.
func (s *chatService) PostMessage(ctx context.Context, chatroomID, senderID primitive.ObjectID, text string) (*ChatroomView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	chatroom, err := s.chatroomRepo.GetByID(ctx, chatroomID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrChatroomNotFound
		}
		return nil, err
	}

	if !chatroom.HasParticipant(senderID) {
		return nil, ErrChatroomAccessDenied
	}

	message := &models.ChatMessage{
		SenderID:  senderID,
		Message:   text,
		Timestamp: time.Now(),
	}

	if err := s.chatroomRepo.AppendMessage(ctx, chatroomID, message); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrChatroomNotFound
		}
		return nil, err
	}
	chatroom.Messages = append(chatroom.Messages, *message)

	senderName := ""
	if sender, err := s.userRepo.GetByID(ctx, senderID); err == nil {
		senderName = sender.Name
	}

	// Broadcast goes to every connected client; the per-room event name
	// is what scopes it. Clients subscribe by name.
	s.events.Publish(ChatroomMessageEvent(chatroomID.Hex()), ChatMessagePayload{
		ChatroomID: chatroomID.Hex(),
		Message: ChatMessageBody{
			Sender: MessageSender{
				ID:   senderID.Hex(),
				Name: senderName,
			},
			Message:   message.Message,
			Timestamp: message.Timestamp,
		},
	})

	return s.buildChatroomView(ctx, chatroom), nil
}

func (s *chatService) ListMyChatrooms(ctx context.Context, userID primitive.ObjectID) ([]*ChatroomView, error) {
	chatrooms, err := s.chatroomRepo.GetByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*ChatroomView, 0, len(chatrooms))
	for _, chatroom := range chatrooms {
		views = append(views, s.buildChatroomView(ctx, chatroom))
	}

	return views, nil
}

func (s *chatService) buildChatroomView(ctx context.Context, chatroom *models.Chatroom) *ChatroomView {
	ids := make([]primitive.ObjectID, 0, len(chatroom.Participants)+len(chatroom.Messages))
	ids = append(ids, chatroom.Participants...)
	for _, m := range chatroom.Messages {
		ids = append(ids, m.SenderID)
	}

	summaries := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		summaries[id] = models.UserSummary{ID: id}
	}
	if users, err := s.userRepo.GetByIDs(ctx, ids); err == nil {
		for _, user := range users {
			summaries[user.ID] = user.Summary()
		}
	} else {
		s.logger.WithError(err).Warn("failed to resolve chatroom participants")
	}

	participants := make([]models.UserSummary, 0, len(chatroom.Participants))
	for _, id := range chatroom.Participants {
		participants = append(participants, summaries[id])
	}

	messages := make([]MessageView, 0, len(chatroom.Messages))
	for _, m := range chatroom.Messages {
		messages = append(messages, MessageView{
			Sender: MessageSender{
				ID:   m.SenderID.Hex(),
				Name: summaries[m.SenderID].Name,
			},
			Message:   m.Message,
			Timestamp: m.Timestamp,
		})
	}

	return &ChatroomView{
		ChatroomID:   chatroom.ID.Hex(),
		RideID:       chatroom.RideID.Hex(),
		Participants: participants,
		Messages:     messages,
		IsActive:     chatroom.IsActive,
		CreatedAt:    chatroom.CreatedAt,
	}
}
