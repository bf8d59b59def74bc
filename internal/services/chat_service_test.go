package services

import (
	"context"
	"errors"
	"testing"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newChatServiceForTest() (ChatService, *mockRideRepository, *mockChatroomRepository, *mockUserRepository, *stubPublisher) {
	rideRepo := newMockRideRepository()
	chatroomRepo := newMockChatroomRepository()
	userRepo := newMockUserRepository()
	publisher := newStubPublisher()
	service := NewChatService(chatroomRepo, rideRepo, userRepo, publisher, newTestLogger())
	return service, rideRepo, chatroomRepo, userRepo, publisher
}

// acceptedRideWithChatroom wires up a claimed ride and its chatroom.
func acceptedRideWithChatroom(rideRepo *mockRideRepository, chatroomRepo *mockChatroomRepository, creatorID, memberID primitive.ObjectID) (*models.Ride, *models.Chatroom) {
	ride := openRide(creatorID)
	ride.Status = models.RideStatusAccepted
	ride.AcceptedBy = &memberID
	ride.Members = append(ride.Members, memberID)
	rideRepo.AddRide(ride)

	chatroom := &models.Chatroom{
		RideID:       ride.ID,
		Participants: []primitive.ObjectID{creatorID, memberID},
		IsActive:     true,
	}
	chatroomRepo.AddChatroom(chatroom)
	ride.ChatroomID = &chatroom.ID
	return ride, chatroom
}

func TestGetChatroomForRide_Authorization(t *testing.T) {
	service, rideRepo, chatroomRepo, userRepo, _ := newChatServiceForTest()

	creator := &models.User{Name: "Asha"}
	member := &models.User{Name: "Ravi"}
	stranger := &models.User{Name: "Maya"}
	userRepo.AddUser(creator)
	userRepo.AddUser(member)
	userRepo.AddUser(stranger)

	ride, chatroom := acceptedRideWithChatroom(rideRepo, chatroomRepo, creator.ID, member.ID)

	for _, id := range []primitive.ObjectID{creator.ID, member.ID} {
		view, err := service.GetChatroomForRide(context.Background(), ride.ID, id)
		if err != nil {
			t.Fatalf("participant %s must see chatroom: %v", id.Hex(), err)
		}
		if view.ChatroomID != chatroom.ID.Hex() {
			t.Errorf("expected chatroom %s, got %s", chatroom.ID.Hex(), view.ChatroomID)
		}
	}

	if _, err := service.GetChatroomForRide(context.Background(), ride.ID, stranger.ID); !errors.Is(err, ErrChatroomAccessDenied) {
		t.Errorf("expected ErrChatroomAccessDenied for stranger, got %v", err)
	}
}

func TestGetChatroomForRide_RideWithoutChatroom(t *testing.T) {
	service, rideRepo, _, userRepo, _ := newChatServiceForTest()

	creator := &models.User{Name: "Asha"}
	userRepo.AddUser(creator)
	ride := openRide(creator.ID)
	rideRepo.AddRide(ride)

	if _, err := service.GetChatroomForRide(context.Background(), ride.ID, creator.ID); !errors.Is(err, ErrChatroomNotFound) {
		t.Errorf("expected ErrChatroomNotFound, got %v", err)
	}
}

func TestGetChatroomForRide_UnknownRide(t *testing.T) {
	service, _, _, _, _ := newChatServiceForTest()

	if _, err := service.GetChatroomForRide(context.Background(), primitive.NewObjectID(), primitive.NewObjectID()); !errors.Is(err, ErrRideNotFound) {
		t.Errorf("expected ErrRideNotFound, got %v", err)
	}
}

func TestPostMessage_AppendsAndBroadcasts(t *testing.T) {
	service, rideRepo, chatroomRepo, userRepo, publisher := newChatServiceForTest()

	creator := &models.User{Name: "Asha"}
	member := &models.User{Name: "Ravi"}
	userRepo.AddUser(creator)
	userRepo.AddUser(member)
	_, chatroom := acceptedRideWithChatroom(rideRepo, chatroomRepo, creator.ID, member.ID)

	view, err := service.PostMessage(context.Background(), chatroom.ID, member.ID, "  on my way  ")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	if len(view.Messages) != 1 {
		t.Fatalf("expected 1 message in view, got %d", len(view.Messages))
	}
	if view.Messages[0].Message != "on my way" {
		t.Errorf("expected trimmed text, got %q", view.Messages[0].Message)
	}
	if view.Messages[0].Sender.Name != "Ravi" {
		t.Errorf("expected sender name resolved, got %q", view.Messages[0].Sender.Name)
	}

	stored := chatroomRepo.GetChatroom(chatroom.ID)
	if len(stored.Messages) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(stored.Messages))
	}
	if stored.Messages[0].SenderID != member.ID {
		t.Error("persisted message must carry the sender id")
	}

	eventName := ChatroomMessageEvent(chatroom.ID.Hex())
	events := publisher.EventsNamed(eventName)
	if len(events) != 1 {
		t.Fatalf("expected one %s event, got %d", eventName, len(events))
	}
	payload := events[0].Payload.(ChatMessagePayload)
	if payload.ChatroomID != chatroom.ID.Hex() {
		t.Errorf("event chatroomId %q, want %q", payload.ChatroomID, chatroom.ID.Hex())
	}
	if payload.Message.Sender.ID != member.ID.Hex() || payload.Message.Sender.Name != "Ravi" {
		t.Errorf("unexpected event sender %+v", payload.Message.Sender)
	}
	if payload.Message.Message != "on my way" {
		t.Errorf("event message %q, want trimmed text", payload.Message.Message)
	}
}

func TestPostMessage_RejectsEmptyText(t *testing.T) {
	service, rideRepo, chatroomRepo, userRepo, publisher := newChatServiceForTest()

	creator := &models.User{Name: "Asha"}
	member := &models.User{Name: "Ravi"}
	userRepo.AddUser(creator)
	userRepo.AddUser(member)
	_, chatroom := acceptedRideWithChatroom(rideRepo, chatroomRepo, creator.ID, member.ID)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := service.PostMessage(context.Background(), chatroom.ID, member.ID, text); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("text %q: expected ErrEmptyMessage, got %v", text, err)
		}
	}

	if stored := chatroomRepo.GetChatroom(chatroom.ID); len(stored.Messages) != 0 {
		t.Errorf("empty posts must not mutate the log, found %d messages", len(stored.Messages))
	}
	if len(publisher.Events()) != 0 {
		t.Error("empty posts must not publish events")
	}
}

func TestPostMessage_NonParticipantDenied(t *testing.T) {
	service, rideRepo, chatroomRepo, userRepo, publisher := newChatServiceForTest()

	creator := &models.User{Name: "Asha"}
	member := &models.User{Name: "Ravi"}
	stranger := &models.User{Name: "Maya"}
	userRepo.AddUser(creator)
	userRepo.AddUser(member)
	userRepo.AddUser(stranger)
	_, chatroom := acceptedRideWithChatroom(rideRepo, chatroomRepo, creator.ID, member.ID)

	if _, err := service.PostMessage(context.Background(), chatroom.ID, stranger.ID, "hello"); !errors.Is(err, ErrChatroomAccessDenied) {
		t.Errorf("expected ErrChatroomAccessDenied, got %v", err)
	}
	if stored := chatroomRepo.GetChatroom(chatroom.ID); len(stored.Messages) != 0 {
		t.Error("denied posts must not mutate the log")
	}
	if len(publisher.Events()) != 0 {
		t.Error("denied posts must not publish events")
	}
}

func TestPostMessage_UnknownChatroom(t *testing.T) {
	service, _, _, _, _ := newChatServiceForTest()

	if _, err := service.PostMessage(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "hello"); !errors.Is(err, ErrChatroomNotFound) {
		t.Errorf("expected ErrChatroomNotFound, got %v", err)
	}
}

func TestPostMessage_SenderNameFallsBackToEmpty(t *testing.T) {
	service, rideRepo, chatroomRepo, _, publisher := newChatServiceForTest()

	// Participants exist on the room but not in the user store.
	creatorID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	_, chatroom := acceptedRideWithChatroom(rideRepo, chatroomRepo, creatorID, memberID)

	if _, err := service.PostMessage(context.Background(), chatroom.ID, memberID, "hello"); err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	events := publisher.EventsNamed(ChatroomMessageEvent(chatroom.ID.Hex()))
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	payload := events[0].Payload.(ChatMessagePayload)
	if payload.Message.Sender.ID != memberID.Hex() {
		t.Errorf("event sender id %q, want %q", payload.Message.Sender.ID, memberID.Hex())
	}
	if payload.Message.Sender.Name != "" {
		t.Errorf("unknown sender should have empty name, got %q", payload.Message.Sender.Name)
	}
}

func TestListMyChatrooms(t *testing.T) {
	service, rideRepo, chatroomRepo, userRepo, _ := newChatServiceForTest()

	creator := &models.User{Name: "Asha"}
	member := &models.User{Name: "Ravi"}
	other := &models.User{Name: "Maya"}
	userRepo.AddUser(creator)
	userRepo.AddUser(member)
	userRepo.AddUser(other)

	_, mine := acceptedRideWithChatroom(rideRepo, chatroomRepo, creator.ID, member.ID)
	acceptedRideWithChatroom(rideRepo, chatroomRepo, other.ID, creator.ID)
	acceptedRideWithChatroom(rideRepo, chatroomRepo, other.ID, primitive.NewObjectID())

	views, err := service.ListMyChatrooms(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("ListMyChatrooms failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 chatroom for member, got %d", len(views))
	}
	if views[0].ChatroomID != mine.ID.Hex() {
		t.Errorf("expected chatroom %s, got %s", mine.ID.Hex(), views[0].ChatroomID)
	}

	views, err = service.ListMyChatrooms(context.Background(), creator.ID)
	if err != nil {
		t.Fatalf("ListMyChatrooms failed: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("expected 2 chatrooms for creator, got %d", len(views))
	}
}
