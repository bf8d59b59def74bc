package services

import (
	"fmt"
	"time"

	"carpool/internal/models"
)

// Event names pushed through the broadcaster. Delivery is broadcast to
// every connected client; clients filter by event name. Chat events are
// named per room so clients can subscribe selectively without any
// server-side room membership tracking.
const (
	EventNewSharedRide    = "new_shared_ride"
	EventRideMemberJoined = "ride_member_joined"
)

// ChatroomMessageEvent returns the per-room event name for chat
// messages, e.g. "chatroom:64f1...:message".
func ChatroomMessageEvent(chatroomID string) string {
	return fmt.Sprintf("chatroom:%s:message", chatroomID)
}

// EventPublisher fans an event out to all connected clients. Publishing
// is fire-and-forget: callers do not wait for delivery and a failed
// broadcast never rolls back the mutation that produced it.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// Notification is the human-readable payload clients render as a push
// banner. It is always built from the persisted record, never from
// caller-supplied fields.
type Notification struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	RideID string `json:"rideId"`
}

type NewSharedRidePayload struct {
	RideID                string          `json:"rideId"`
	Pickup                models.GeoPoint `json:"pickup"`
	Drop                  models.GeoPoint `json:"drop"`
	MemberShare           float64         `json:"memberShare"`
	MembersCount          int             `json:"membersCount"`
	TotalFare             float64         `json:"totalFare"`
	RideDetailsScreenshot string          `json:"rideDetailsScreenshot,omitempty"`
	Notification          Notification    `json:"notification"`
}

type RideMemberJoinedPayload struct {
	RideID         string       `json:"rideId"`
	NewMemberID    string       `json:"newMemberId"`
	NewStatus      string       `json:"newStatus"`
	CurrentMembers int          `json:"currentMembers"`
	ChatroomID     string       `json:"chatroomId"`
	Notification   Notification `json:"notification"`
}

type ChatMessagePayload struct {
	ChatroomID string          `json:"chatroomId"`
	Message    ChatMessageBody `json:"message"`
}

type ChatMessageBody struct {
	Sender    MessageSender `json:"sender"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

type MessageSender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
