package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chatroom is the per-ride message channel, created once by the winning
// join. Participants are frozen at creation time and the message log is
// append-only.
type Chatroom struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	RideID       primitive.ObjectID   `json:"ride_id" bson:"ride_id" validate:"required"`
	Participants []primitive.ObjectID `json:"participants" bson:"participants" validate:"required"`
	Messages     []ChatMessage        `json:"messages" bson:"messages"`
	IsActive     bool                 `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
}

type ChatMessage struct {
	SenderID  primitive.ObjectID `json:"sender_id" bson:"sender_id" validate:"required"`
	Message   string             `json:"message" bson:"message" validate:"required"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// HasParticipant reports whether userID may read and post in this room.
func (c *Chatroom) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
