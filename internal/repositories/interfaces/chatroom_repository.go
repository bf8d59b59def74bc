package interfaces

import (
	"context"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatroomRepository interface {
	Create(ctx context.Context, chatroom *models.Chatroom) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chatroom, error)
	GetByRideID(ctx context.Context, rideID primitive.ObjectID) (*models.Chatroom, error)

	// AppendMessage appends to the room's message log. Appends never
	// conflict, so no conditional predicate is needed here.
	AppendMessage(ctx context.Context, id primitive.ObjectID, message *models.ChatMessage) error

	GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Chatroom, error)
}
