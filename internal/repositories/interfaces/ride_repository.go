package interfaces

import (
	"context"
	"errors"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotAccepted is returned by Accept when the conditional update
// matched no document: the ride is gone, closed, already claimed, or the
// caller is already a member. Callers diagnose which with a follow-up
// read; the read never drives the mutation.
var ErrNotAccepted = errors.New("ride not accepted")

type RideRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Accept atomically claims the ride's open slot for userID. The
	// predicate (status awaiting_member_join, no accepted_by, userID not
	// yet a member) and the mutation (accepted_by/accepted_at, status
	// accepted, members append) are a single store operation; at most one
	// concurrent caller per ride succeeds. Returns the post-claim ride,
	// or ErrNotAccepted when the predicate did not hold.
	Accept(ctx context.Context, id, userID primitive.ObjectID) (*models.Ride, error)

	// SetChatroom backfills the chatroom reference after a won claim.
	SetChatroom(ctx context.Context, id, chatroomID primitive.ObjectID) error

	// Listings
	GetOpenRides(ctx context.Context, excludeMember primitive.ObjectID) ([]*models.Ride, error)
	GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Ride, error)
}
