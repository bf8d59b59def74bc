package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the service relies on. Email and
// phone are unique but optional, so both indexes are sparse; a user with
// only a phone does not collide with every other email-less user.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := ensureUserIndexes(ctx, db); err != nil {
		return err
	}
	if err := ensureRideIndexes(ctx, db); err != nil {
		return err
	}
	return ensureChatroomIndexes(ctx, db)
}

func ensureUserIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := db.Collection("users").Indexes().CreateMany(ctx, indexes)
	return err
}

func ensureRideIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		// Serves the open-rides listing.
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "rider_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "members", Value: 1}},
		},
	}

	_, err := db.Collection("rides").Indexes().CreateMany(ctx, indexes)
	return err
}

func ensureChatroomIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		// One chatroom per ride.
		{
			Keys:    bson.D{{Key: "ride_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "participants", Value: 1}},
		},
	}

	_, err := db.Collection("chatrooms").Indexes().CreateMany(ctx, indexes)
	return err
}
