package mongodb

import (
	"context"
	"fmt"
	"time"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewRideRepository(db *mongo.Database, cache services.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	// Serve settled rides from cache; open rides are always read fresh
	// so join-failure diagnosis sees the winner's claim.
	if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil && !ride.IsOpen() {
		return ride, nil
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	r.cacheRide(ctx, &ride)

	return &ride, nil
}

func (r *rideRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// Accept claims the open slot with a single FindOneAndUpdate. The filter
// and mutation are evaluated atomically per document by the server, so
// among concurrent callers exactly one matches; the rest get
// ErrNotAccepted.
func (r *rideRepository) Accept(ctx context.Context, id, userID primitive.ObjectID) (*models.Ride, error) {
	now := time.Now()

	filter := bson.M{
		"_id":         id,
		"status":      models.RideStatusAwaitingMemberJoin,
		"accepted_by": bson.M{"$exists": false},
		"members":     bson.M{"$ne": userID},
	}
	update := bson.M{
		"$set": bson.M{
			"accepted_by": userID,
			"accepted_at": now,
			"status":      models.RideStatusAccepted,
		},
		"$push": bson.M{"members": userID},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotAccepted
		}
		return nil, fmt.Errorf("failed to accept ride: %w", err)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return &ride, nil
}

func (r *rideRepository) SetChatroom(ctx context.Context, id, chatroomID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"chatroom_id": chatroomID}},
	)
	if err != nil {
		return fmt.Errorf("failed to set ride chatroom: %w", err)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// GetOpenRides returns rides still awaiting a member, excluding rides
// the given user is already part of, newest first. Capacity filtering
// happens in the service; members_count is a plain field, not an index.
func (r *rideRepository) GetOpenRides(ctx context.Context, excludeMember primitive.ObjectID) ([]*models.Ride, error) {
	filter := bson.M{
		"status":  models.RideStatusAwaitingMemberJoin,
		"members": bson.M{"$ne": excludeMember},
	}

	return r.findRides(ctx, filter)
}

func (r *rideRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Ride, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"rider_id": userID},
			{"members": userID},
		},
	}

	return r.findRides(ctx, filter)
}

func (r *rideRepository) findRides(ctx context.Context, filter bson.M) ([]*models.Ride, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rides: %w", err)
	}

	return rides, nil
}

// Cache helpers
func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("ride:%s", ride.ID.Hex())
		r.cache.Set(ctx, cacheKey, ride, 15*time.Minute)
	}
}

func (r *rideRepository) getRideFromCache(ctx context.Context, rideID string) *models.Ride {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("ride:%s", rideID)
	var ride models.Ride
	if err := r.cache.Get(ctx, cacheKey, &ride); err != nil {
		return nil
	}

	return &ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, rideID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("ride:%s", rideID)
		r.cache.Delete(ctx, cacheKey)
	}
}
