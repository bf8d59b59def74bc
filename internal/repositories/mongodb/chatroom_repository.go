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

type chatroomRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewChatroomRepository(db *mongo.Database, cache services.CacheService) interfaces.ChatroomRepository {
	return &chatroomRepository{
		collection: db.Collection("chatrooms"),
		cache:      cache,
	}
}

func (r *chatroomRepository) Create(ctx context.Context, chatroom *models.Chatroom) error {
	chatroom.ID = primitive.NewObjectID()
	chatroom.CreatedAt = time.Now()
	if chatroom.Messages == nil {
		chatroom.Messages = []models.ChatMessage{}
	}

	_, err := r.collection.InsertOne(ctx, chatroom)
	if err != nil {
		return fmt.Errorf("failed to create chatroom: %w", err)
	}

	return nil
}

func (r *chatroomRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chatroom, error) {
	if chatroom := r.getChatroomFromCache(ctx, id.Hex()); chatroom != nil {
		return chatroom, nil
	}

	var chatroom models.Chatroom
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&chatroom)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chatroom: %w", err)
	}

	r.cacheChatroom(ctx, &chatroom)

	return &chatroom, nil
}

func (r *chatroomRepository) GetByRideID(ctx context.Context, rideID primitive.ObjectID) (*models.Chatroom, error) {
	var chatroom models.Chatroom
	err := r.collection.FindOne(ctx, bson.M{"ride_id": rideID}).Decode(&chatroom)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chatroom by ride: %w", err)
	}

	return &chatroom, nil
}

func (r *chatroomRepository) AppendMessage(ctx context.Context, id primitive.ObjectID, message *models.ChatMessage) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"messages": message}},
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.invalidateChatroomCache(ctx, id.Hex())

	return nil
}

func (r *chatroomRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Chatroom, error) {
	filter := bson.M{
		"participants": userID,
		"is_active":    true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find chatrooms: %w", err)
	}
	defer cursor.Close(ctx)

	var chatrooms []*models.Chatroom
	if err := cursor.All(ctx, &chatrooms); err != nil {
		return nil, fmt.Errorf("failed to decode chatrooms: %w", err)
	}

	return chatrooms, nil
}

// Cache helpers
func (r *chatroomRepository) cacheChatroom(ctx context.Context, chatroom *models.Chatroom) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("chatroom:%s", chatroom.ID.Hex())
		r.cache.Set(ctx, cacheKey, chatroom, 5*time.Minute)
	}
}

func (r *chatroomRepository) getChatroomFromCache(ctx context.Context, chatroomID string) *models.Chatroom {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("chatroom:%s", chatroomID)
	var chatroom models.Chatroom
	if err := r.cache.Get(ctx, cacheKey, &chatroom); err != nil {
		return nil
	}

	return &chatroom
}

func (r *chatroomRepository) invalidateChatroomCache(ctx context.Context, chatroomID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("chatroom:%s", chatroomID)
		r.cache.Delete(ctx, cacheKey)
	}
}
