package repositories

import (
	"context"
	"time"

	"github.com/anonto42/socialhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository defines the interface for direct message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	// GetConversation returns messages exchanged between a and b in either
	// direction, oldest first.
	GetConversation(ctx context.Context, a, b string) ([]models.Message, error)
}

type mongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{collection: db.Collection("messages")}
}

func (r *mongoMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, message)
	return storeError("insert message", err)
}

func (r *mongoMessageRepository) GetConversation(ctx context.Context, a, b string) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "recipient_id": b},
		bson.M{"sender_id": b, "recipient_id": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError("find messages", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, storeError("decode messages", err)
	}
	return messages, nil
}
