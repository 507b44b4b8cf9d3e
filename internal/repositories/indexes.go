package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/socialhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureMongoIndexes creates the indexes the read paths rely on. It is
// idempotent and safe to run on every start.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	byOwner := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}

	indexes := map[string][]mongo.IndexModel{
		models.KindPost.Collection():    {byOwner},
		models.KindProduct.Collection(): {byOwner},
		"notifications": {
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "recipient_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}

	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
