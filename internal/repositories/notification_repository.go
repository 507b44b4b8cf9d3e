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

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByReceiverID(ctx context.Context, receiverID string, limit int64) ([]models.Notification, error)
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return storeError("insert notification", err)
}

func (r *mongoNotificationRepository) GetByReceiverID(ctx context.Context, receiverID string, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"receiver_id": receiverID}, opts)
	if err != nil {
		return nil, storeError("find notifications", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, storeError("decode notifications", err)
	}
	return notifications, nil
}
