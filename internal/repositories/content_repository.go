package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContentRepository defines the interface for post and product data operations
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id string) (*models.Content, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Content, error)
	// ListByOwners returns content of any of ownerIDs positioned after the
	// cursor (when set) in newest-first order, at most limit items.
	ListByOwners(ctx context.Context, ownerIDs []string, after *models.TimelineCursor, limit int64) ([]models.Content, error)
	ListAll(ctx context.Context) ([]models.Content, error)
	UpdateDesc(ctx context.Context, id, desc string) (*models.Content, error)
	Delete(ctx context.Context, id string) error
	// AddLike fails with a conflict when userID already likes the content.
	AddLike(ctx context.Context, id, userID string) error
	// RemoveLike fails with a conflict when userID does not like the content.
	RemoveLike(ctx context.Context, id, userID string) error
	AddReview(ctx context.Context, id string, review models.Review) (*models.Content, error)
}

// MongoContentRepository implements ContentRepository for one MongoDB collection
type MongoContentRepository struct {
	collection *mongo.Collection
	kind       models.ContentKind
}

// NewMongoContentRepository creates a repository over the collection backing kind
func NewMongoContentRepository(db *mongo.Database, kind models.ContentKind) *MongoContentRepository {
	return &MongoContentRepository{collection: db.Collection(kind.Collection()), kind: kind}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *MongoContentRepository) notFound() error {
	return apperrors.NotFound(fmt.Sprintf("%s not found", r.kind.Label()))
}

func (r *MongoContentRepository) objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, r.notFound()
	}
	return objID, nil
}

// Create inserts a new document, assigning its id and timestamps
func (r *MongoContentRepository) Create(ctx context.Context, content *models.Content) error {
	now := time.Now().UTC()
	content.ID = primitive.NewObjectID()
	content.Kind = r.kind
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now
	if content.Likes == nil {
		content.Likes = []string{}
	}
	if content.Reviews == nil {
		content.Reviews = []models.Review{}
	}
	_, err := r.collection.InsertOne(ctx, content)
	return storeError("insert "+r.kind.Collection(), err)
}

// GetByID retrieves a document by its hex id
func (r *MongoContentRepository) GetByID(ctx context.Context, id string) (*models.Content, error) {
	objID, err := r.objectID(id)
	if err != nil {
		return nil, err
	}

	var content models.Content
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFound()
		}
		return nil, storeError("find "+r.kind.Collection(), err)
	}
	return &content, nil
}

func (r *MongoContentRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Content, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError("find "+r.kind.Collection(), err)
	}
	defer cursor.Close(ctx)

	contents := []models.Content{}
	if err = cursor.All(ctx, &contents); err != nil {
		return nil, storeError("decode "+r.kind.Collection(), err)
	}
	return contents, nil
}

// ListByOwner retrieves every document owned by a user, newest first
func (r *MongoContentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Content, error) {
	return r.find(ctx, bson.M{"user_id": ownerID}, options.Find().SetSort(newestFirst))
}

// ListByOwners pushes the timeline filter, sort and limit down to MongoDB
func (r *MongoContentRepository) ListByOwners(ctx context.Context, ownerIDs []string, after *models.TimelineCursor, limit int64) ([]models.Content, error) {
	filter := bson.M{"user_id": bson.M{"$in": ownerIDs}}
	if after != nil {
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": after.CreatedAt}},
			bson.M{"created_at": after.CreatedAt, "_id": bson.M{"$lt": after.ID}},
		}
	}
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, filter, opts)
}

// ListAll retrieves every document, newest first
func (r *MongoContentRepository) ListAll(ctx context.Context) ([]models.Content, error) {
	return r.find(ctx, bson.D{}, options.Find().SetSort(newestFirst))
}

// UpdateDesc replaces the description and returns the updated document
func (r *MongoContentRepository) UpdateDesc(ctx context.Context, id, desc string) (*models.Content, error) {
	objID, err := r.objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"desc": desc, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var content models.Content
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFound()
		}
		return nil, storeError("update "+r.kind.Collection(), err)
	}
	return &content, nil
}

// Delete removes a document by id
func (r *MongoContentRepository) Delete(ctx context.Context, id string) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return storeError("delete "+r.kind.Collection(), err)
	}
	if res.DeletedCount == 0 {
		return r.notFound()
	}
	return nil
}

// AddLike appends userID to likes. The membership check is part of the update
// filter, so two concurrent likes by the same user cannot both succeed.
func (r *MongoContentRepository) AddLike(ctx context.Context, id, userID string) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objID, "likes": bson.M{"$ne": userID}}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return storeError("like "+r.kind.Collection(), err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, objID, "Can't like a post two times")
	}
	return nil
}

// RemoveLike pulls userID from likes, failing if it was never there
func (r *MongoContentRepository) RemoveLike(ctx context.Context, id, userID string) error {
	objID, err := r.objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objID, "likes": userID}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return storeError("dislike "+r.kind.Collection(), err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, objID, "Can't dislike that you haven't liked")
	}
	return nil
}

// missOrConflict distinguishes a missing document from a failed guard after a
// conditional update matched nothing.
func (r *MongoContentRepository) missOrConflict(ctx context.Context, objID primitive.ObjectID, conflict string) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID}, options.Count().SetLimit(1))
	if err != nil {
		return storeError("count "+r.kind.Collection(), err)
	}
	if n == 0 {
		return r.notFound()
	}
	return apperrors.Conflict(conflict)
}

// AddReview appends a review and returns the updated document
func (r *MongoContentRepository) AddReview(ctx context.Context, id string, review models.Review) (*models.Content, error) {
	objID, err := r.objectID(id)
	if err != nil {
		return nil, err
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var content models.Content
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFound()
		}
		return nil, storeError("review "+r.kind.Collection(), err)
	}
	return &content, nil
}
