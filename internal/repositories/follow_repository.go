package repositories

import (
	"context"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	// GetFollowingIDs returns the ids a user follows, oldest follow first.
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return storeError("create follow", r.db.WithContext(ctx).Create(follow).Error)
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return storeError("delete follow", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("follow relationship not found")
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, storeError("check follow", err)
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at ASC, id ASC").
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, storeError("get followings", err)
	}
	return ids, nil
}
