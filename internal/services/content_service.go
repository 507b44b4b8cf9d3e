package services

import (
	"context"
	"strings"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/metrics"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories"
	"github.com/anonto42/socialhub/backend/validators"
)

// ContentService implements posts and products. One instance serves one
// collection; both kinds share every rule.
type ContentService struct {
	kind      models.ContentKind
	contents  repositories.ContentRepository
	users     repositories.UserRepository
	notifier  Notifier
	authorize Authorizer
}

// NewContentService wires a content service. A nil authorize defaults to OwnerOnly.
func NewContentService(
	kind models.ContentKind,
	contents repositories.ContentRepository,
	users repositories.UserRepository,
	notifier Notifier,
	authorize Authorizer,
) *ContentService {
	if authorize == nil {
		authorize = OwnerOnly
	}
	return &ContentService{
		kind:      kind,
		contents:  contents,
		users:     users,
		notifier:  notifier,
		authorize: authorize,
	}
}

func (s *ContentService) Kind() models.ContentKind {
	return s.kind
}

// Create validates and stores new content owned by ownerID.
func (s *ContentService) Create(ctx context.Context, ownerID string, req models.CreateContentRequest) (*models.Content, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	if req.MediaType != models.MediaNone && strings.TrimSpace(req.MediaURL) == "" {
		return nil, apperrors.Validation("Media URL is required for the selected media type!")
	}

	content := &models.Content{
		OwnerID:   ownerID,
		Desc:      req.Desc,
		MediaType: req.MediaType,
		MediaURL:  strings.TrimSpace(req.MediaURL),
	}
	if content.MediaType == models.MediaNone {
		content.MediaURL = ""
	}
	if s.kind == models.KindProduct {
		content.ProductLink = req.ProductLink
		content.ProductDetails = req.ProductDetails
	}

	if err := s.contents.Create(ctx, content); err != nil {
		return nil, err
	}
	metrics.RecordContentAction(string(s.kind), "create")
	return content, nil
}

func (s *ContentService) GetByID(ctx context.Context, id string) (*models.Content, error) {
	return s.contents.GetByID(ctx, id)
}

// GetByOwner lists a user's content; the user must exist.
func (s *ContentService) GetByOwner(ctx context.Context, ownerID string) ([]models.Content, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.contents.ListByOwner(ctx, ownerID)
}

// loadOwned fetches content and checks requesterID may mutate it.
func (s *ContentService) loadOwned(ctx context.Context, id, requesterID, action string) (*models.Content, error) {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authorize(requesterID, content.OwnerID) {
		return nil, apperrors.Forbidden("You can only " + action + " your own " + strings.ToLower(s.kind.Label()) + "s")
	}
	return content, nil
}

// Update changes the description of content owned by requesterID.
func (s *ContentService) Update(ctx context.Context, id, requesterID string, req models.UpdateContentRequest) (*models.Content, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.loadOwned(ctx, id, requesterID, "edit"); err != nil {
		return nil, err
	}
	updated, err := s.contents.UpdateDesc(ctx, id, req.Desc)
	if err != nil {
		return nil, err
	}
	metrics.RecordContentAction(string(s.kind), "update")
	return updated, nil
}

// Delete removes content owned by requesterID.
func (s *ContentService) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.loadOwned(ctx, id, requesterID, "delete"); err != nil {
		return err
	}
	if err := s.contents.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordContentAction(string(s.kind), "delete")
	return nil
}

// Like adds userID to the likes of the content. Liking twice is a conflict.
func (s *ContentService) Like(ctx context.Context, id, userID string) error {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.contents.AddLike(ctx, id, userID); err != nil {
		return err
	}
	metrics.RecordContentAction(string(s.kind), "like")
	notifyBestEffort(ctx, s.notifier, userID, models.CreateNotificationRequest{
		ReceiverID: content.OwnerID,
		Type:       models.NotificationLike,
		PostID:     id,
	})
	return nil
}

// Dislike removes userID from the likes. Disliking without a like is a conflict.
func (s *ContentService) Dislike(ctx context.Context, id, userID string) error {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.contents.RemoveLike(ctx, id, userID); err != nil {
		return err
	}
	metrics.RecordContentAction(string(s.kind), "dislike")
	notifyBestEffort(ctx, s.notifier, userID, models.CreateNotificationRequest{
		ReceiverID: content.OwnerID,
		Type:       models.NotificationUnlike,
		PostID:     id,
	})
	return nil
}

// AddReview appends a review. A user may review the same content any number of times.
func (s *ContentService) AddReview(ctx context.Context, id, userID string, req models.CreateReviewRequest) (*models.Content, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	content, err := s.contents.AddReview(ctx, id, models.Review{
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordContentAction(string(s.kind), "review")
	notifyBestEffort(ctx, s.notifier, userID, models.CreateNotificationRequest{
		ReceiverID: content.OwnerID,
		Type:       models.NotificationComment,
		PostID:     id,
	})
	return content, nil
}

func (s *ContentService) GetReviews(ctx context.Context, id string) ([]models.Review, error) {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if content.Reviews == nil {
		return []models.Review{}, nil
	}
	return content.Reviews, nil
}

func (s *ContentService) GetAverageRating(ctx context.Context, id string) (float64, error) {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return content.AverageRating(), nil
}

// ListAll returns every item of the collection, newest first.
func (s *ContentService) ListAll(ctx context.Context) ([]models.Content, error) {
	return s.contents.ListAll(ctx)
}
