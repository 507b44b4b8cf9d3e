package services

import (
	"context"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/metrics"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories"
	"github.com/anonto42/socialhub/backend/validators"
	"github.com/rs/zerolog/log"
)

// NotificationListLimit caps how many notifications a receiver gets per listing.
const NotificationListLimit = 50

// Notifier records notifications. It is satisfied by NotificationService.
type Notifier interface {
	Create(ctx context.Context, senderID string, req models.CreateNotificationRequest) (*models.Notification, error)
}

type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository) *NotificationService {
	return &NotificationService{notifications: notifications, users: users}
}

// Create stores a notification whose display text is derived from its type.
// Unknown types are rejected.
func (s *NotificationService) Create(ctx context.Context, senderID string, req models.CreateNotificationRequest) (*models.Notification, error) {
	if senderID == "" {
		return nil, apperrors.Validation("senderId is required")
	}
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	text, ok := req.Type.Message()
	if !ok {
		return nil, apperrors.Validation("unknown notification type: " + string(req.Type))
	}

	n := &models.Notification{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Type:       req.Type,
		PostID:     req.PostID,
		CommentID:  req.CommentID,
		Message:    text,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListForReceiver returns the newest notifications of a receiver with the
// sender inlined. Senders that no longer exist are left out of the projection.
func (s *NotificationService) ListForReceiver(ctx context.Context, receiverID string) ([]models.EnrichedNotification, error) {
	notifications, err := s.notifications.GetByReceiverID(ctx, receiverID, NotificationListLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	senderIDs := make([]string, 0, len(notifications))
	for _, n := range notifications {
		if !seen[n.SenderID] {
			seen[n.SenderID] = true
			senderIDs = append(senderIDs, n.SenderID)
		}
	}

	users, err := s.users.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	senders := make(map[string]models.UserCompact, len(users))
	for i := range users {
		senders[users[i].ID] = users[i].ToCompact()
	}

	enriched := make([]models.EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n}
		if sender, ok := senders[n.SenderID]; ok {
			enriched[i].Sender = &sender
		}
	}
	return enriched, nil
}

// notifyBestEffort records a side-effect notification. Failures are logged and
// counted, never returned: the action that triggered it has already succeeded.
func notifyBestEffort(ctx context.Context, n Notifier, senderID string, req models.CreateNotificationRequest) {
	if n == nil || senderID == req.ReceiverID {
		return
	}
	if _, err := n.Create(ctx, senderID, req); err != nil {
		metrics.RecordNotificationDropped(string(req.Type))
		log.Ctx(ctx).Warn().Err(err).
			Str("type", string(req.Type)).
			Str("sender_id", senderID).
			Str("receiver_id", req.ReceiverID).
			Msg("failed to record notification")
	}
}
