package services

import (
	"context"

	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories"
	"github.com/anonto42/socialhub/backend/validators"
)

type MessageService struct {
	messages repositories.MessageRepository
	notifier Notifier
}

func NewMessageService(messages repositories.MessageRepository, notifier Notifier) *MessageService {
	return &MessageService{messages: messages, notifier: notifier}
}

// Send stores the message and then notifies the recipient. The message counts
// as sent once stored; a failed notification is only logged.
func (s *MessageService) Send(ctx context.Context, req models.SendMessageRequest) (*models.Message, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Text:        req.Text,
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	notifyBestEffort(ctx, s.notifier, req.SenderID, models.CreateNotificationRequest{
		ReceiverID: req.RecipientID,
		Type:       models.NotificationMessage,
	})
	return msg, nil
}

// Conversation returns every message between userID and otherID, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	return s.messages.GetConversation(ctx, userID, otherID)
}
