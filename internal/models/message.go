package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a directed text message. Messages are never mutated.
type Message struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID    string             `json:"senderId" bson:"sender_id"`
	RecipientID string             `json:"recipientId" bson:"recipient_id"`
	Text        string             `json:"text" bson:"text"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}

type SendMessageRequest struct {
	SenderID    string `json:"senderId" validate:"required"`
	RecipientID string `json:"recipientId" validate:"required"`
	Text        string `json:"text" validate:"required,max=2000"`
}
