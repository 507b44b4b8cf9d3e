package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationFollow   NotificationType = "follow"
	NotificationUnlike   NotificationType = "unlike"
	NotificationUnfollow NotificationType = "unfollow"
	NotificationMessage  NotificationType = "message"
)

// NotificationTypes lists every known type. Adding a type requires a Message case.
var NotificationTypes = []NotificationType{
	NotificationLike,
	NotificationComment,
	NotificationFollow,
	NotificationUnlike,
	NotificationUnfollow,
	NotificationMessage,
}

// Message returns the display text stored with a notification of this type.
// ok is false for unknown types.
func (t NotificationType) Message() (text string, ok bool) {
	switch t {
	case NotificationLike:
		return "liked your post.", true
	case NotificationComment:
		return "commented on your post.", true
	case NotificationFollow:
		return "started following you.", true
	case NotificationUnlike:
		return "unliked your post.", true
	case NotificationUnfollow:
		return "unfollowed you.", true
	case NotificationMessage:
		return "sent you a message.", true
	}
	return "", false
}

// Notification is written once as the side effect of a social action and is
// read-only for its receiver.
type Notification struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID   string             `json:"senderId" bson:"sender_id"`
	ReceiverID string             `json:"receiverId" bson:"receiver_id"`
	Type       NotificationType   `json:"type" bson:"type"`
	PostID     string             `json:"postId,omitempty" bson:"post_id,omitempty"`
	CommentID  string             `json:"commentId,omitempty" bson:"comment_id,omitempty"`
	Message    string             `json:"message" bson:"message"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
}

// EnrichedNotification includes sender info
type EnrichedNotification struct {
	Notification
	Sender *UserCompact `json:"sender,omitempty"`
}

type CreateNotificationRequest struct {
	ReceiverID string           `json:"receiverId" validate:"required"`
	Type       NotificationType `json:"type" validate:"required"`
	PostID     string           `json:"postId"`
	CommentID  string           `json:"commentId"`
}
