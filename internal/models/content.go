package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentKind selects the collection a Content document lives in.
type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindProduct ContentKind = "product"
)

func (k ContentKind) Collection() string {
	if k == KindProduct {
		return "products"
	}
	return "posts"
}

// Label is the human readable noun used in responses.
func (k ContentKind) Label() string {
	if k == KindProduct {
		return "Product post"
	}
	return "Post"
}

type MediaType string

const (
	MediaNone  MediaType = ""
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Content is a post or a product listing stored in MongoDB. Products carry the
// product fields; posts leave them empty.
type Content struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Kind           ContentKind        `json:"kind" bson:"kind"`
	OwnerID        string             `json:"userId" bson:"user_id"`
	Desc           string             `json:"desc" bson:"desc"`
	MediaType      MediaType          `json:"mediaType,omitempty" bson:"media_type,omitempty"`
	MediaURL       string             `json:"mediaUrl,omitempty" bson:"media_url,omitempty"`
	ProductLink    string             `json:"productLink,omitempty" bson:"product_link,omitempty"`
	ProductDetails string             `json:"productDetails,omitempty" bson:"product_details,omitempty"`
	Likes          []string           `json:"likes" bson:"likes"`
	Reviews        []Review           `json:"reviews" bson:"reviews"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Review is embedded in its Content and only ever appended.
type Review struct {
	UserID    string    `json:"userId" bson:"user_id"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

func (c *Content) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// AverageRating is the arithmetic mean of all review ratings, 0 without reviews.
func (c *Content) AverageRating() float64 {
	if len(c.Reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range c.Reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(c.Reviews))
}

// CreateContentRequest defines the request body for creating a post or product
type CreateContentRequest struct {
	Desc           string    `json:"desc" validate:"required,min=10,max=100"`
	MediaType      MediaType `json:"mediaType" validate:"omitempty,oneof=image video"`
	MediaURL       string    `json:"mediaUrl"`
	ProductLink    string    `json:"productLink" validate:"omitempty,url"`
	ProductDetails string    `json:"productDetails" validate:"omitempty,max=2000"`
}

// UpdateContentRequest defines the request body for editing a post. Only the
// description is mutable.
type UpdateContentRequest struct {
	Desc string `json:"desc" validate:"required,min=10,max=100"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=10,max=500"`
}

// TimelinePage is one page of a cursor-paginated timeline.
type TimelinePage struct {
	Items      []Content `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// TimelineCursor is the position after which the next page starts, in
// (createdAt desc, id desc) order.
type TimelineCursor struct {
	CreatedAt time.Time
	ID        primitive.ObjectID
}

// CursorAfter returns the cursor positioned on c.
func CursorAfter(c Content) TimelineCursor {
	return TimelineCursor{CreatedAt: c.CreatedAt, ID: c.ID}
}

// String encodes the cursor as "<rfc3339nano>_<hex id>".
func (c TimelineCursor) String() string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + "_" + c.ID.Hex()
}

// Precedes reports whether content sorts strictly after the cursor position.
func (c TimelineCursor) Precedes(content Content) bool {
	if !content.CreatedAt.Equal(c.CreatedAt) {
		return content.CreatedAt.Before(c.CreatedAt)
	}
	return content.ID.Hex() < c.ID.Hex()
}

var errMalformedCursor = errors.New("malformed timeline cursor")

// ParseTimelineCursor decodes a cursor produced by TimelineCursor.String.
func ParseTimelineCursor(raw string) (TimelineCursor, error) {
	i := strings.LastIndexByte(raw, '_')
	if i < 0 {
		return TimelineCursor{}, errMalformedCursor
	}
	t, err := time.Parse(time.RFC3339Nano, raw[:i])
	if err != nil {
		return TimelineCursor{}, errMalformedCursor
	}
	id, err := primitive.ObjectIDFromHex(raw[i+1:])
	if err != nil {
		return TimelineCursor{}, errMalformedCursor
	}
	return TimelineCursor{CreatedAt: t, ID: id}, nil
}
