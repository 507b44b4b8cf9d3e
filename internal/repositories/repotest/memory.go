// Package repotest provides in-memory implementations of the repository
// interfaces with the same observable semantics as the MongoDB and PostgreSQL
// stores, for use in service and handler tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.ContentRepository      = (*ContentStore)(nil)
	_ repositories.UserRepository         = (*UserStore)(nil)
	_ repositories.FollowRepository       = (*UserStore)(nil)
	_ repositories.NotificationRepository = (*NotificationStore)(nil)
	_ repositories.MessageRepository      = (*MessageStore)(nil)
)

// Clock hands out strictly increasing timestamps so insertion order is
// observable without sleeping.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// ContentStore implements repositories.ContentRepository.
type ContentStore struct {
	mu    sync.Mutex
	kind  models.ContentKind
	clock *Clock
	docs  map[primitive.ObjectID]models.Content

	// Err, when set, is returned by every call.
	Err error
}

func NewContentStore(kind models.ContentKind, clock *Clock) *ContentStore {
	return &ContentStore{kind: kind, clock: clock, docs: map[primitive.ObjectID]models.Content{}}
}

func (s *ContentStore) notFound() error {
	return apperrors.NotFound(fmt.Sprintf("%s not found", s.kind.Label()))
}

func (s *ContentStore) lookup(id string) (primitive.ObjectID, models.Content, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return objID, models.Content{}, s.notFound()
	}
	c, ok := s.docs[objID]
	if !ok {
		return objID, models.Content{}, s.notFound()
	}
	return objID, c, nil
}

func clone(c models.Content) models.Content {
	c.Likes = append([]string{}, c.Likes...)
	c.Reviews = append([]models.Review{}, c.Reviews...)
	return c
}

func (s *ContentStore) Create(_ context.Context, content *models.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	content.ID = primitive.NewObjectID()
	content.Kind = s.kind
	if content.CreatedAt.IsZero() {
		content.CreatedAt = s.clock.Now()
	}
	content.UpdatedAt = content.CreatedAt
	if content.Likes == nil {
		content.Likes = []string{}
	}
	if content.Reviews == nil {
		content.Reviews = []models.Review{}
	}
	s.docs[content.ID] = clone(*content)
	return nil
}

func (s *ContentStore) GetByID(_ context.Context, id string) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	_, c, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	out := clone(c)
	return &out, nil
}

func (s *ContentStore) filter(keep func(models.Content) bool) []models.Content {
	out := []models.Content{}
	for _, c := range s.docs {
		if keep(c) {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (s *ContentStore) ListByOwner(_ context.Context, ownerID string) ([]models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.filter(func(c models.Content) bool { return c.OwnerID == ownerID }), nil
}

func (s *ContentStore) ListByOwners(_ context.Context, ownerIDs []string, after *models.TimelineCursor, limit int64) ([]models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	owners := map[string]bool{}
	for _, id := range ownerIDs {
		owners[id] = true
	}
	out := s.filter(func(c models.Content) bool {
		return owners[c.OwnerID] && (after == nil || after.Precedes(c))
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ContentStore) ListAll(_ context.Context) ([]models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.filter(func(models.Content) bool { return true }), nil
}

func (s *ContentStore) UpdateDesc(_ context.Context, id, desc string) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	objID, c, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	c.Desc = desc
	c.UpdatedAt = s.clock.Now()
	s.docs[objID] = c
	out := clone(c)
	return &out, nil
}

func (s *ContentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	objID, _, err := s.lookup(id)
	if err != nil {
		return err
	}
	delete(s.docs, objID)
	return nil
}

func (s *ContentStore) AddLike(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	objID, c, err := s.lookup(id)
	if err != nil {
		return err
	}
	if c.LikedBy(userID) {
		return apperrors.Conflict("Can't like a post two times")
	}
	c.Likes = append(c.Likes, userID)
	s.docs[objID] = c
	return nil
}

func (s *ContentStore) RemoveLike(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	objID, c, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !c.LikedBy(userID) {
		return apperrors.Conflict("Can't dislike that you haven't liked")
	}
	likes := make([]string, 0, len(c.Likes))
	for _, l := range c.Likes {
		if l != userID {
			likes = append(likes, l)
		}
	}
	c.Likes = likes
	s.docs[objID] = c
	return nil
}

func (s *ContentStore) AddReview(_ context.Context, id string, review models.Review) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	objID, c, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.clock.Now()
	}
	c.Reviews = append(c.Reviews, review)
	s.docs[objID] = c
	out := clone(c)
	return &out, nil
}

// UserStore implements repositories.UserRepository and repositories.FollowRepository.
type UserStore struct {
	mu      sync.Mutex
	clock   *Clock
	users   map[string]models.User
	follows []models.Follow

	Err error
}

func NewUserStore(clock *Clock) *UserStore {
	return &UserStore{clock: clock, users: map[string]models.User{}}
}

// Seed inserts users directly, bypassing validation.
func (s *UserStore) Seed(users ...models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.clock.Now()
		}
		s.users[u.ID] = u
		for _, f := range u.Followings {
			s.follows = append(s.follows, models.Follow{
				ID:          uint(len(s.follows) + 1),
				FollowerID:  u.ID,
				FollowingID: f,
				CreatedAt:   s.clock.Now(),
			})
		}
	}
}

func (s *UserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[user.ID]; ok {
		return apperrors.Conflict("record already exists")
	}
	user.CreatedAt = s.clock.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	stored.Followings = nil
	s.users[user.ID] = stored
	return nil
}

func (s *UserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("User does not exist")
	}
	u.Followings = nil
	return &u, nil
}

func (s *UserStore) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			u.Followings = nil
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserStore) CreateFollow(_ context.Context, follow *models.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, f := range s.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return apperrors.Conflict("record already exists")
		}
	}
	follow.ID = uint(len(s.follows) + 1)
	follow.CreatedAt = s.clock.Now()
	s.follows = append(s.follows, *follow)
	return nil
}

func (s *UserStore) DeleteFollow(_ context.Context, followerID, followingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			s.follows = append(s.follows[:i], s.follows[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("follow relationship not found")
}

func (s *UserStore) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) GetFollowingIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	ids := []string{}
	for _, f := range s.follows {
		if f.FollowerID == userID {
			ids = append(ids, f.FollowingID)
		}
	}
	return ids, nil
}

// NotificationStore implements repositories.NotificationRepository.
type NotificationStore struct {
	mu    sync.Mutex
	clock *Clock
	items []models.Notification

	// CreateErr, when set, fails CreateNotification only.
	CreateErr error
}

func NewNotificationStore(clock *Clock) *NotificationStore {
	return &NotificationStore{clock: clock}
}

func (s *NotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	n.ID = primitive.NewObjectID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock.Now()
	}
	s.items = append(s.items, *n)
	return nil
}

func (s *NotificationStore) GetByReceiverID(_ context.Context, receiverID string, limit int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].ReceiverID == receiverID {
			out = append(out, s.items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns every stored notification in insertion order.
func (s *NotificationStore) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification{}, s.items...)
}

// MessageStore implements repositories.MessageRepository.
type MessageStore struct {
	mu    sync.Mutex
	clock *Clock
	items []models.Message

	Err error
}

func NewMessageStore(clock *Clock) *MessageStore {
	return &MessageStore{clock: clock}
}

func (s *MessageStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	m.ID = primitive.NewObjectID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.clock.Now()
	}
	s.items = append(s.items, *m)
	return nil
}

func (s *MessageStore) GetConversation(_ context.Context, a, b string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Message{}
	for _, m := range s.items {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
