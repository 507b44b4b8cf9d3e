package services

import (
	"context"
	"testing"

	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories/repotest"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	clock         *repotest.Clock
	users         *repotest.UserStore
	posts         *repotest.ContentStore
	products      *repotest.ContentStore
	notifications *repotest.NotificationStore
	messages      *repotest.MessageStore

	notifier *NotificationService
	postSvc  *ContentService
	prodSvc  *ContentService
	feed     *FeedService
	userSvc  *UserService
	msgSvc   *MessageService
}

func newFixture(t *testing.T, users ...models.User) *fixture {
	t.Helper()
	clock := repotest.NewClock()
	f := &fixture{
		clock:         clock,
		users:         repotest.NewUserStore(clock),
		posts:         repotest.NewContentStore(models.KindPost, clock),
		products:      repotest.NewContentStore(models.KindProduct, clock),
		notifications: repotest.NewNotificationStore(clock),
		messages:      repotest.NewMessageStore(clock),
	}
	f.users.Seed(users...)
	f.notifier = NewNotificationService(f.notifications, f.users)
	f.postSvc = NewContentService(models.KindPost, f.posts, f.users, f.notifier, nil)
	f.prodSvc = NewContentService(models.KindProduct, f.products, f.users, f.notifier, nil)
	f.feed = NewFeedService(f.posts, f.users, f.users, 4)
	f.userSvc = NewUserService(f.users, f.users, f.notifier)
	f.msgSvc = NewMessageService(f.messages, f.notifier)
	return f
}

func (f *fixture) createPost(t *testing.T, ownerID, desc string) *models.Content {
	t.Helper()
	c, err := f.postSvc.Create(context.Background(), ownerID, models.CreateContentRequest{Desc: desc})
	require.NoError(t, err)
	return c
}

type failingNotifier struct {
	err   error
	calls int
}

func (n *failingNotifier) Create(context.Context, string, models.CreateNotificationRequest) (*models.Notification, error) {
	n.calls++
	return nil, n.err
}
