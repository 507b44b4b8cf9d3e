package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var epoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func at(t *testing.T, store *repotest.ContentStore, ownerID string, offset time.Duration) models.Content {
	t.Helper()
	c := &models.Content{OwnerID: ownerID, Desc: "post at " + offset.String(), CreatedAt: epoch.Add(offset)}
	require.NoError(t, store.Create(context.Background(), c))
	return *c
}

func ids(items []models.Content) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestTimelineMergesNewestFirst(t *testing.T) {
	a := models.User{ID: "a", Username: "a", Email: "a@example.com", Followings: []string{"b"}}
	b := models.User{ID: "b", Username: "b", Email: "b@example.com"}
	f := newFixture(t, a, b)

	a10 := at(t, f.posts, "a", 10*time.Second)
	b5 := at(t, f.posts, "b", 5*time.Second)
	b20 := at(t, f.posts, "b", 20*time.Second)
	at(t, f.posts, "stranger", 30*time.Second)

	items, err := f.feed.Timeline(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, ids([]models.Content{b20, a10, b5}), ids(items))
}

func TestTimelineNoDuplicates(t *testing.T) {
	a := models.User{ID: "a", Username: "a", Email: "a@example.com", Followings: []string{"b", "b", "a"}}
	b := models.User{ID: "b", Username: "b", Email: "b@example.com"}
	f := newFixture(t, a, b)

	at(t, f.posts, "a", time.Second)
	at(t, f.posts, "b", 2*time.Second)
	at(t, f.posts, "b", 3*time.Second)

	items, err := f.feed.Timeline(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, items, 3)

	seen := map[primitive.ObjectID]bool{}
	for _, c := range items {
		assert.False(t, seen[c.ID], "duplicate %s", c.ID.Hex())
		seen[c.ID] = true
	}
}

func TestTimelineTieBreakIsDeterministic(t *testing.T) {
	a := models.User{ID: "a", Username: "a", Email: "a@example.com", Followings: []string{"b"}}
	b := models.User{ID: "b", Username: "b", Email: "b@example.com"}
	f := newFixture(t, a, b)

	first := at(t, f.posts, "a", time.Minute)
	second := at(t, f.posts, "b", time.Minute)

	items, err := f.feed.Timeline(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, items, 2)
	if first.ID.Hex() > second.ID.Hex() {
		assert.Equal(t, first.ID, items[0].ID)
	} else {
		assert.Equal(t, second.ID, items[0].ID)
	}
}

func TestTimelineEmptyAndMissing(t *testing.T) {
	f := newFixture(t, alice)

	items, err := f.feed.Timeline(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.feed.Timeline(context.Background(), "ghost")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestTimelinePropagatesStoreFailure(t *testing.T) {
	a := models.User{ID: "a", Username: "a", Email: "a@example.com", Followings: []string{"b", "c"}}
	f := newFixture(t, a)
	f.posts.Err = apperrors.Unavailable(errors.New("mongo unreachable"))

	_, err := f.feed.Timeline(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUnavailable))
}

// pageAfter fetches the page following raw, an empty raw meaning the first page.
func pageAfter(t *testing.T, f *fixture, userID, raw string, limit int64) *models.TimelinePage {
	t.Helper()
	var after *models.TimelineCursor
	if raw != "" {
		cursor, err := models.ParseTimelineCursor(raw)
		require.NoError(t, err)
		after = &cursor
	}
	page, err := f.feed.TimelinePage(context.Background(), userID, after, limit)
	require.NoError(t, err)
	return page
}

func TestTimelinePage(t *testing.T) {
	a := models.User{ID: "a", Username: "a", Email: "a@example.com", Followings: []string{"b"}}
	b := models.User{ID: "b", Username: "b", Email: "b@example.com"}
	f := newFixture(t, a, b)

	p1 := at(t, f.posts, "a", 1*time.Second)
	p2 := at(t, f.posts, "b", 2*time.Second)
	p3 := at(t, f.posts, "a", 3*time.Second)
	p4 := at(t, f.posts, "b", 4*time.Second)

	page := pageAfter(t, f, "a", "", 2)
	assert.Equal(t, ids([]models.Content{p4, p3}), ids(page.Items))
	require.NotEmpty(t, page.NextCursor)

	page = pageAfter(t, f, "a", page.NextCursor, 2)
	assert.Equal(t, ids([]models.Content{p2, p1}), ids(page.Items))
	require.NotEmpty(t, page.NextCursor)

	page = pageAfter(t, f, "a", page.NextCursor, 2)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)

	page = pageAfter(t, f, "a", "", 0)
	assert.Len(t, page.Items, 4)
	assert.Empty(t, page.NextCursor)
}

func TestTimelinePageKeepsEqualTimestamps(t *testing.T) {
	a := models.User{ID: "a", Username: "a", Email: "a@example.com", Followings: []string{"b"}}
	b := models.User{ID: "b", Username: "b", Email: "b@example.com"}
	f := newFixture(t, a, b)

	at(t, f.posts, "a", time.Second)
	at(t, f.posts, "b", time.Second)
	at(t, f.posts, "a", time.Second)
	at(t, f.posts, "b", 0)

	full, err := f.feed.Timeline(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, full, 4)

	var paged []models.Content
	cursor := ""
	for i := 0; i < 10; i++ {
		page := pageAfter(t, f, "a", cursor, 2)
		paged = append(paged, page.Items...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, ids(full), ids(paged))
}

func TestMergeNewestFirst(t *testing.T) {
	x := models.Content{ID: primitive.NewObjectID(), CreatedAt: epoch}
	y := models.Content{ID: primitive.NewObjectID(), CreatedAt: epoch.Add(time.Hour)}

	merged := mergeNewestFirst([][]models.Content{{x}, {y, x}, nil})
	assert.Equal(t, []primitive.ObjectID{y.ID, x.ID}, ids(merged))
	assert.Empty(t, mergeNewestFirst(nil))
}
