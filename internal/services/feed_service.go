package services

import (
	"context"
	"slices"
	"strings"

	"github.com/anonto42/socialhub/backend/internal/metrics"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimelinePageSize = 20
	MaxTimelinePageSize     = 100
)

// FeedService assembles timelines: a user's own content plus the content of
// everyone they follow, newest first.
type FeedService struct {
	contents repositories.ContentRepository
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	fanout   int
}

// NewFeedService builds a feed over one content collection. fanout bounds the
// number of concurrent per-owner fetches.
func NewFeedService(
	contents repositories.ContentRepository,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	fanout int,
) *FeedService {
	if fanout < 1 {
		fanout = 1
	}
	return &FeedService{contents: contents, users: users, follows: follows, fanout: fanout}
}

// audience resolves the user and returns their id followed by their
// followings, without duplicates.
func (s *FeedService) audience(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	followings, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(followings)+1)
	seen := map[string]bool{userID: true}
	ids = append(ids, userID)
	for _, id := range followings {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Timeline returns all content owned by userID or any of their followings.
// Owners are fetched concurrently; the first failure cancels the rest.
func (s *FeedService) Timeline(ctx context.Context, userID string) ([]models.Content, error) {
	owners, err := s.audience(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.RecordTimelineSources(len(owners))

	results := make([][]models.Content, len(owners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, owner := range owners {
		g.Go(func() error {
			items, err := s.contents.ListByOwner(gctx, owner)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeNewestFirst(results), nil
}

// TimelinePage returns at most limit timeline items positioned after the
// cursor, letting the store filter, sort and limit in one query.
func (s *FeedService) TimelinePage(ctx context.Context, userID string, after *models.TimelineCursor, limit int64) (*models.TimelinePage, error) {
	if limit <= 0 {
		limit = DefaultTimelinePageSize
	}
	if limit > MaxTimelinePageSize {
		limit = MaxTimelinePageSize
	}

	owners, err := s.audience(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.RecordTimelineSources(len(owners))

	items, err := s.contents.ListByOwners(ctx, owners, after, limit)
	if err != nil {
		return nil, err
	}

	page := &models.TimelinePage{Items: items}
	if int64(len(items)) == limit {
		page.NextCursor = models.CursorAfter(items[len(items)-1]).String()
	}
	return page, nil
}

// mergeNewestFirst concatenates the per-owner batches, drops repeated ids and
// sorts by creation time descending. Equal timestamps are ordered by id
// descending so the result is deterministic.
func mergeNewestFirst(batches [][]models.Content) []models.Content {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	merged := make([]models.Content, 0, total)
	seen := make(map[string]bool, total)
	for _, b := range batches {
		for _, c := range b {
			key := c.ID.Hex()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}

	slices.SortFunc(merged, func(a, b models.Content) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return strings.Compare(b.ID.Hex(), a.ID.Hex())
	})
	return merged
}
