package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daily-bread/daily-bread-api/internal/bible"
)

var (
	ErrFeedItemNotFound = errors.New("feed item not found")
	ErrEmptyComment     = errors.New("comment text is empty")
	ErrParentMismatch   = errors.New("parent comment belongs to another feed item")
)

// Service orchestrates batch generation, likes, hides and comments.
type Service struct {
	verses  VerseRepo
	feed    FeedRepo
	cache   *Cache
	sampler *Sampler

	batchSize         int
	prefetchThreshold int

	now  func() time.Time
	rand func() float64 // order tie-break
}

type ServiceOption func(*Service)

// WithBatchSize overrides the default batch size of 10.
func WithBatchSize(n int) ServiceOption {
	return func(s *Service) { s.batchSize = n }
}

// WithPrefetchThreshold overrides the cold-start threshold of 5 chapters.
func WithPrefetchThreshold(n int) ServiceOption {
	return func(s *Service) { s.prefetchThreshold = n }
}

// WithClock pins the service clock (tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithTieBreak pins the order tie-break source (tests).
func WithTieBreak(f func() float64) ServiceOption {
	return func(s *Service) { s.rand = f }
}

func NewService(verses VerseRepo, feed FeedRepo, cache *Cache, sampler *Sampler, opts ...ServiceOption) *Service {
	s := &Service{
		verses:            verses,
		feed:              feed,
		cache:             cache,
		sampler:           sampler,
		batchSize:         10,
		prefetchThreshold: 5,
		now:               time.Now,
	}
	s.rand = sampler.Float64
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateFeedBatch runs one batch-generation pass:
//  1. warm the chapter cache when below the prefetch threshold
//  2. resurface items liked before today
//  3. fill the remainder with sampled verses, fetching one extra random
//     chapter when the cached pool runs short
//  4. persist the new items and bump verse history
//
// A failure aborts the remaining steps but previously persisted state stays.
func (s *Service) GenerateFeedBatch(ctx context.Context) ([]FeedEntry, error) {
	if err := s.warmUp(ctx); err != nil {
		return nil, err
	}

	results, err := s.resurfaceLiked(ctx)
	if err != nil {
		return nil, err
	}

	remaining := s.batchSize - len(results)
	if remaining <= 0 {
		return results, nil
	}

	sampled, err := s.sampleVerses(ctx, remaining)
	if err != nil {
		return nil, err
	}

	for _, verse := range sampled {
		item := s.newFeedItem(verse.ID)
		if err := s.feed.CreateFeedItem(ctx, item); err != nil {
			return nil, fmt.Errorf("create feed item: %w", err)
		}
		if err := s.verses.TouchHistory(ctx, verse.ID, s.now()); err != nil {
			return nil, fmt.Errorf("touch verse history: %w", err)
		}
		results = append(results, FeedEntry{FeedItem: item, Verse: verse})
	}

	return results, nil
}

// warmUp prefetches a minimally diverse pool when the cache is cold.
func (s *Service) warmUp(ctx context.Context) error {
	count, err := s.verses.CountCachedChapters(ctx)
	if err != nil {
		return fmt.Errorf("count cached chapters: %w", err)
	}
	if count >= s.prefetchThreshold {
		return nil
	}

	fetched, err := s.cache.Prefetch(ctx, s.prefetchThreshold)
	if err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	log.Printf("cache warm-up fetched %d chapters", fetched)
	return nil
}

// resurfaceLiked retires every item liked before today and re-inserts its
// verse as a brand-new item. The retired row stays in storage.
func (s *Service) resurfaceLiked(ctx context.Context) ([]FeedEntry, error) {
	liked, err := s.feed.LikedItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list liked items: %w", err)
	}

	today := s.startOfToday()
	var results []FeedEntry
	for _, item := range liked {
		if item.LikedAt == nil || !item.LikedAt.Before(today) {
			continue
		}

		if err := s.feed.SetLiked(ctx, item.ID, false, nil); err != nil {
			return nil, fmt.Errorf("retire liked item: %w", err)
		}

		verse, err := s.verses.Verse(ctx, item.VerseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("look up resurfaced verse: %w", err)
		}

		newItem := s.newFeedItem(item.VerseID)
		if err := s.feed.CreateFeedItem(ctx, newItem); err != nil {
			return nil, fmt.Errorf("create resurfaced item: %w", err)
		}
		results = append(results, FeedEntry{FeedItem: newItem, Verse: *verse})
	}
	return results, nil
}

// sampleVerses draws n verses from the cached pool minus every verse already
// in the feed. When the pool runs short it fetches one random uncached
// chapter and retries against the combined pool.
func (s *Service) sampleVerses(ctx context.Context, n int) ([]bible.Verse, error) {
	exclude, err := s.feed.FeedVerseIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect feed verse ids: %w", err)
	}
	history, err := s.verses.AllHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load verse history: %w", err)
	}

	pool, err := s.availableVerses(ctx, exclude)
	if err != nil {
		return nil, err
	}

	if len(pool) < n {
		if _, err := s.cache.FetchRandomChapter(ctx); err != nil {
			return nil, fmt.Errorf("fetch random chapter: %w", err)
		}
		pool, err = s.availableVerses(ctx, exclude)
		if err != nil {
			return nil, err
		}
	}

	return s.sampler.Sample(pool, n, history), nil
}

func (s *Service) availableVerses(ctx context.Context, exclude map[string]struct{}) ([]bible.Verse, error) {
	all, err := s.verses.AllVerses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cached verses: %w", err)
	}

	available := make([]bible.Verse, 0, len(all))
	for _, v := range all {
		if _, ok := exclude[v.ID]; !ok {
			available = append(available, v)
		}
	}
	return available, nil
}

func (s *Service) newFeedItem(verseID string) FeedItem {
	now := s.now()
	return FeedItem{
		ID:      uuid.NewString(),
		VerseID: verseID,
		Liked:   false,
		Hidden:  false,
		ShownAt: now,
		Order:   float64(now.UnixMilli()) + s.rand(),
	}
}

func (s *Service) startOfToday() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// ToggleLike flips the liked flag; liking stamps likedAt, unliking clears it.
func (s *Service) ToggleLike(ctx context.Context, feedItemID string) error {
	item, err := s.feed.FeedItem(ctx, feedItemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrFeedItemNotFound
		}
		return err
	}

	if item.Liked {
		return s.feed.SetLiked(ctx, feedItemID, false, nil)
	}
	now := s.now()
	return s.feed.SetLiked(ctx, feedItemID, true, &now)
}

// HideFeedItem hides an item from the visible feed. There is no route to
// unhide, but the store does not forbid it.
func (s *Service) HideFeedItem(ctx context.Context, feedItemID string) error {
	if _, err := s.feed.FeedItem(ctx, feedItemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrFeedItemNotFound
		}
		return err
	}
	return s.feed.SetHidden(ctx, feedItemID, true)
}

// VisibleFeed returns all non-hidden items joined with their verses, in
// feed order. The reactive layer re-runs this query on mutation.
func (s *Service) VisibleFeed(ctx context.Context) ([]FeedEntry, error) {
	items, err := s.feed.VisibleItems(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]FeedEntry, 0, len(items))
	for _, item := range items {
		verse, err := s.verses.Verse(ctx, item.VerseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, FeedEntry{FeedItem: item, Verse: *verse})
	}
	return entries, nil
}

// AddComment creates a comment on a feed item. A parent comment, when
// given, must belong to the same item.
func (s *Service) AddComment(ctx context.Context, feedItemID, text string, parentID *string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.feed.FeedItem(ctx, feedItemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrFeedItemNotFound
		}
		return nil, err
	}

	if parentID != nil {
		parent, err := s.feed.Comment(ctx, *parentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrParentMismatch
			}
			return nil, err
		}
		if parent.FeedItemID != feedItemID {
			return nil, ErrParentMismatch
		}
	}

	now := s.now()
	comment := Comment{
		ID:         uuid.NewString(),
		FeedItemID: feedItemID,
		ParentID:   parentID,
		Text:       text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.feed.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CommentsForItem lists an item's comments ordered by creation time.
func (s *Service) CommentsForItem(ctx context.Context, feedItemID string) ([]Comment, error) {
	return s.feed.CommentsForItem(ctx, feedItemID)
}

// DeleteComment removes a comment and all its descendants: breadth-first
// collection of the subtree, then one bulk delete. Unknown ids are a no-op.
func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	toDelete := []string{commentID}
	for i := 0; i < len(toDelete); i++ {
		children, err := s.feed.ChildComments(ctx, toDelete[i])
		if err != nil {
			return err
		}
		for _, child := range children {
			toDelete = append(toDelete, child.ID)
		}
	}
	return s.feed.DeleteComments(ctx, toDelete)
}

// CacheStats reports chapter-cache coverage for the credits panel.
func (s *Service) CacheStats(ctx context.Context) (*CacheStats, error) {
	return s.cache.Stats(ctx)
}
