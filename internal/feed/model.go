package feed

import (
	"time"

	"github.com/daily-bread/daily-bread-api/internal/bible"
)

// FeedItem is a materialized verse "post" in the scroll.
type FeedItem struct {
	ID      string `json:"id"`
	VerseID string `json:"verse_id"`
	Liked   bool   `json:"liked"`
	// Set iff Liked is true; drives next-day resurfacing.
	LikedAt *time.Time `json:"liked_at,omitempty"`
	Hidden  bool       `json:"hidden"`
	ShownAt time.Time  `json:"shown_at"`
	// Monotonically-perturbed sort key (epoch millis + random tie-break).
	// Never reused across items.
	Order float64 `json:"order"`
}

// Comment is one node of the per-item comment forest.
type Comment struct {
	ID         string `json:"id"`
	FeedItemID string `json:"feed_item_id"`
	// nil = top-level, otherwise a reply to another comment.
	ParentID  *string   `json:"parent_id,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CachedChapter asserts that every verse of a chapter is present in the
// verse table. Written exactly once, atomically with its verse batch.
type CachedChapter struct {
	// Composite key: "GEN:1"
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	BookName   string    `json:"book_name"`
	Chapter    int       `json:"chapter"`
	CachedAt   time.Time `json:"cached_at"`
	VerseCount int       `json:"verse_count"`
}

// VerseHistory records how often and how recently a verse has been shown.
// Only used to compute sampling weight.
type VerseHistory struct {
	VerseID    string    `json:"verse_id"`
	LastSeenAt time.Time `json:"last_seen_at"`
	SeenCount  int       `json:"seen_count"`
}

// FeedEntry joins a feed item with its verse for the UI.
type FeedEntry struct {
	FeedItem FeedItem    `json:"feed_item"`
	Verse    bible.Verse `json:"verse"`
}

// CacheStats summarizes chapter-cache coverage.
type CacheStats struct {
	CachedChapters int `json:"cached_chapters"`
	TotalChapters  int `json:"total_chapters"`
	CachedVerses   int `json:"cached_verses"`
}

type AddCommentRequest struct {
	FeedItemID string  `json:"feed_item_id"`
	Text       string  `json:"text"`
	ParentID   *string `json:"parent_id,omitempty"`
}

type FeedItemRequest struct {
	FeedItemID string `json:"feed_item_id"`
}
