package database

import (
	"context"
	"fmt"
)

// migrations run in order at startup. Statements are idempotent so a restart
// against an existing database is a no-op.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS verses (
		id         TEXT PRIMARY KEY,
		book       TEXT NOT NULL,
		book_index INT  NOT NULL,
		chapter    INT  NOT NULL,
		verse      INT  NOT NULL,
		text       TEXT NOT NULL,
		reference  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verses_book_chapter ON verses (book, chapter)`,
	`CREATE INDEX IF NOT EXISTS idx_verses_book_index ON verses (book_index)`,

	`CREATE TABLE IF NOT EXISTS cached_chapters (
		id          TEXT PRIMARY KEY,
		book_id     TEXT NOT NULL,
		book_name   TEXT NOT NULL,
		chapter     INT  NOT NULL,
		cached_at   TIMESTAMPTZ NOT NULL,
		verse_count INT  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cached_chapters_book ON cached_chapters (book_id, chapter)`,

	`CREATE TABLE IF NOT EXISTS verse_history (
		verse_id     TEXT PRIMARY KEY,
		last_seen_at TIMESTAMPTZ NOT NULL,
		seen_count   INT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS feed_items (
		id         TEXT PRIMARY KEY,
		verse_id   TEXT NOT NULL,
		liked      BOOLEAN NOT NULL DEFAULT FALSE,
		liked_at   TIMESTAMPTZ,
		hidden     BOOLEAN NOT NULL DEFAULT FALSE,
		shown_at   TIMESTAMPTZ NOT NULL,
		sort_order DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_items_verse ON feed_items (verse_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_items_order ON feed_items (sort_order)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_items_liked ON feed_items (liked)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_items_hidden ON feed_items (hidden)`,
	`CREATE INDEX IF NOT EXISTS idx_feed_items_shown_at ON feed_items (shown_at)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id           TEXT PRIMARY KEY,
		feed_item_id TEXT NOT NULL,
		parent_id    TEXT,
		text         TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_feed_item ON comments (feed_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments (created_at)`,
}

func (s *service) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
