package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daily-bread/daily-bread-api/internal/bible"
	"github.com/daily-bread/daily-bread-api/internal/database"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrInternalServer = errors.New("internal server error")
)

// VerseRepo persists verses, chapter markers and per-verse history.
type VerseRepo interface {
	// HasChapter reports whether a chapter's marker exists, i.e. whether the
	// whole chapter is already in the verse table.
	HasChapter(ctx context.Context, bookAbbr string, chapter int) (bool, error)
	// StoreChapter writes the verse batch and its marker in one transaction;
	// a reader never sees one without the other. Upserts keyed by id, so a
	// duplicate fetch of the same chapter converges.
	StoreChapter(ctx context.Context, verses []bible.Verse, marker CachedChapter) error
	VersesByChapter(ctx context.Context, bookName string, chapter int) ([]bible.Verse, error)
	Verse(ctx context.Context, id string) (*bible.Verse, error)
	AllVerses(ctx context.Context) ([]bible.Verse, error)
	CachedChapterIDs(ctx context.Context) (map[string]struct{}, error)
	CountCachedChapters(ctx context.Context) (int, error)
	CountVerses(ctx context.Context) (int, error)
	AllHistory(ctx context.Context) (map[string]VerseHistory, error)
	// TouchHistory bumps seen_count (or starts it at 1) and overwrites
	// last_seen_at.
	TouchHistory(ctx context.Context, verseID string, at time.Time) error
}

// FeedRepo persists feed items and their comment forest.
type FeedRepo interface {
	CreateFeedItem(ctx context.Context, item FeedItem) error
	FeedItem(ctx context.Context, id string) (*FeedItem, error)
	SetLiked(ctx context.Context, id string, liked bool, likedAt *time.Time) error
	SetHidden(ctx context.Context, id string, hidden bool) error
	LikedItems(ctx context.Context) ([]FeedItem, error)
	// FeedVerseIDs returns the verse id of every item ever created, hidden
	// or not — the sampler's exclusion set.
	FeedVerseIDs(ctx context.Context) (map[string]struct{}, error)
	VisibleItems(ctx context.Context) ([]FeedItem, error)

	CreateComment(ctx context.Context, c Comment) error
	Comment(ctx context.Context, id string) (*Comment, error)
	CommentsForItem(ctx context.Context, feedItemID string) ([]Comment, error)
	ChildComments(ctx context.Context, parentID string) ([]Comment, error)
	DeleteComments(ctx context.Context, ids []string) error
}

type verseRepo struct {
	db *sql.DB
}

func NewVerseRepo(dbService database.Service) VerseRepo {
	return &verseRepo{db: dbService.DB()}
}

func (r *verseRepo) HasChapter(ctx context.Context, bookAbbr string, chapter int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM cached_chapters WHERE id = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, bible.ChapterID(bookAbbr, chapter)).Scan(&exists)
	if err != nil {
		return false, ErrInternalServer
	}
	return exists, nil
}

func (r *verseRepo) StoreChapter(ctx context.Context, verses []bible.Verse, marker CachedChapter) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chapter store: %w", err)
	}
	defer tx.Rollback()

	verseQuery := `
		INSERT INTO verses (id, book, book_index, chapter, verse, text, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			reference = EXCLUDED.reference
	`
	for _, v := range verses {
		if _, err := tx.ExecContext(ctx, verseQuery,
			v.ID, v.Book, v.BookIndex, v.Chapter, v.Verse, v.Text, v.Reference,
		); err != nil {
			return fmt.Errorf("store verse %s: %w", v.ID, err)
		}
	}

	markerQuery := `
		INSERT INTO cached_chapters (id, book_id, book_name, chapter, cached_at, verse_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			cached_at = EXCLUDED.cached_at,
			verse_count = EXCLUDED.verse_count
	`
	if _, err := tx.ExecContext(ctx, markerQuery,
		marker.ID, marker.BookID, marker.BookName, marker.Chapter, marker.CachedAt, marker.VerseCount,
	); err != nil {
		return fmt.Errorf("store chapter marker %s: %w", marker.ID, err)
	}

	return tx.Commit()
}

func (r *verseRepo) VersesByChapter(ctx context.Context, bookName string, chapter int) ([]bible.Verse, error) {
	query := `
		SELECT id, book, book_index, chapter, verse, text, reference
		FROM verses
		WHERE book = $1 AND chapter = $2
		ORDER BY verse
	`

	rows, err := r.db.QueryContext(ctx, query, bookName, chapter)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	return scanVerses(rows)
}

func (r *verseRepo) Verse(ctx context.Context, id string) (*bible.Verse, error) {
	query := `
		SELECT id, book, book_index, chapter, verse, text, reference
		FROM verses
		WHERE id = $1
	`

	var v bible.Verse
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Book, &v.BookIndex, &v.Chapter, &v.Verse, &v.Text, &v.Reference,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ErrInternalServer
	}
	return &v, nil
}

func (r *verseRepo) AllVerses(ctx context.Context) ([]bible.Verse, error) {
	query := `
		SELECT id, book, book_index, chapter, verse, text, reference
		FROM verses
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	return scanVerses(rows)
}

func (r *verseRepo) CachedChapterIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM cached_chapters`)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, ErrInternalServer
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *verseRepo) CountCachedChapters(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cached_chapters`).Scan(&n); err != nil {
		return 0, ErrInternalServer
	}
	return n, nil
}

func (r *verseRepo) CountVerses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verses`).Scan(&n); err != nil {
		return 0, ErrInternalServer
	}
	return n, nil
}

func (r *verseRepo) AllHistory(ctx context.Context) (map[string]VerseHistory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT verse_id, last_seen_at, seen_count FROM verse_history`)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	history := make(map[string]VerseHistory)
	for rows.Next() {
		var h VerseHistory
		if err := rows.Scan(&h.VerseID, &h.LastSeenAt, &h.SeenCount); err != nil {
			return nil, ErrInternalServer
		}
		history[h.VerseID] = h
	}
	return history, rows.Err()
}

func (r *verseRepo) TouchHistory(ctx context.Context, verseID string, at time.Time) error {
	query := `
		INSERT INTO verse_history (verse_id, last_seen_at, seen_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (verse_id) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			seen_count = verse_history.seen_count + 1
	`
	if _, err := r.db.ExecContext(ctx, query, verseID, at); err != nil {
		return ErrInternalServer
	}
	return nil
}

func scanVerses(rows *sql.Rows) ([]bible.Verse, error) {
	var verses []bible.Verse
	for rows.Next() {
		var v bible.Verse
		if err := rows.Scan(&v.ID, &v.Book, &v.BookIndex, &v.Chapter, &v.Verse, &v.Text, &v.Reference); err != nil {
			return nil, ErrInternalServer
		}
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrInternalServer
	}
	return verses, nil
}

type feedRepo struct {
	db *sql.DB
}

func NewFeedRepo(dbService database.Service) FeedRepo {
	return &feedRepo{db: dbService.DB()}
}

func (r *feedRepo) CreateFeedItem(ctx context.Context, item FeedItem) error {
	query := `
		INSERT INTO feed_items (id, verse_id, liked, liked_at, hidden, shown_at, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.VerseID, item.Liked, item.LikedAt, item.Hidden, item.ShownAt, item.Order,
	)
	if err != nil {
		return ErrInternalServer
	}
	return nil
}

func (r *feedRepo) FeedItem(ctx context.Context, id string) (*FeedItem, error) {
	query := `
		SELECT id, verse_id, liked, liked_at, hidden, shown_at, sort_order
		FROM feed_items
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	item, err := scanFeedItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ErrInternalServer
	}
	return item, nil
}

func (r *feedRepo) SetLiked(ctx context.Context, id string, liked bool, likedAt *time.Time) error {
	query := `UPDATE feed_items SET liked = $2, liked_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, liked, likedAt); err != nil {
		return ErrInternalServer
	}
	return nil
}

func (r *feedRepo) SetHidden(ctx context.Context, id string, hidden bool) error {
	query := `UPDATE feed_items SET hidden = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, hidden); err != nil {
		return ErrInternalServer
	}
	return nil
}

func (r *feedRepo) LikedItems(ctx context.Context) ([]FeedItem, error) {
	query := `
		SELECT id, verse_id, liked, liked_at, hidden, shown_at, sort_order
		FROM feed_items
		WHERE liked = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	return scanFeedItems(rows)
}

func (r *feedRepo) FeedVerseIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT verse_id FROM feed_items`)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, ErrInternalServer
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *feedRepo) VisibleItems(ctx context.Context) ([]FeedItem, error) {
	query := `
		SELECT id, verse_id, liked, liked_at, hidden, shown_at, sort_order
		FROM feed_items
		WHERE hidden = FALSE
		ORDER BY sort_order
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	return scanFeedItems(rows)
}

func (r *feedRepo) CreateComment(ctx context.Context, c Comment) error {
	query := `
		INSERT INTO comments (id, feed_item_id, parent_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.FeedItemID, c.ParentID, c.Text, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return ErrInternalServer
	}
	return nil
}

func (r *feedRepo) Comment(ctx context.Context, id string) (*Comment, error) {
	query := `
		SELECT id, feed_item_id, parent_id, text, created_at, updated_at
		FROM comments
		WHERE id = $1
	`

	var c Comment
	var parent sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.FeedItemID, &parent, &c.Text, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ErrInternalServer
	}
	if parent.Valid {
		c.ParentID = &parent.String
	}
	return &c, nil
}

func (r *feedRepo) CommentsForItem(ctx context.Context, feedItemID string) ([]Comment, error) {
	query := `
		SELECT id, feed_item_id, parent_id, text, created_at, updated_at
		FROM comments
		WHERE feed_item_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, feedItemID)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	return scanComments(rows)
}

func (r *feedRepo) ChildComments(ctx context.Context, parentID string) ([]Comment, error) {
	query := `
		SELECT id, feed_item_id, parent_id, text, created_at, updated_at
		FROM comments
		WHERE parent_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, ErrInternalServer
	}
	defer rows.Close()

	return scanComments(rows)
}

func (r *feedRepo) DeleteComments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`DELETE FROM comments WHERE id IN (%s)`, strings.Join(placeholders, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return ErrInternalServer
	}
	return nil
}

func scanFeedItem(scan func(...any) error) (*FeedItem, error) {
	var item FeedItem
	var likedAt sql.NullTime
	if err := scan(
		&item.ID, &item.VerseID, &item.Liked, &likedAt, &item.Hidden, &item.ShownAt, &item.Order,
	); err != nil {
		return nil, err
	}
	if likedAt.Valid {
		t := likedAt.Time
		item.LikedAt = &t
	}
	return &item, nil
}

func scanFeedItems(rows *sql.Rows) ([]FeedItem, error) {
	var items []FeedItem
	for rows.Next() {
		item, err := scanFeedItem(rows.Scan)
		if err != nil {
			return nil, ErrInternalServer
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrInternalServer
	}
	return items, nil
}

func scanComments(rows *sql.Rows) ([]Comment, error) {
	var comments []Comment
	for rows.Next() {
		var c Comment
		var parent sql.NullString
		if err := rows.Scan(&c.ID, &c.FeedItemID, &parent, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, ErrInternalServer
		}
		if parent.Valid {
			c.ParentID = &parent.String
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrInternalServer
	}
	return comments, nil
}
