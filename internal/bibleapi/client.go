// Package bibleapi fetches chapters from bible-api.com and normalizes the
// response into verse records ready for storage.
package bibleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/daily-bread/daily-bread-api/internal/bible"
)

const (
	maxAttempts  = 3
	backoffStep  = 500 * time.Millisecond
	DefaultURL   = "https://bible-api.com"
	DefaultTrans = "web"
)

// apiVerse is the raw verse shape from bible-api.com.
type apiVerse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

type apiResponse struct {
	Reference       string     `json:"reference"`
	Verses          []apiVerse `json:"verses"`
	TranslationID   string     `json:"translation_id"`
	TranslationName string     `json:"translation_name"`
}

// Client talks to the remote verse API. One request per (book, chapter) with
// sequential retries inside a single logical call.
type Client struct {
	baseURL     string
	translation string
	http        *http.Client
	retryStep   time.Duration
}

func NewClient(baseURL, translation string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if translation == "" {
		translation = DefaultTrans
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		translation: translation,
		http:        &http.Client{Timeout: 15 * time.Second},
		retryStep:   backoffStep,
	}
}

// linearBackOff waits attempt*step between tries: 500ms, then 1000ms.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return time.Duration(l.attempt) * l.step
}

func (l *linearBackOff) Reset() { l.attempt = 0 }

// FetchChapter fetches one chapter and returns normalized verses.
// Returns (nil, nil) when the book is unknown or the chapter is genuinely
// empty, and (nil, err) when every attempt failed — callers that only care
// about "nothing to add" can treat both the same.
func (c *Client) FetchChapter(ctx context.Context, bookAbbr string, chapter int) ([]bible.Verse, error) {
	book := bible.FindBook(bookAbbr)
	if book == nil {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s+%d?translation=%s", c.baseURL, bookAbbr, chapter, c.translation)

	var data apiResponse
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode > 299 {
			return fmt.Errorf("bible api returned status %d", res.StatusCode)
		}
		if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
			return err
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: c.retryStep}, maxAttempts-1),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("fetch %s %d: %w", bookAbbr, chapter, err)
	}

	if len(data.Verses) == 0 {
		return nil, nil
	}

	verses := make([]bible.Verse, 0, len(data.Verses))
	for _, v := range data.Verses {
		verses = append(verses, bible.Verse{
			ID:        bible.VerseID(bookAbbr, v.Chapter, v.Verse),
			Book:      book.Name,
			BookIndex: book.Index,
			Chapter:   v.Chapter,
			Verse:     v.Verse,
			Text:      normalizeText(v.Text),
			Reference: fmt.Sprintf("%s %d:%d", book.Name, v.Chapter, v.Verse),
		})
	}
	return verses, nil
}

// normalizeText strips embedded newlines, collapses runs of whitespace to a
// single space and trims the ends.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
