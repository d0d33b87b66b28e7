package bibleapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "web")
	c.retryStep = time.Millisecond
	return c
}

func chapterJSON(verses string) string {
	return fmt.Sprintf(`{
		"reference": "Genesis 1",
		"verses": [%s],
		"translation_id": "web",
		"translation_name": "World English Bible"
	}`, verses)
}

func TestFetchChapterNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/GEN+1", r.URL.Path)
		assert.Equal(t, "web", r.URL.Query().Get("translation"))
		fmt.Fprint(w, chapterJSON(`
			{"book_id":"GEN","book_name":"Genesis","chapter":1,"verse":1,"text":"In the beginning,\nGod created  the heavens and the earth.\n"},
			{"book_id":"GEN","book_name":"Genesis","chapter":1,"verse":2,"text":"The earth was formless and empty."}
		`))
	}))
	defer srv.Close()

	verses, err := newTestClient(srv.URL).FetchChapter(context.Background(), "GEN", 1)
	require.NoError(t, err)
	require.Len(t, verses, 2)

	v := verses[0]
	assert.Equal(t, "GEN:1:1", v.ID)
	assert.Equal(t, "Genesis", v.Book)
	assert.Equal(t, 0, v.BookIndex)
	assert.Equal(t, "Genesis 1:1", v.Reference)
	assert.Equal(t, "In the beginning, God created the heavens and the earth.", v.Text)
}

func TestFetchChapterRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chapterJSON(`{"book_id":"GEN","book_name":"Genesis","chapter":1,"verse":1,"text":"x"}`))
	}))
	defer srv.Close()

	verses, err := newTestClient(srv.URL).FetchChapter(context.Background(), "GEN", 1)
	require.NoError(t, err)
	assert.Len(t, verses, 1)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchChapterExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	verses, err := newTestClient(srv.URL).FetchChapter(context.Background(), "GEN", 1)
	assert.Error(t, err)
	assert.Nil(t, verses)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchChapterEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chapterJSON(``))
	}))
	defer srv.Close()

	verses, err := newTestClient(srv.URL).FetchChapter(context.Background(), "GEN", 1)
	require.NoError(t, err)
	assert.Nil(t, verses)
}

func TestFetchChapterUnknownBook(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	verses, err := newTestClient(srv.URL).FetchChapter(context.Background(), "XYZ", 1)
	require.NoError(t, err)
	assert.Nil(t, verses)
	assert.Zero(t, calls.Load(), "unknown book must not hit the network")
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", normalizeText(" a\nb\n  c "))
	assert.Equal(t, "", normalizeText("  \n "))
}
