package feed

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/daily-bread/daily-bread-api/internal/bible"
)

var errStoreFault = errors.New("injected store fault")

// fakeVerseRepo is an in-memory VerseRepo. StoreChapter honors the
// all-or-nothing contract: with failStore set it writes nothing at all.
type fakeVerseRepo struct {
	mu        sync.Mutex
	verses    map[string]bible.Verse
	chapters  map[string]CachedChapter
	history   map[string]VerseHistory
	failStore bool
}

func newFakeVerseRepo() *fakeVerseRepo {
	return &fakeVerseRepo{
		verses:   make(map[string]bible.Verse),
		chapters: make(map[string]CachedChapter),
		history:  make(map[string]VerseHistory),
	}
}

func (f *fakeVerseRepo) HasChapter(_ context.Context, bookAbbr string, chapter int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.chapters[bible.ChapterID(bookAbbr, chapter)]
	return ok, nil
}

func (f *fakeVerseRepo) CachedChapter(_ context.Context, id string) (*CachedChapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chapters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (f *fakeVerseRepo) StoreChapter(_ context.Context, verses []bible.Verse, marker CachedChapter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStore {
		return errStoreFault
	}
	for _, v := range verses {
		f.verses[v.ID] = v
	}
	f.chapters[marker.ID] = marker
	return nil
}

func (f *fakeVerseRepo) VersesByChapter(_ context.Context, bookName string, chapter int) ([]bible.Verse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bible.Verse
	for _, v := range f.verses {
		if v.Book == bookName && v.Chapter == chapter {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Verse < out[j].Verse })
	return out, nil
}

func (f *fakeVerseRepo) Verse(_ context.Context, id string) (*bible.Verse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.verses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (f *fakeVerseRepo) AllVerses(_ context.Context) ([]bible.Verse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bible.Verse, 0, len(f.verses))
	for _, v := range f.verses {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVerseRepo) CachedChapterIDs(_ context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]struct{}, len(f.chapters))
	for id := range f.chapters {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (f *fakeVerseRepo) CountCachedChapters(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chapters), nil
}

func (f *fakeVerseRepo) CountVerses(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verses), nil
}

func (f *fakeVerseRepo) AllHistory(_ context.Context) (map[string]VerseHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]VerseHistory, len(f.history))
	for k, v := range f.history {
		out[k] = v
	}
	return out, nil
}

func (f *fakeVerseRepo) TouchHistory(_ context.Context, verseID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.history[verseID]
	if !ok {
		f.history[verseID] = VerseHistory{VerseID: verseID, LastSeenAt: at, SeenCount: 1}
		return nil
	}
	h.SeenCount++
	h.LastSeenAt = at
	f.history[verseID] = h
	return nil
}

// markAllCachedExcept inserts markers for every chapter in the canon except
// the given chapter ids, so tests can pin down the uncached set.
func (f *fakeVerseRepo) markAllCachedExcept(except ...string) {
	skip := make(map[string]struct{}, len(except))
	for _, id := range except {
		skip[id] = struct{}{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, book := range bible.Books {
		for ch := 1; ch <= book.Chapters; ch++ {
			id := bible.ChapterID(book.Abbr, ch)
			if _, ok := skip[id]; ok {
				continue
			}
			f.chapters[id] = CachedChapter{
				ID: id, BookID: book.Abbr, BookName: book.Name,
				Chapter: ch, CachedAt: time.Now(), VerseCount: 0,
			}
		}
	}
}

// fakeFeedRepo is an in-memory FeedRepo.
type fakeFeedRepo struct {
	mu       sync.Mutex
	items    map[string]FeedItem
	comments map[string]Comment
}

func newFakeFeedRepo() *fakeFeedRepo {
	return &fakeFeedRepo{
		items:    make(map[string]FeedItem),
		comments: make(map[string]Comment),
	}
}

func (f *fakeFeedRepo) CreateFeedItem(_ context.Context, item FeedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
	return nil
}

func (f *fakeFeedRepo) FeedItem(_ context.Context, id string) (*FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (f *fakeFeedRepo) SetLiked(_ context.Context, id string, liked bool, likedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	item.Liked = liked
	item.LikedAt = likedAt
	f.items[id] = item
	return nil
}

func (f *fakeFeedRepo) SetHidden(_ context.Context, id string, hidden bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	item.Hidden = hidden
	f.items[id] = item
	return nil
}

func (f *fakeFeedRepo) LikedItems(_ context.Context) ([]FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FeedItem
	for _, item := range f.items {
		if item.Liked {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) FeedVerseIDs(_ context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]struct{})
	for _, item := range f.items {
		ids[item.VerseID] = struct{}{}
	}
	return ids, nil
}

func (f *fakeFeedRepo) VisibleItems(_ context.Context) ([]FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FeedItem
	for _, item := range f.items {
		if !item.Hidden {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeFeedRepo) CreateComment(_ context.Context, c Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[c.ID] = c
	return nil
}

func (f *fakeFeedRepo) Comment(_ context.Context, id string) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (f *fakeFeedRepo) CommentsForItem(_ context.Context, feedItemID string) ([]Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Comment
	for _, c := range f.comments {
		if c.FeedItemID == feedItemID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeFeedRepo) ChildComments(_ context.Context, parentID string) ([]Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Comment
	for _, c := range f.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeFeedRepo) DeleteComments(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.comments, id)
	}
	return nil
}

// fakeFetcher synthesizes versesPerChapter verses for any requested chapter
// unless the book is listed in failBooks.
type fakeFetcher struct {
	mu               sync.Mutex
	versesPerChapter int
	failBooks        map[string]struct{}
	calls            []string
}

func newFakeFetcher(versesPerChapter int) *fakeFetcher {
	return &fakeFetcher{
		versesPerChapter: versesPerChapter,
		failBooks:        make(map[string]struct{}),
	}
}

func (f *fakeFetcher) FetchChapter(_ context.Context, bookAbbr string, chapter int) ([]bible.Verse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, bible.ChapterID(bookAbbr, chapter))
	_, fail := f.failBooks[bookAbbr]
	f.mu.Unlock()

	if fail {
		return nil, errors.New("simulated fetch failure")
	}

	book := bible.FindBook(bookAbbr)
	if book == nil {
		return nil, nil
	}

	verses := make([]bible.Verse, 0, f.versesPerChapter)
	for v := 1; v <= f.versesPerChapter; v++ {
		verses = append(verses, bible.Verse{
			ID:        bible.VerseID(bookAbbr, chapter, v),
			Book:      book.Name,
			BookIndex: book.Index,
			Chapter:   chapter,
			Verse:     v,
			Text:      "text of " + bible.VerseID(bookAbbr, chapter, v),
			Reference: book.Name,
		})
	}
	return verses, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
