package feed

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/daily-bread/daily-bread-api/internal/bible"
)

// Fetcher is the remote chapter fetcher collaborator.
type Fetcher interface {
	FetchChapter(ctx context.Context, bookAbbr string, chapter int) ([]bible.Verse, error)
}

// chapterPick is one (book, chapter) candidate for fetching.
type chapterPick struct {
	book    bible.BookInfo
	chapter int
}

// Cache lazily populates the verse store one chapter at a time and decides
// which chapters to prefetch on a cold start.
type Cache struct {
	verses  VerseRepo
	fetcher Fetcher
	rng     *rand.Rand
	mu      sync.Mutex // guards rng; fetch fan-out shuffles from goroutine callers
}

func NewCache(verses VerseRepo, fetcher Fetcher, rng *rand.Rand) *Cache {
	return &Cache{verses: verses, fetcher: fetcher, rng: rng}
}

// ChapterVerses returns the cached verses for a chapter, fetching and
// storing them first on a miss. The verse batch and the chapter marker are
// written in one transaction. A failed or empty fetch yields an empty
// result and writes nothing. Concurrent calls for the same chapter are not
// deduplicated; the upsert keyed by verse id makes duplicates converge.
func (c *Cache) ChapterVerses(ctx context.Context, bookAbbr string, chapter int) ([]bible.Verse, error) {
	book := bible.FindBook(bookAbbr)
	if book == nil {
		return nil, nil
	}

	cached, err := c.verses.HasChapter(ctx, bookAbbr, chapter)
	if err != nil {
		return nil, err
	}
	if cached {
		return c.verses.VersesByChapter(ctx, book.Name, chapter)
	}

	verses, err := c.fetcher.FetchChapter(ctx, bookAbbr, chapter)
	if err != nil {
		log.Printf("fetch %s %d failed: %v", bookAbbr, chapter, err)
		return nil, nil
	}
	if len(verses) == 0 {
		return nil, nil
	}

	marker := CachedChapter{
		ID:         bible.ChapterID(bookAbbr, chapter),
		BookID:     bookAbbr,
		BookName:   book.Name,
		Chapter:    chapter,
		CachedAt:   time.Now(),
		VerseCount: len(verses),
	}
	if err := c.verses.StoreChapter(ctx, verses, marker); err != nil {
		return nil, err
	}
	return verses, nil
}

// Prefetch caches up to target chapters, favoring distinct books for
// topical variety. All picks are fetched concurrently; one chapter's
// failure never aborts or delays the others. Returns the number of picks
// that yielded at least one verse.
func (c *Cache) Prefetch(ctx context.Context, target int) (int, error) {
	uncached, err := c.uncachedChapters(ctx)
	if err != nil {
		return 0, err
	}
	if len(uncached) == 0 || target <= 0 {
		return 0, nil
	}

	picks := c.pickDiverse(uncached, target)

	var wg sync.WaitGroup
	var mu sync.Mutex
	fetched := 0

	for _, p := range picks {
		wg.Add(1)
		go func(p chapterPick) {
			defer wg.Done()
			verses, err := c.ChapterVerses(ctx, p.book.Abbr, p.chapter)
			if err != nil {
				log.Printf("prefetch %s %d: %v", p.book.Abbr, p.chapter, err)
				return
			}
			if len(verses) > 0 {
				mu.Lock()
				fetched++
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	return fetched, nil
}

// FetchRandomChapter caches one uniformly random uncached chapter and
// returns its verses. Returns nil when every chapter is already cached.
func (c *Cache) FetchRandomChapter(ctx context.Context) ([]bible.Verse, error) {
	uncached, err := c.uncachedChapters(ctx)
	if err != nil {
		return nil, err
	}
	if len(uncached) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	pick := uncached[c.rng.Intn(len(uncached))]
	c.mu.Unlock()

	return c.ChapterVerses(ctx, pick.book.Abbr, pick.chapter)
}

// Stats reports chapter-cache coverage.
func (c *Cache) Stats(ctx context.Context) (*CacheStats, error) {
	chapters, err := c.verses.CountCachedChapters(ctx)
	if err != nil {
		return nil, err
	}
	verses, err := c.verses.CountVerses(ctx)
	if err != nil {
		return nil, err
	}
	return &CacheStats{
		CachedChapters: chapters,
		TotalChapters:  bible.TotalChapters(),
		CachedVerses:   verses,
	}, nil
}

func (c *Cache) uncachedChapters(ctx context.Context) ([]chapterPick, error) {
	cachedIDs, err := c.verses.CachedChapterIDs(ctx)
	if err != nil {
		return nil, err
	}

	var uncached []chapterPick
	for _, book := range bible.Books {
		for ch := 1; ch <= book.Chapters; ch++ {
			if _, ok := cachedIDs[bible.ChapterID(book.Abbr, ch)]; !ok {
				uncached = append(uncached, chapterPick{book: book, chapter: ch})
			}
		}
	}
	return uncached, nil
}

// pickDiverse groups candidates by book, shuffles the books, and takes one
// random chapter from each of the first target books. If fewer distinct
// books remain, the shortfall is filled from the leftover pairs, shuffled.
func (c *Cache) pickDiverse(uncached []chapterPick, target int) []chapterPick {
	c.mu.Lock()
	defer c.mu.Unlock()

	byBook := make(map[string][]chapterPick)
	var books []string
	for _, p := range uncached {
		if _, ok := byBook[p.book.Abbr]; !ok {
			books = append(books, p.book.Abbr)
		}
		byBook[p.book.Abbr] = append(byBook[p.book.Abbr], p)
	}

	c.rng.Shuffle(len(books), func(i, j int) {
		books[i], books[j] = books[j], books[i]
	})

	var picks []chapterPick
	picked := make(map[string]struct{})
	for _, abbr := range books {
		if len(picks) >= target {
			break
		}
		candidates := byBook[abbr]
		p := candidates[c.rng.Intn(len(candidates))]
		picks = append(picks, p)
		picked[bible.ChapterID(p.book.Abbr, p.chapter)] = struct{}{}
	}

	if len(picks) < target {
		var leftover []chapterPick
		for _, p := range uncached {
			if _, ok := picked[bible.ChapterID(p.book.Abbr, p.chapter)]; !ok {
				leftover = append(leftover, p)
			}
		}
		c.rng.Shuffle(len(leftover), func(i, j int) {
			leftover[i], leftover[j] = leftover[j], leftover[i]
		})
		for _, p := range leftover {
			if len(picks) >= target {
				break
			}
			picks = append(picks, p)
		}
	}

	return picks
}
