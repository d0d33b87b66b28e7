package bible

import "fmt"

// Verse is a single cached verse. Verses are created by the fetcher's
// normalization step and are immutable afterwards; the verse table is
// append-only.
type Verse struct {
	// Composite key: "GEN:1:1"
	ID string `json:"id"`
	// Full book name: "Genesis"
	Book string `json:"book"`
	// Canonical position 0-65
	BookIndex int    `json:"book_index"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
	Text      string `json:"text"`
	// Human-readable: "Genesis 1:1"
	Reference string `json:"reference"`
}

// VerseID builds the composite verse key, e.g. "GEN:1:1".
func VerseID(bookAbbr string, chapter, verse int) string {
	return fmt.Sprintf("%s:%d:%d", bookAbbr, chapter, verse)
}
