// Package bible holds the static canon table and the verse record shared by
// the fetcher and the feed engine.
package bible

import "fmt"

// BookInfo describes one book of the 66-book canon.
type BookInfo struct {
	// Abbreviation used by bible-api.com, e.g. "GEN"
	Abbr string `json:"abbr"`
	// Full name, e.g. "Genesis"
	Name string `json:"name"`
	// Number of chapters
	Chapters int `json:"chapters"`
	// Canonical position 0-65
	Index int `json:"index"`
}

// Books lists every book in canonical order. Loaded once, never persisted.
var Books = []BookInfo{
	{Abbr: "GEN", Name: "Genesis", Chapters: 50, Index: 0},
	{Abbr: "EXO", Name: "Exodus", Chapters: 40, Index: 1},
	{Abbr: "LEV", Name: "Leviticus", Chapters: 27, Index: 2},
	{Abbr: "NUM", Name: "Numbers", Chapters: 36, Index: 3},
	{Abbr: "DEU", Name: "Deuteronomy", Chapters: 34, Index: 4},
	{Abbr: "JOS", Name: "Joshua", Chapters: 24, Index: 5},
	{Abbr: "JDG", Name: "Judges", Chapters: 21, Index: 6},
	{Abbr: "RUT", Name: "Ruth", Chapters: 4, Index: 7},
	{Abbr: "1SA", Name: "1 Samuel", Chapters: 31, Index: 8},
	{Abbr: "2SA", Name: "2 Samuel", Chapters: 24, Index: 9},
	{Abbr: "1KI", Name: "1 Kings", Chapters: 22, Index: 10},
	{Abbr: "2KI", Name: "2 Kings", Chapters: 25, Index: 11},
	{Abbr: "1CH", Name: "1 Chronicles", Chapters: 29, Index: 12},
	{Abbr: "2CH", Name: "2 Chronicles", Chapters: 36, Index: 13},
	{Abbr: "EZR", Name: "Ezra", Chapters: 10, Index: 14},
	{Abbr: "NEH", Name: "Nehemiah", Chapters: 13, Index: 15},
	{Abbr: "EST", Name: "Esther", Chapters: 10, Index: 16},
	{Abbr: "JOB", Name: "Job", Chapters: 42, Index: 17},
	{Abbr: "PSA", Name: "Psalms", Chapters: 150, Index: 18},
	{Abbr: "PRO", Name: "Proverbs", Chapters: 31, Index: 19},
	{Abbr: "ECC", Name: "Ecclesiastes", Chapters: 12, Index: 20},
	{Abbr: "SNG", Name: "Song of Solomon", Chapters: 8, Index: 21},
	{Abbr: "ISA", Name: "Isaiah", Chapters: 66, Index: 22},
	{Abbr: "JER", Name: "Jeremiah", Chapters: 52, Index: 23},
	{Abbr: "LAM", Name: "Lamentations", Chapters: 5, Index: 24},
	{Abbr: "EZK", Name: "Ezekiel", Chapters: 48, Index: 25},
	{Abbr: "DAN", Name: "Daniel", Chapters: 12, Index: 26},
	{Abbr: "HOS", Name: "Hosea", Chapters: 14, Index: 27},
	{Abbr: "JOL", Name: "Joel", Chapters: 3, Index: 28},
	{Abbr: "AMO", Name: "Amos", Chapters: 9, Index: 29},
	{Abbr: "OBA", Name: "Obadiah", Chapters: 1, Index: 30},
	{Abbr: "JON", Name: "Jonah", Chapters: 4, Index: 31},
	{Abbr: "MIC", Name: "Micah", Chapters: 7, Index: 32},
	{Abbr: "NAM", Name: "Nahum", Chapters: 3, Index: 33},
	{Abbr: "HAB", Name: "Habakkuk", Chapters: 3, Index: 34},
	{Abbr: "ZEP", Name: "Zephaniah", Chapters: 3, Index: 35},
	{Abbr: "HAG", Name: "Haggai", Chapters: 2, Index: 36},
	{Abbr: "ZEC", Name: "Zechariah", Chapters: 14, Index: 37},
	{Abbr: "MAL", Name: "Malachi", Chapters: 4, Index: 38},
	{Abbr: "MAT", Name: "Matthew", Chapters: 28, Index: 39},
	{Abbr: "MRK", Name: "Mark", Chapters: 16, Index: 40},
	{Abbr: "LUK", Name: "Luke", Chapters: 24, Index: 41},
	{Abbr: "JHN", Name: "John", Chapters: 21, Index: 42},
	{Abbr: "ACT", Name: "Acts", Chapters: 28, Index: 43},
	{Abbr: "ROM", Name: "Romans", Chapters: 16, Index: 44},
	{Abbr: "1CO", Name: "1 Corinthians", Chapters: 16, Index: 45},
	{Abbr: "2CO", Name: "2 Corinthians", Chapters: 13, Index: 46},
	{Abbr: "GAL", Name: "Galatians", Chapters: 6, Index: 47},
	{Abbr: "EPH", Name: "Ephesians", Chapters: 6, Index: 48},
	{Abbr: "PHP", Name: "Philippians", Chapters: 4, Index: 49},
	{Abbr: "COL", Name: "Colossians", Chapters: 4, Index: 50},
	{Abbr: "1TH", Name: "1 Thessalonians", Chapters: 5, Index: 51},
	{Abbr: "2TH", Name: "2 Thessalonians", Chapters: 3, Index: 52},
	{Abbr: "1TI", Name: "1 Timothy", Chapters: 6, Index: 53},
	{Abbr: "2TI", Name: "2 Timothy", Chapters: 4, Index: 54},
	{Abbr: "TIT", Name: "Titus", Chapters: 3, Index: 55},
	{Abbr: "PHM", Name: "Philemon", Chapters: 1, Index: 56},
	{Abbr: "HEB", Name: "Hebrews", Chapters: 13, Index: 57},
	{Abbr: "JAS", Name: "James", Chapters: 5, Index: 58},
	{Abbr: "1PE", Name: "1 Peter", Chapters: 5, Index: 59},
	{Abbr: "2PE", Name: "2 Peter", Chapters: 3, Index: 60},
	{Abbr: "1JN", Name: "1 John", Chapters: 5, Index: 61},
	{Abbr: "2JN", Name: "2 John", Chapters: 1, Index: 62},
	{Abbr: "3JN", Name: "3 John", Chapters: 1, Index: 63},
	{Abbr: "JUD", Name: "Jude", Chapters: 1, Index: 64},
	{Abbr: "REV", Name: "Revelation", Chapters: 22, Index: 65},
}

// FindBook returns the book with the given abbreviation, or nil.
func FindBook(abbr string) *BookInfo {
	for i := range Books {
		if Books[i].Abbr == abbr {
			return &Books[i]
		}
	}
	return nil
}

// TotalChapters returns the chapter count across the whole canon.
func TotalChapters() int {
	total := 0
	for _, b := range Books {
		total += b.Chapters
	}
	return total
}

// ChapterID builds the composite cache key for a chapter, e.g. "GEN:1".
func ChapterID(bookAbbr string, chapter int) string {
	return fmt.Sprintf("%s:%d", bookAbbr, chapter)
}
