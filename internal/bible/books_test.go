package bible

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooksCanon(t *testing.T) {
	require.Len(t, Books, 66)
	assert.Equal(t, 1189, TotalChapters())

	// Indexes must match canonical order with no gaps.
	for i, b := range Books {
		assert.Equal(t, i, b.Index, "book %s out of order", b.Abbr)
		assert.Greater(t, b.Chapters, 0, "book %s has no chapters", b.Abbr)
	}
}

func TestFindBook(t *testing.T) {
	gen := FindBook("GEN")
	require.NotNil(t, gen)
	assert.Equal(t, "Genesis", gen.Name)
	assert.Equal(t, 50, gen.Chapters)

	rev := FindBook("REV")
	require.NotNil(t, rev)
	assert.Equal(t, 65, rev.Index)

	assert.Nil(t, FindBook("XYZ"))
}

func TestCompositeKeys(t *testing.T) {
	assert.Equal(t, "GEN:1", ChapterID("GEN", 1))
	assert.Equal(t, "PSA:119:176", VerseID("PSA", 119, 176))
}
