package packer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(content, filename string, index int, score float64) entity.RetrievedChunk {
	return entity.RetrievedChunk{
		Content:         content,
		Metadata:        map[string]any{"filename": filename, "chunk_index": index},
		Distance:        1 - score,
		SimilarityScore: score,
	}
}

func TestPackStopsWhenRemainderTooSmall(t *testing.T) {
	t.Parallel()

	chunks := []entity.RetrievedChunk{
		chunk(strings.Repeat("a", 100), "a.txt", 0, 0.9),
		chunk(strings.Repeat("b", 100), "a.txt", 1, 0.8),
		chunk(strings.Repeat("c", 50), "a.txt", 2, 0.7),
	}

	packed := Pack(chunks, 180)

	assert.Equal(t, strings.Repeat("a", 100), packed.Text)
	require.Len(t, packed.Sources, 1)
	assert.False(t, packed.Sources[0].Partial)
}

func TestPackTruncatesAtWordBoundary(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("word ", 200)
	packed := Pack([]entity.RetrievedChunk{chunk(content, "long.txt", 3, 0.5)}, 300)

	require.Len(t, packed.Sources, 1)
	assert.True(t, packed.Sources[0].Partial)
	assert.Equal(t, 3, packed.Sources[0].ChunkIndex)
	assert.True(t, strings.HasSuffix(packed.Text, "word..."))

	body := strings.TrimSuffix(packed.Text, "...")
	assert.LessOrEqual(t, utf8.RuneCountInString(body), 300)
	assert.False(t, strings.HasSuffix(body, " "))
}

func TestPackKeepsWholePrefixWithoutWhitespace(t *testing.T) {
	t.Parallel()

	packed := Pack([]entity.RetrievedChunk{chunk(strings.Repeat("x", 1000), "x.txt", 0, 0.5)}, 300)

	assert.Equal(t, strings.Repeat("x", 300)+"...", packed.Text)
}

func TestPackJoinsWithSeparator(t *testing.T) {
	t.Parallel()

	packed := Pack([]entity.RetrievedChunk{
		chunk("first", "a.txt", 0, 0.9),
		chunk("second", "b.txt", 4, 0.8),
	}, 3000)

	assert.Equal(t, "first\n\n---\n\nsecond", packed.Text)
	require.Len(t, packed.Sources, 2)
	assert.Equal(t, "b.txt", packed.Sources[1].Filename)
	assert.Equal(t, 4, packed.Sources[1].ChunkIndex)
}

func TestPackPartialFollowsWholeChunks(t *testing.T) {
	t.Parallel()

	packed := Pack([]entity.RetrievedChunk{
		chunk(strings.Repeat("a", 100), "a.txt", 0, 0.9),
		chunk(strings.Repeat("b ", 500), "b.txt", 1, 0.8),
		chunk("never reached", "c.txt", 2, 0.7),
	}, 400)

	require.Len(t, packed.Sources, 2)
	assert.False(t, packed.Sources[0].Partial)
	assert.True(t, packed.Sources[1].Partial)
	assert.NotContains(t, packed.Text, "never reached")
}

func TestPackRoundsScoreAndDefaultsMetadata(t *testing.T) {
	t.Parallel()

	packed := Pack([]entity.RetrievedChunk{{Content: "text", SimilarityScore: 0.123456}}, 100)

	require.Len(t, packed.Sources, 1)
	assert.Equal(t, "Unknown", packed.Sources[0].Filename)
	assert.Equal(t, 0, packed.Sources[0].ChunkIndex)
	assert.InDelta(t, 0.123, packed.Sources[0].SimilarityScore, 1e-9)
}

func TestPackCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	// 100 two-byte runes fit a 100 character budget
	content := strings.Repeat("é", 100)
	packed := Pack([]entity.RetrievedChunk{chunk(content, "fr.txt", 0, 0.9)}, 100)

	assert.Equal(t, content, packed.Text)
	assert.False(t, packed.Sources[0].Partial)
}

func TestPackEmpty(t *testing.T) {
	t.Parallel()

	packed := Pack(nil, 3000)

	assert.Empty(t, packed.Text)
	assert.Empty(t, packed.Sources)
}
