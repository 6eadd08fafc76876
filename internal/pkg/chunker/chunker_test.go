package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortText(t *testing.T) {
	t.Parallel()

	c := New(1000, 200)

	assert.Equal(t, []string{"short text"}, c.Split("  short text  "))
	assert.Nil(t, c.Split("   "))
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("This is a sentence. ", 100)
	chunks := New(100, 20).Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, "."), chunk)
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
	}
}

func TestSplitFallsBackToSpace(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("word ", 100)
	chunks := New(50, 10).Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.False(t, strings.HasPrefix(chunk, "ord"), chunk)
		assert.True(t, strings.HasSuffix(chunk, "word"), chunk)
	}
}

func TestSplitHardCut(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 250)
	chunks := New(100, 20).Split(text)

	require.Equal(t, 3, len(chunks))
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 90)
}

func TestSplitOverlaps(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("abcdefghij", 30)
	chunks := New(100, 30).Split(text)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, chunks[0][70:], chunks[1][:30])
}

func TestSplitCoversWholeText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("Alpha beta gamma! Delta epsilon? ", 80)
	chunks := New(1000, 200).Split(text)

	require.NotEmpty(t, chunks)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), chunks[len(chunks)-1][len(chunks[len(chunks)-1])-10:]))
}
