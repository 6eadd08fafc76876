package chunker

import (
	"strings"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

var sentenceEnds = []rune{'.', '!', '?', ';'}

// Chunker splits text into overlapping windows that prefer to end on a
// sentence boundary, then on a space, then at the hard size limit.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.size {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end < len(runes) {
			end = c.boundary(runes, start, end)
		} else {
			end = len(runes)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}
		start = max(start+1, end-c.overlap)
	}

	return chunks
}

// boundary picks the cut position inside (start, end].
func (c *Chunker) boundary(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		for _, p := range sentenceEnds {
			if runes[i] == p {
				return i + 1
			}
		}
	}

	for i := end - 1; i > start; i-- {
		if runes[i] == ' ' {
			return i
		}
	}

	return end
}
