// Package packer assembles ranked retrieval hits into a bounded context window.
package packer

import (
	"math"
	"strings"
	"unicode"

	"github.com/futig/explainer-backend/internal/entity"
)

const (
	Separator = "\n\n---\n\n"

	// MinPartialLength is the smallest remaining budget worth filling with a
	// truncated chunk.
	MinPartialLength = 200

	truncationMarker = "..."
)

// Pack walks chunks in rank order and keeps whole chunks while they fit in
// maxLength characters. The first chunk that does not fit is truncated at a
// word boundary when more than MinPartialLength characters remain; packing
// stops there either way. Separators are not counted against the budget.
func Pack(chunks []entity.RetrievedChunk, maxLength int) entity.PackedContext {
	parts := make([]string, 0, len(chunks))
	sources := make([]entity.SourceInfo, 0, len(chunks))
	consumed := 0

	for _, chunk := range chunks {
		content := []rune(chunk.Content)

		if consumed+len(content) <= maxLength {
			parts = append(parts, chunk.Content)
			sources = append(sources, sourceOf(chunk, false))
			consumed += len(content)
			continue
		}

		remaining := maxLength - consumed
		if remaining > MinPartialLength {
			parts = append(parts, truncate(content[:remaining])+truncationMarker)
			sources = append(sources, sourceOf(chunk, true))
		}
		break
	}

	return entity.PackedContext{
		Text:    strings.Join(parts, Separator),
		Sources: sources,
	}
}

// truncate cuts the prefix back to its last whitespace. A prefix with no
// whitespace is kept whole.
func truncate(prefix []rune) string {
	for i := len(prefix) - 1; i > 0; i-- {
		if unicode.IsSpace(prefix[i]) {
			return string(prefix[:i])
		}
	}
	return string(prefix)
}

func sourceOf(chunk entity.RetrievedChunk, partial bool) entity.SourceInfo {
	return entity.SourceInfo{
		Filename:        chunk.Filename(),
		ChunkIndex:      chunk.ChunkIndex(),
		SimilarityScore: math.Round(chunk.SimilarityScore*1000) / 1000,
		Partial:         partial,
	}
}
