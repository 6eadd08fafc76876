package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingEmbedder maps text to a fixed-size bag-of-words vector with the
// hashing trick. It needs no model and is used when mocks are enabled.
type HashingEmbedder struct {
	dimension int
}

func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension < 1 {
		dimension = 384
	}
	return &HashingEmbedder{dimension: dimension}
}

func (h *HashingEmbedder) Model() string {
	return "hashing"
}

func (h *HashingEmbedder) Dimension() int {
	return h.dimension
}

func (h *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashingEmbedder) vector(text string) []float64 {
	v := make([]float64, h.dimension)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		f := fnv.New64a()
		f.Write([]byte(tok))
		sum := f.Sum64()

		sign := 1.0
		if sum&1 == 1 {
			sign = -1.0
		}
		v[(sum>>1)%uint64(h.dimension)] += sign
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}
