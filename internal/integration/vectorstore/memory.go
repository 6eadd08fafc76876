package vectorstore

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"math"
	"slices"
	"sync"
)

// Memory is an in-process store using brute-force cosine similarity.
type Memory struct {
	mu         sync.RWMutex
	collection string
	dimension  int
	points     map[string]Point
}

func NewMemory(collection string) *Memory {
	return &Memory{
		collection: collection,
		points:     make(map[string]Point),
	}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Collection() string {
	return m.collection
}

func (m *Memory) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimension = dimension
	return nil
}

// Upsert replaces points with the same id.
func (m *Memory) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range points {
		if m.dimension > 0 && len(p.Vector) != m.dimension {
			return ErrDimensionMismatch
		}
	}
	for _, p := range points {
		p.Metadata = maps.Clone(p.Metadata)
		m.points[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(_ context.Context, vector []float64, limit int, documentID string) ([]Match, error) {
	if limit <= 0 {
		limit = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.points))
	for _, p := range m.points {
		if documentID != "" && p.Metadata[PayloadDocumentID] != documentID {
			continue
		}
		matches = append(matches, Match{
			ID:       p.ID,
			Content:  p.Content,
			Metadata: maps.Clone(p.Metadata),
			Score:    cosine(p.Vector, vector),
		})
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *Memory) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, p := range m.points {
		if p.Metadata[PayloadDocumentID] == documentID {
			delete(m.points, id)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points), nil
}

func cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
