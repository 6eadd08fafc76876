package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/integration/embedding"
	"github.com/futig/explainer-backend/internal/integration/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector() *Connector {
	return NewConnector(embedding.NewHashingEmbedder(128), vectorstore.NewMemory("documents"), zap.NewNop())
}

func indexChunks(doc string, texts ...string) []entity.IndexChunk {
	out := make([]entity.IndexChunk, len(texts))
	for i, text := range texts {
		out[i] = entity.IndexChunk{
			DocumentID: doc,
			Index:      i,
			Content:    text,
			Metadata:   map[string]any{"filename": doc + ".txt", "chunk_count": len(texts)},
		}
	}
	return out
}

func TestIndexAndSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newTestConnector()

	ids, err := c.Index(ctx, indexChunks("bio",
		"photosynthesis turns light into chemical energy in plants",
		"mitochondria produce energy for the cell",
	))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Regexp(t, `^bio_0_[0-9a-f]{8}$`, ids[0])

	_, err = c.Index(ctx, indexChunks("history", "the roman empire fell in the fifth century"))
	require.NoError(t, err)

	chunks, err := c.Search(ctx, "how does photosynthesis use light", entity.SearchFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	top := chunks[0]
	assert.Equal(t, ids[0], top.ID)
	assert.Equal(t, "bio.txt", top.Filename())
	assert.Equal(t, 0, top.ChunkIndex())
	assert.InDelta(t, 1-top.SimilarityScore, top.Distance, 1e-9)
	assert.GreaterOrEqual(t, top.SimilarityScore, chunks[1].SimilarityScore)
}

func TestSearchScopedToDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newTestConnector()

	_, err := c.Index(ctx, indexChunks("bio", "photosynthesis and light"))
	require.NoError(t, err)
	_, err = c.Index(ctx, indexChunks("history", "photosynthesis was unknown to romans"))
	require.NoError(t, err)

	chunks, err := c.Search(ctx, "photosynthesis", entity.SearchFilter{DocumentID: "history"}, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "history", chunks[0].Metadata["document_id"])
}

func TestDeleteDocumentAndStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newTestConnector()

	_, err := c.Index(ctx, indexChunks("bio", "one", "two", "three"))
	require.NoError(t, err)
	_, err = c.Index(ctx, indexChunks("history", "four"))
	require.NoError(t, err)

	removed, err := c.DeleteDocument(ctx, "bio")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.IndexStats{
		Backend:        "memory",
		Collection:     "documents",
		TotalChunks:    1,
		EmbeddingModel: "hashing",
	}, stats)
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("model offline")
}

func (failingEmbedder) Model() string { return "broken" }

func TestEmbedFailurePropagates(t *testing.T) {
	t.Parallel()
	c := NewConnector(failingEmbedder{}, vectorstore.NewMemory("documents"), zap.NewNop())

	_, err := c.Search(context.Background(), "q", entity.SearchFilter{}, 5)
	assert.ErrorContains(t, err, "model offline")

	_, err = c.Index(context.Background(), indexChunks("d", "text"))
	assert.ErrorContains(t, err, "model offline")
}
