package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/integration/vectorstore"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Model() string
}

type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, points []vectorstore.Point) error
	Search(ctx context.Context, vector []float64, limit int, documentID string) ([]vectorstore.Match, error)
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
	Count(ctx context.Context) (int, error)
	Name() string
	Collection() string
}

// Connector is the retrieval collaborator: it embeds text and keeps it in a
// vector store.
type Connector struct {
	embedder Embedder
	store    VectorStore
	logger   *zap.Logger
}

func NewConnector(embedder Embedder, store VectorStore, logger *zap.Logger) *Connector {
	return &Connector{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Search returns up to n chunks closest to query, best first.
func (c *Connector) Search(ctx context.Context, query string, filter entity.SearchFilter, n int) ([]entity.RetrievedChunk, error) {
	vectors, err := c.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: %w", vectorstore.ErrLengthMismatch)
	}

	matches, err := c.store.Search(ctx, vectors[0], n, filter.DocumentID)
	if err != nil {
		return nil, err
	}

	chunks := make([]entity.RetrievedChunk, len(matches))
	for i, m := range matches {
		chunks[i] = entity.RetrievedChunk{
			ID:              m.ID,
			Content:         m.Content,
			Metadata:        m.Metadata,
			Distance:        1 - m.Score,
			SimilarityScore: m.Score,
		}
	}

	ctxzap.Debug(ctx, "similarity search done",
		zap.Int("results", len(chunks)),
		zap.String("document_id", filter.DocumentID),
	)
	return chunks, nil
}

// Index embeds and stores chunks, returning their ids in input order.
func (c *Connector) Index(ctx context.Context, chunks []entity.IndexChunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, vectorstore.ErrLengthMismatch
	}

	if err := c.store.Init(ctx, len(vectors[0])); err != nil {
		return nil, fmt.Errorf("prepare collection: %w", err)
	}

	ids := make([]string, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	for i, ch := range chunks {
		meta := maps.Clone(ch.Metadata)
		if meta == nil {
			meta = make(map[string]any, 2)
		}
		meta[vectorstore.PayloadDocumentID] = ch.DocumentID
		meta["chunk_index"] = ch.Index

		ids[i] = chunkID(ch)
		points[i] = vectorstore.Point{
			ID:       ids[i],
			Vector:   vectors[i],
			Content:  ch.Content,
			Metadata: meta,
		}
	}

	if err := c.store.Upsert(ctx, points); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "chunks indexed",
		zap.Int("count", len(ids)),
		zap.String("collection", c.store.Collection()),
	)
	return ids, nil
}

// DeleteDocument removes every chunk indexed for documentID.
func (c *Connector) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	n, err := c.store.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	ctxzap.Info(ctx, "document chunks removed", zap.Int("count", n))
	return n, nil
}

func (c *Connector) Stats(ctx context.Context) (entity.IndexStats, error) {
	n, err := c.store.Count(ctx)
	if err != nil {
		return entity.IndexStats{}, err
	}
	return entity.IndexStats{
		Backend:        c.store.Name(),
		Collection:     c.store.Collection(),
		TotalChunks:    n,
		EmbeddingModel: c.embedder.Model(),
	}, nil
}

// chunkID is "<document id>_<index>_<first 8 hex of content hash>".
func chunkID(ch entity.IndexChunk) string {
	sum := sha256.Sum256([]byte(ch.Content))
	return fmt.Sprintf("%s_%d_%s", ch.DocumentID, ch.Index, hex.EncodeToString(sum[:4]))
}
