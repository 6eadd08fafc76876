package document

import (
	"context"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
)

type FileStore interface {
	Save(ctx context.Context, originalFilename string, content []byte) (string, error)
	Info(ctx context.Context, name string) (*entity.FileInfo, error)
	Delete(ctx context.Context, name string) (bool, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, filename string, content []byte) (*entity.ExtractedText, error)
}

type Splitter interface {
	Split(text string) []string
}

type Indexer interface {
	Index(ctx context.Context, chunks []entity.IndexChunk) ([]string, error)
	DeleteDocument(ctx context.Context, documentID string) (int, error)
	Stats(ctx context.Context) (entity.IndexStats, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	ClearPattern(ctx context.Context, pattern string) int
}
