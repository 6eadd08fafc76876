package query

import (
	"context"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
)

type Retriever interface {
	Search(ctx context.Context, query string, filter entity.SearchFilter, n int) ([]entity.RetrievedChunk, error)
	Stats(ctx context.Context) (entity.IndexStats, error)
}

type Generator interface {
	Complete(ctx context.Context, prompt string, opts entity.GenerationOptions) (string, error)
	Stream(ctx context.Context, prompt string, opts entity.GenerationOptions) (entity.FragmentStream, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	Stats(ctx context.Context) entity.CacheStats
}

type StorageStatter interface {
	Stats(ctx context.Context) (entity.StorageStats, error)
}

type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}
