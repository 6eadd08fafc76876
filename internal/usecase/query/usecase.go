package query

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/futig/explainer-backend/internal/cache"
	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/packer"
	"github.com/futig/explainer-backend/internal/pkg/formatter"
	"github.com/futig/explainer-backend/internal/pkg/prompt"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	noContextAnswer = "I couldn't find any relevant information to answer your question. " +
		"Please try uploading a document or asking a different question."
	noContextChunk = "I couldn't find any relevant information to answer your question."
	streamFailure  = "An error occurred while generating the explanation."

	contextPreviewLength = 500
)

// QueryUsecase answers questions from indexed documents
type QueryUsecase struct {
	retriever  Retriever
	generator  Generator
	cache      Cache
	storage    StorageStatter
	documents  DocumentCounter
	formatters *formatter.Factory
	cfg        config.QueryConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewUsecase creates a new query use case
func NewUsecase(
	retriever Retriever,
	generator Generator,
	cache Cache,
	storage StorageStatter,
	documents DocumentCounter,
	formatters *formatter.Factory,
	cfg config.QueryConfig,
	logger *zap.Logger,
) *QueryUsecase {
	return &QueryUsecase{
		retriever:  retriever,
		generator:  generator,
		cache:      cache,
		storage:    storage,
		documents:  documents,
		formatters: formatters,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
	}
}

// Query returns a level-appropriate explanation. A cached answer is reused
// when the request allows it; answers without context are never cached.
func (uc *QueryUsecase) Query(ctx context.Context, req *entity.QueryRequest) (*entity.QueryResult, error) {
	start := uc.now()
	key := cache.ExplanationKey(req.Question, req.Level.String(), req.DocumentID)

	if req.CacheEnabled() {
		var cached entity.QueryResult
		if uc.cache.Get(ctx, key, &cached) {
			cached.Cached = true
			ctxzap.Info(ctx, "returning cached explanation")
			return &cached, nil
		}
	}

	chunks, err := uc.search(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		ctxzap.Warn(ctx, "no relevant documents found")
		return uc.noContextResult(req, start), nil
	}

	packed := packer.Pack(chunks, uc.cfg.MaxContextLength)

	p, err := prompt.Build(req.Level, req.Question, packed.Text)
	if err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "generating explanation", zap.Int("context_length", utf8.RuneCountInString(packed.Text)))

	gctx, cancel := withTimeout(ctx, uc.cfg.GenerationTimeout)
	defer cancel()

	answer, err := uc.generator.Complete(gctx, p, uc.generationOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrGenerationFailed, err)
	}

	result := &entity.QueryResult{
		Answer:          answer,
		Level:           req.Level.String(),
		SourceDocuments: len(chunks),
		ContextUsed:     preview(packed.Text),
		Cached:          false,
		Sources:         packed.Sources,
		QueryMetadata:   uc.metadata(req.Question, packed.Text, answer, start),
	}

	if req.CacheEnabled() {
		uc.cache.Set(ctx, key, result, 0)
	}

	ctxzap.Info(ctx, "query processed",
		zap.Int("sources", len(packed.Sources)),
		zap.Int("response_length", result.QueryMetadata.ResponseLength),
		zap.Int64("duration_ms", result.QueryMetadata.DurationMS),
	)

	return result, nil
}

// Levels lists the supported explanation levels.
func (uc *QueryUsecase) Levels() *entity.AvailableLevelsResponse {
	return &entity.AvailableLevelsResponse{
		Levels:       prompt.Descriptions(),
		DefaultLevel: entity.LevelUndergraduate,
	}
}

// SystemStats aggregates index, storage, cache and registry figures.
// Collaborator failures mark the status as degraded instead of failing.
func (uc *QueryUsecase) SystemStats(ctx context.Context) *entity.SystemStats {
	stats := &entity.SystemStats{
		Status:    "healthy",
		Timestamp: uc.now().UTC(),
		Cache:     uc.cache.Stats(ctx),
	}

	var err error
	if stats.VectorStore, err = uc.retriever.Stats(ctx); err != nil {
		ctxzap.Error(ctx, "failed to get index stats", zap.Error(err))
		stats.Status = "degraded"
	}
	if stats.Storage, err = uc.storage.Stats(ctx); err != nil {
		ctxzap.Error(ctx, "failed to get storage stats", zap.Error(err))
		stats.Status = "degraded"
	}
	if stats.Documents, err = uc.documents.Count(ctx); err != nil {
		ctxzap.Error(ctx, "failed to count documents", zap.Error(err))
		stats.Status = "degraded"
	}

	return stats
}
