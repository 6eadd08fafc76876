package query

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// search runs retrieval bounded by the retrieval timeout.
func (uc *QueryUsecase) search(ctx context.Context, req *entity.QueryRequest) ([]entity.RetrievedChunk, error) {
	rctx, cancel := withTimeout(ctx, uc.cfg.RetrievalTimeout)
	defer cancel()

	chunks, err := uc.retriever.Search(rctx, req.Question, entity.SearchFilter{DocumentID: req.DocumentID}, uc.resultCount())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrRetrievalFailed, err)
	}

	ctxzap.Debug(ctx, "context retrieved", zap.Int("chunks", len(chunks)))
	return chunks, nil
}

func (uc *QueryUsecase) resultCount() int {
	if uc.cfg.ResultCount < 1 {
		return 5
	}
	return uc.cfg.ResultCount
}

func (uc *QueryUsecase) generationOptions() entity.GenerationOptions {
	return entity.GenerationOptions{
		Temperature: uc.cfg.Temperature,
		MaxTokens:   uc.cfg.MaxTokens,
	}
}

func (uc *QueryUsecase) noContextResult(req *entity.QueryRequest, start time.Time) *entity.QueryResult {
	return &entity.QueryResult{
		Answer:          noContextAnswer,
		Level:           req.Level.String(),
		SourceDocuments: 0,
		ContextUsed:     "",
		Cached:          false,
		Sources:         []entity.SourceInfo{},
		QueryMetadata:   uc.metadata(req.Question, "", noContextAnswer, start),
	}
}

func (uc *QueryUsecase) metadata(question, contextText, answer string, start time.Time) entity.QueryMetadata {
	now := uc.now()
	return entity.QueryMetadata{
		QuestionLength: utf8.RuneCountInString(question),
		ContextLength:  utf8.RuneCountInString(contextText),
		ResponseLength: utf8.RuneCountInString(answer),
		ProcessingTime: now.UTC(),
		DurationMS:     now.Sub(start).Milliseconds(),
	}
}

// preview keeps the first contextPreviewLength characters of the context.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) < contextPreviewLength {
		return text
	}
	return string(runes[:contextPreviewLength]) + "..."
}

// withTimeout leaves ctx unbounded when d is not positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func intPtr(v int) *int {
	return &v
}
