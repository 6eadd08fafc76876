package query

import (
	"context"
	"errors"
	"io"
	"iter"
	"unicode/utf8"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/packer"
	"github.com/futig/explainer-backend/internal/pkg/prompt"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// StreamQuery yields the explanation as frames: one streaming_started, one
// streaming frame per generated fragment and a final completed frame. When
// nothing is retrieved a single no_context frame is yielded; failures end the
// sequence with one error frame. Streamed answers are never cached.
//
// Stopping the iteration or cancelling ctx closes the upstream stream before
// the next fragment is pulled.
func (uc *QueryUsecase) StreamQuery(ctx context.Context, req *entity.QueryRequest) iter.Seq[entity.StreamFrame] {
	return func(yield func(entity.StreamFrame) bool) {
		level := req.Level.String()

		chunks, err := uc.search(ctx, req)
		if err != nil {
			ctxzap.Error(ctx, "stream retrieval failed", zap.Error(err))
			yield(errorFrame(level))
			return
		}

		if len(chunks) == 0 {
			yield(entity.StreamFrame{
				Chunk: noContextChunk,
				Metadata: entity.StreamMetadata{
					Level:           level,
					Status:          entity.StreamNoContext,
					SourceDocuments: intPtr(0),
				},
			})
			return
		}

		packed := packer.Pack(chunks, uc.cfg.MaxContextLength)

		p, err := prompt.Build(req.Level, req.Question, packed.Text)
		if err != nil {
			ctxzap.Error(ctx, "failed to build prompt", zap.Error(err))
			yield(errorFrame(level))
			return
		}

		started := entity.StreamFrame{
			Metadata: entity.StreamMetadata{
				Level:           level,
				Status:          entity.StreamStarted,
				SourceDocuments: intPtr(len(chunks)),
				ContextLength:   intPtr(utf8.RuneCountInString(packed.Text)),
			},
		}
		if !yield(started) {
			return
		}

		gctx, cancel := withTimeout(ctx, uc.cfg.GenerationTimeout)
		defer cancel()

		stream, err := uc.generator.Stream(gctx, p, uc.generationOptions())
		if err != nil {
			ctxzap.Error(ctx, "failed to open generation stream", zap.Error(err))
			yield(errorFrame(level))
			return
		}
		defer stream.Close()

		count := 0
		for {
			fragment, err := stream.Next(gctx)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if ctx.Err() != nil {
					ctxzap.Info(ctx, "stream cancelled by client", zap.Int("fragments", count))
					return
				}
				ctxzap.Error(ctx, "generation stream failed", zap.Error(err), zap.Int("fragments", count))
				yield(errorFrame(level))
				return
			}

			count++
			frame := entity.StreamFrame{
				Chunk: fragment,
				Metadata: entity.StreamMetadata{
					Level:       level,
					Status:      entity.StreamStreaming,
					ChunkNumber: count,
				},
			}
			if !yield(frame) {
				ctxzap.Info(ctx, "stream consumer stopped", zap.Int("fragments", count))
				return
			}
		}

		ctxzap.Info(ctx, "stream completed", zap.Int("fragments", count))
		yield(entity.StreamFrame{
			Metadata: entity.StreamMetadata{
				Level:       level,
				Status:      entity.StreamCompleted,
				TotalChunks: intPtr(count),
			},
		})
	}
}

func errorFrame(level string) entity.StreamFrame {
	return entity.StreamFrame{
		Metadata: entity.StreamMetadata{
			Level:  level,
			Status: entity.StreamError,
			Error:  streamFailure,
		},
	}
}
