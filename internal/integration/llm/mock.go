package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without a model, for local runs with ENABLE_MOCKS.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, prompt string, opts entity.GenerationOptions) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating completion",
		zap.Int("prompt_length", len(prompt)),
		zap.Float64("temperature", opts.Temperature),
	)
	return mockAnswer(prompt), nil
}

func (m *MockConnector) Stream(ctx context.Context, prompt string, opts entity.GenerationOptions) (entity.FragmentStream, error) {
	ctxzap.Info(ctx, "[MOCK] streaming completion", zap.Int("prompt_length", len(prompt)))
	return &sliceStream{fragments: strings.SplitAfter(mockAnswer(prompt), " ")}, nil
}

func mockAnswer(prompt string) string {
	return fmt.Sprintf("This is a mock explanation generated from a prompt of %d characters.", len(prompt))
}

// sliceStream replays fixed fragments.
type sliceStream struct {
	fragments []string
	pos       int
	closed    bool
}

func (s *sliceStream) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.closed || s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	f := s.fragments[s.pos]
	s.pos++
	return f, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}
