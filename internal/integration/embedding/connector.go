package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/integration/common"
	pkghttp "github.com/futig/explainer-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var errShortResponse = errors.New("embedding response does not match input")

// Connector calls an OpenAI-compatible /embeddings endpoint
// (OpenAI, text-embeddings-inference, Ollama's /v1).
type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 32
	}
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) Model() string {
	return c.config.Model
}

// Embed returns one vector per text, in input order.
func (c *Connector) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))

	for start := 0; start < len(texts); start += c.config.BatchSize {
		end := min(start+c.config.BatchSize, len(texts))
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	ctxzap.Debug(ctx, "texts embedded",
		zap.Int("count", len(vectors)),
		zap.String("model", c.config.Model),
	)
	return vectors, nil
}

func (c *Connector) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	req := &entity.EmbeddingRequest{
		Model: c.config.Model,
		Input: texts,
	}

	var resp entity.EmbeddingResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", errShortResponse, len(resp.Data), len(texts))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || len(d.Embedding) == 0 {
			return nil, fmt.Errorf("%w: bad item at index %d", errShortResponse, d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("%w: missing vector %d", errShortResponse, i)
		}
	}

	return out, nil
}
