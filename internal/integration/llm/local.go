package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/integration/common"
	pkghttp "github.com/futig/explainer-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// LocalConnector talks to a self-hosted Ollama server.
type LocalConnector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewLocalConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *LocalConnector {
	return &LocalConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *LocalConnector) Complete(ctx context.Context, prompt string, opts entity.GenerationOptions) (string, error) {
	ctxzap.Debug(ctx, "requesting local generation", zap.String("model", c.config.Model))

	var resp entity.OllamaGenerateResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, c.request(prompt, opts, false), &resp)
	if err != nil {
		return "", fmt.Errorf("local generate: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("local generate: %s", resp.Error)
	}

	answer := strings.TrimSpace(resp.Response)
	if answer == "" {
		return "", errEmptyCompletion
	}
	return answer, nil
}

// Stream reads the newline-delimited JSON stream of /api/generate.
func (c *LocalConnector) Stream(ctx context.Context, prompt string, opts entity.GenerationOptions) (entity.FragmentStream, error) {
	ctxzap.Debug(ctx, "opening local generation stream", zap.String("model", c.config.Model))

	body, err := c.connector.DoStreamRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, c.request(prompt, opts, true), "application/x-ndjson")
	if err != nil {
		return nil, fmt.Errorf("open local stream: %w", err)
	}

	return newLineStream(body, decodeNDJSON), nil
}

func (c *LocalConnector) request(prompt string, opts entity.GenerationOptions, stream bool) *entity.OllamaGenerateRequest {
	return &entity.OllamaGenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}
}

func decodeNDJSON(line []byte) (string, bool, error) {
	if len(strings.TrimSpace(string(line))) == 0 {
		return "", false, nil
	}

	var msg entity.OllamaGenerateResponse
	if err := json.Unmarshal(line, &msg); err != nil {
		return "", false, fmt.Errorf("decode stream line: %w", err)
	}
	if msg.Error != "" {
		return "", false, errors.New(msg.Error)
	}

	return msg.Response, msg.Done, nil
}
