package llm

import (
	"bytes"
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

var errEmptyCompletion = errors.New("empty completion")

// RemoteConnector talks to an OpenAI-compatible chat completions API
// (OpenAI, Groq, vLLM, LM Studio).
type RemoteConnector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewRemoteConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *RemoteConnector {
	return &RemoteConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Complete returns the whole generated answer.
func (c *RemoteConnector) Complete(ctx context.Context, prompt string, opts entity.GenerationOptions) (string, error) {
	ctxzap.Debug(ctx, "requesting completion", zap.String("model", c.config.Model))

	var resp entity.ChatCompletionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, c.request(prompt, opts, false), &resp)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", errEmptyCompletion
	}

	ctxzap.Debug(ctx, "completion received", zap.Int("length", len(answer)))
	return answer, nil
}

// Stream opens a server-sent events completion stream.
func (c *RemoteConnector) Stream(ctx context.Context, prompt string, opts entity.GenerationOptions) (entity.FragmentStream, error) {
	ctxzap.Debug(ctx, "opening completion stream", zap.String("model", c.config.Model))

	body, err := c.connector.DoStreamRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, c.request(prompt, opts, true), "text/event-stream")
	if err != nil {
		return nil, fmt.Errorf("open completion stream: %w", err)
	}

	return newLineStream(body, decodeSSE), nil
}

func (c *RemoteConnector) request(prompt string, opts entity.GenerationOptions, stream bool) *entity.ChatCompletionRequest {
	return &entity.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    []entity.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	}
}

var (
	ssePrefix = []byte("data:")
	sseDone   = []byte("[DONE]")
)

func decodeSSE(line []byte) (string, bool, error) {
	if !bytes.HasPrefix(line, ssePrefix) {
		return "", false, nil
	}

	data := bytes.TrimSpace(bytes.TrimPrefix(line, ssePrefix))
	if bytes.Equal(data, sseDone) {
		return "", true, nil
	}
	if len(data) == 0 {
		return "", false, nil
	}

	var chunk entity.ChatCompletionChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", false, fmt.Errorf("decode stream chunk: %w", err)
	}
	if len(chunk.Choices) == 0 {
		return "", false, nil
	}

	return chunk.Choices[0].Delta.Content, false, nil
}
