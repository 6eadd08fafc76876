package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/pkg/logger"
	"github.com/futig/explainer-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxQueryBodySize = 64 << 10

type Handler struct {
	usecase   QueryUsecase
	validator QueryValidator
}

func NewHandler(usecase QueryUsecase, validator QueryValidator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Query handles POST /query
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	req, ok := h.decodeRequest(ctx, w, r)
	if !ok {
		return
	}

	result, err := h.usecase.Query(ctx, req)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "query answered",
		zap.String("level", result.Level),
		zap.Int("source_documents", result.SourceDocuments),
		zap.Bool("cached", result.Cached),
	)
	response.Success(w, result)
}

// Stream handles POST /query/stream as server-sent events, one JSON frame
// per event.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StreamQuery")

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Error(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	req, ok := h.decodeRequest(ctx, w, r)
	if !ok {
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames := 0
	for frame := range h.usecase.StreamQuery(ctx, req) {
		if err := writeEvent(w, frame); err != nil {
			ctxzap.Warn(ctx, "client went away during stream", zap.Error(err))
			return
		}
		flusher.Flush()
		frames++
	}

	ctxzap.Info(ctx, "stream finished", zap.Int("frames", frames))
}

// Export handles POST /query/export?format=markdown|docx|pdf
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Export")

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}
	if !format.IsValid() {
		response.UsecaseError(ctx, w, fmt.Errorf("%w: %w: %q", entity.ErrValidation, entity.ErrInvalidFormat, format))
		return
	}

	req, ok := h.decodeRequest(ctx, w, r)
	if !ok {
		return
	}

	file, err := h.usecase.Export(ctx, req, format)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		ctxzap.Warn(ctx, "failed to write export", zap.Error(err))
	}
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*entity.QueryRequest, bool) {
	var req entity.QueryRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodySize))
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		ctxzap.Warn(ctx, "failed to decode query request", zap.Error(err))
		response.ErrorDetail(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}

	if err := h.validator.ValidateQuery(&req); err != nil {
		response.UsecaseError(ctx, w, err)
		return nil, false
	}

	return &req, true
}

func writeEvent(w http.ResponseWriter, frame entity.StreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
