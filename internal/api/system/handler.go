package system

import (
	"maps"
	"net/http"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/futig/explainer-backend/internal/pkg/logger"
	"github.com/futig/explainer-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase  SystemUsecase
	version  string
	services map[string]string
}

// NewHandler creates the system handler. services names the backend
// selected for each collaborator and is reported by /health.
func NewHandler(usecase SystemUsecase, version string, services map[string]string) *Handler {
	return &Handler{
		usecase:  usecase,
		version:  version,
		services: maps.Clone(services),
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, &entity.HealthCheck{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Services:  h.services,
	})
}

// Levels handles GET /levels
func (h *Handler) Levels(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.usecase.Levels())
}

// Stats handles GET /stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Stats")

	stats := h.usecase.SystemStats(ctx)
	if stats.Status != "healthy" {
		ctxzap.Warn(ctx, "system reports degraded state", zap.String("status", stats.Status))
	}
	response.Success(w, stats)
}
