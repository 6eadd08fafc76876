package system

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers health, levels and stats routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Get("/levels", h.Levels)
	r.Get("/stats", h.Stats)
}
