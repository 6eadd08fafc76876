package query

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers query routes. The streaming route has no
// request timeout; it ends when generation ends or the client leaves.
func RegisterRoutes(r chi.Router, h *Handler, timeout time.Duration) {
	bounded := chi.Chain()
	if timeout > 0 {
		bounded = chi.Chain(chimiddleware.Timeout(timeout))
	}

	r.Route("/query", func(r chi.Router) {
		r.With(bounded...).Post("/", h.Query)
		r.With(bounded...).Post("/export", h.Export)
		r.Post("/stream", h.Stream)
	})
}
