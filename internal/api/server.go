package api

import (
	"net/http"

	"github.com/futig/explainer-backend/internal/api/docs"
	documentapi "github.com/futig/explainer-backend/internal/api/document"
	"github.com/futig/explainer-backend/internal/api/middleware"
	queryapi "github.com/futig/explainer-backend/internal/api/query"
	systemapi "github.com/futig/explainer-backend/internal/api/system"
	"github.com/futig/explainer-backend/internal/config"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Query    *queryapi.Handler
	Document *documentapi.Handler
	System   *systemapi.Handler
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h Handlers, admitter middleware.Admitter, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Admission(admitter, cfg.RateLimitCfg, "/health"))

	docs.RegisterRoutes(r)

	systemapi.RegisterRoutes(r, h.System)
	documentapi.RegisterRoutes(r, h.Document)
	queryapi.RegisterRoutes(r, h.Query, cfg.QueryCfg.GenerationTimeout+cfg.QueryCfg.RetrievalTimeout)

	return r
}
