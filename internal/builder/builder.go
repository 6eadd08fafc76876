package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/explainer-backend/internal/admission"
	"github.com/futig/explainer-backend/internal/api"
	documentapi "github.com/futig/explainer-backend/internal/api/document"
	queryapi "github.com/futig/explainer-backend/internal/api/query"
	systemapi "github.com/futig/explainer-backend/internal/api/system"
	"github.com/futig/explainer-backend/internal/cache"
	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/integration/embedding"
	"github.com/futig/explainer-backend/internal/integration/llm"
	"github.com/futig/explainer-backend/internal/integration/rag"
	"github.com/futig/explainer-backend/internal/integration/vectorstore"
	"github.com/futig/explainer-backend/internal/pkg/chunker"
	"github.com/futig/explainer-backend/internal/pkg/extractor"
	"github.com/futig/explainer-backend/internal/pkg/formatter"
	pkgRetry "github.com/futig/explainer-backend/internal/pkg/retry"
	"github.com/futig/explainer-backend/internal/pkg/validator"
	"github.com/futig/explainer-backend/internal/storage"
	"github.com/futig/explainer-backend/internal/usecase/document"
	"github.com/futig/explainer-backend/internal/usecase/query"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/afero"
	"github.com/unidoc/unioffice/common/license"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			logger.Warn("failed to apply unioffice license key", zap.Error(err))
		}
	}

	registry, db, registryName, err := setupRegistry(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup document registry: %w", err)
	}

	files, err := storage.NewFileManager(afero.NewOsFs(), cfg.FileUploadCfg.Directory, logger)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("setup file storage: %w", err)
	}

	cacheManager := cache.NewManager(setupCacheBackend(ctx, cfg, logger), cfg.CacheCfg.TTL, logger)

	embedder := setupEmbedder(cfg, logger)
	store, err := setupVectorStore(ctx, cfg, logger)
	if err != nil {
		registry.Close()
		cacheManager.Close()
		return nil, fmt.Errorf("setup vector store: %w", err)
	}
	retriever := rag.NewConnector(embedder, store, logger)
	generator := setupGenerator(cfg, logger)
	logger.Info("collaborators initialized")

	fileValidator := validator.New(cfg.FileUploadCfg)
	controller := admission.NewController(admission.Config{
		RequestsPerMinute: cfg.RateLimitCfg.PerMinute,
		MaxConcurrent:     cfg.RateLimitCfg.MaxConcurrent,
		IdleTTL:           cfg.RateLimitCfg.IdleTTL,
		CleanupInterval:   cfg.RateLimitCfg.CleanupInterval,
	}, logger)

	queryUC := query.NewUsecase(
		retriever,
		generator,
		cacheManager,
		files,
		registry,
		formatter.NewFactory(),
		cfg.QueryCfg,
		logger,
	)

	documentUC := document.NewUsecase(
		files,
		extractor.New(),
		chunker.New(cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap),
		retriever,
		registry,
		cacheManager,
		fileValidator,
		cfg.IngestCfg,
		logger,
	)
	logger.Info("use cases initialized")

	if _, err := documentUC.MarkUnindexed(ctxzap.ToContext(ctx, logger)); err != nil {
		logger.Warn("registry index check failed", zap.Error(err))
	}

	router := api.SetupRouter(api.Handlers{
		Query:    queryapi.NewHandler(queryUC, fileValidator),
		Document: documentapi.NewHandler(documentUC, cfg.FileUploadCfg),
		System: systemapi.NewHandler(queryUC, cfg.Version, map[string]string{
			"cache":        cacheManager.Stats(ctx).Backend,
			"vector_store": store.Name(),
			"embedding":    embedder.Model(),
			"llm":          generatorName(cfg),
			"registry":     registryName,
		}),
	}, controller, cfg, logger)

	// no write timeout: streamed answers may run for minutes, other routes
	// are bounded by the router
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("application built successfully", zap.String("project", cfg.ProjectName))

	return &App{
		server:    server,
		admission: controller,
		cache:     cacheManager,
		registry:  registry,
		db:        db,
		logger:    logger,
	}, nil
}

// setupCacheBackend connects to Redis when configured and falls back to the
// in-process cache when it is unreachable.
func setupCacheBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.Backend {
	memory := func() cache.Backend {
		return cache.NewMemoryBackend(cfg.CacheCfg.TTL, cfg.CacheCfg.CleanupInterval)
	}

	if cfg.CacheCfg.RedisURL == "" {
		logger.Info("using in-memory cache")
		return memory()
	}

	backend, err := cache.NewRedisBackend(cfg.CacheCfg.RedisURL)
	if err != nil {
		logger.Warn("invalid redis configuration, using in-memory cache", zap.Error(err))
		return memory()
	}

	err = pkgRetry.Do(ctx, cfg.CacheCfg.Retry, "ping redis", backend.Ping)
	if err != nil {
		backend.Close()
		logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return memory()
	}

	logger.Info("using redis cache")
	return backend
}

func setupEmbedder(cfg *config.Config, logger *zap.Logger) rag.Embedder {
	if cfg.EnableMocks || cfg.EmbeddingConnectorCfg.Url == "" {
		logger.Info("using hashing embedder", zap.Int("dimension", cfg.VectorStoreCfg.Dimension))
		return embedding.NewHashingEmbedder(cfg.VectorStoreCfg.Dimension)
	}
	return embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
}

func setupVectorStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (rag.VectorStore, error) {
	if cfg.EnableMocks || cfg.VectorStoreCfg.Type != config.VectorStoreQdrant {
		logger.Info("using in-memory vector store")
		return vectorstore.NewMemory(cfg.VectorStoreCfg.Collection), nil
	}

	store := vectorstore.NewQdrant(cfg.VectorStoreCfg, logger)
	err := pkgRetry.Do(ctx, *pkgRetry.DefaultRetryConfig(), "init qdrant collection", func(ctx context.Context) error {
		return store.Init(ctx, cfg.VectorStoreCfg.Dimension)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("using qdrant vector store", zap.String("collection", store.Collection()))
	return store, nil
}

func setupGenerator(cfg *config.Config, logger *zap.Logger) query.Generator {
	switch generatorName(cfg) {
	case "mock":
		return llm.NewMockConnector(logger)
	case config.LLMProviderLocal:
		return llm.NewLocalConnector(cfg.LLMConnectorCfg, logger)
	default:
		return llm.NewRemoteConnector(cfg.LLMConnectorCfg, logger)
	}
}

func generatorName(cfg *config.Config) string {
	if cfg.EnableMocks {
		return "mock"
	}
	if cfg.LLMConnectorCfg.Provider == config.LLMProviderLocal {
		return config.LLMProviderLocal
	}
	return config.LLMProviderRemote
}
