package builder

import (
	"context"
	"fmt"

	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// setupDatabase creates a new database connection pool
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
	)

	return pool, nil
}

// setupRegistry opens the document registry: Postgres when a database is
// configured, a local bbolt file otherwise. The returned pool is nil for bbolt.
func setupRegistry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.DocumentRepository, *pgxpool.Pool, string, error) {
	if cfg.DatabaseURL == "" {
		repo, err := repository.NewDocumentBolt(cfg.RegistryPath)
		if err != nil {
			return nil, nil, "", err
		}
		logger.Info("using bbolt document registry", zap.String("path", cfg.RegistryPath))
		return repo, nil, "bolt", nil
	}

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, "", fmt.Errorf("setup database: %w", err)
	}

	logger.Info("running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, "", fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed successfully")

	return repository.NewDocumentPostgres(db), db, "postgres", nil
}
