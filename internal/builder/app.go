package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/explainer-backend/internal/admission"
	"github.com/futig/explainer-backend/internal/cache"
	"github.com/futig/explainer-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App represents the application with all its components
type App struct {
	server    *http.Server
	admission *admission.Controller
	cache     *cache.Manager
	registry  repository.DocumentRepository
	db        *pgxpool.Pool
	logger    *zap.Logger
}

// Run serves HTTP and sweeps idle admission records until a shutdown signal
// or a server error.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.admission.Run(ctx)

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		a.logger.Error("server error", zap.Error(err))
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down server gracefully")

	err := a.server.Shutdown(ctx)
	if err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	a.close()
	a.logger.Info("application stopped")
	return err
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close cache", zap.Error(err))
	}
	if err := a.registry.Close(); err != nil {
		a.logger.Warn("failed to close document registry", zap.Error(err))
	}
	if a.db != nil {
		a.db.Close()
	}
	a.logger.Sync()
}
