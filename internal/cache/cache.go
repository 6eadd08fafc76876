package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrNotFound is returned by backends on a miss.
var ErrNotFound = errors.New("cache: key not found")

// Backend stores raw values with per-entry expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	DeletePattern(ctx context.Context, pattern string) (int, error)
	Len(ctx context.Context) (int, error)
	Name() string
	Close() error
}

// Manager is the best-effort result cache. Backend failures are logged
// and reported as misses or no-ops, never returned to callers.
type Manager struct {
	backend    Backend
	defaultTTL time.Duration
	logger     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	errors atomic.Int64
}

func NewManager(backend Backend, defaultTTL time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		backend:    backend,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Get decodes the value stored under key into dest and reports a hit.
func (m *Manager) Get(ctx context.Context, key string, dest any) bool {
	raw, err := m.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.errors.Add(1)
			ctxzap.Warn(ctx, "cache get failed", zap.String("key", key), zap.Error(err))
		}
		m.misses.Add(1)
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		m.errors.Add(1)
		m.misses.Add(1)
		ctxzap.Warn(ctx, "cache value decode failed", zap.String("key", key), zap.Error(err))
		return false
	}

	m.hits.Add(1)
	ctxzap.Debug(ctx, "cache hit", zap.String("key", key))
	return true
}

// Set stores value under key. A zero ttl selects the default TTL.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	raw, err := json.Marshal(value)
	if err != nil {
		m.errors.Add(1)
		ctxzap.Warn(ctx, "cache value encode failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := m.backend.Set(ctx, key, raw, ttl); err != nil {
		m.errors.Add(1)
		ctxzap.Warn(ctx, "cache set failed", zap.String("key", key), zap.Error(err))
		return false
	}

	m.sets.Add(1)
	return true
}

func (m *Manager) Delete(ctx context.Context, key string) bool {
	deleted, err := m.backend.Delete(ctx, key)
	if err != nil {
		m.errors.Add(1)
		ctxzap.Warn(ctx, "cache delete failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return deleted
}

// ClearPattern removes every key matching the glob and returns how many were removed.
func (m *Manager) ClearPattern(ctx context.Context, pattern string) int {
	removed, err := m.backend.DeletePattern(ctx, pattern)
	if err != nil {
		m.errors.Add(1)
		ctxzap.Warn(ctx, "cache pattern clear failed", zap.String("pattern", pattern), zap.Error(err))
	}

	if removed > 0 {
		ctxzap.Info(ctx, "cache entries cleared", zap.String("pattern", pattern), zap.Int("count", removed))
	}
	return removed
}

func (m *Manager) Stats(ctx context.Context) entity.CacheStats {
	entries, err := m.backend.Len(ctx)
	if err != nil {
		ctxzap.Warn(ctx, "cache size lookup failed", zap.Error(err))
	}

	return entity.CacheStats{
		Backend: m.backend.Name(),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Sets:    m.sets.Load(),
		Errors:  m.errors.Load(),
		Entries: entries,
	}
}

func (m *Manager) Close() error {
	return m.backend.Close()
}
