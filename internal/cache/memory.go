package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	gocache "github.com/patrickmn/go-cache"
)

const memoryBackendName = "memory"

// MemoryBackend keeps entries in process. Expired entries are misses and
// are swept by the go-cache janitor every cleanup interval.
type MemoryBackend struct {
	store *gocache.Cache
}

func NewMemoryBackend(defaultTTL, cleanupInterval time.Duration) *MemoryBackend {
	return &MemoryBackend{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := b.store.Get(key)
	if !ok {
		return nil, ErrNotFound
	}

	raw, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected value type %T for key %s", v, key)
	}
	return raw, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	b.store.Set(key, stored, ttl)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) (bool, error) {
	if _, ok := b.store.Get(key); !ok {
		return false, nil
	}
	b.store.Delete(key)
	return true, nil
}

// DeletePattern removes the live keys matching a Redis-style glob.
func (b *MemoryBackend) DeletePattern(_ context.Context, pattern string) (int, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	removed := 0
	for key := range b.store.Items() {
		if !matcher.Match(key) {
			continue
		}
		b.store.Delete(key)
		removed++
	}

	return removed, nil
}

func (b *MemoryBackend) Len(_ context.Context) (int, error) {
	return len(b.store.Items()), nil
}

func (b *MemoryBackend) Name() string {
	return memoryBackendName
}

func (b *MemoryBackend) Close() error {
	b.store.Flush()
	return nil
}
