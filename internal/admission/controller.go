package admission

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	window = 60 * time.Second

	rateLimitedRetryAfter   = 60 * time.Second
	concurrencyRetryAfter   = 10 * time.Second
	defaultCleanupInterval  = time.Minute
	defaultIdleTTL          = 10 * time.Minute
	unknownClientIdentifier = "unknown"
)

type RejectReason string

const (
	ReasonNone              RejectReason = ""
	ReasonRateLimited       RejectReason = "rate_limited"
	ReasonTooManyConcurrent RejectReason = "too_many_concurrent"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Admitted   bool
	Reason     RejectReason
	RetryAfter time.Duration
}

// clientState tracks the sliding window and in-flight count of one client.
type clientState struct {
	mu        sync.Mutex
	requests  []time.Time
	inFlight  int
	lastSeen  time.Time
	discarded bool
}

type Config struct {
	RequestsPerMinute int
	MaxConcurrent     int
	IdleTTL           time.Duration
	CleanupInterval   time.Duration
}

// Controller admits requests per client under a sliding-window rate limit
// and a concurrency cap.
type Controller struct {
	clients map[string]*clientState
	mu      sync.RWMutex
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
}

func NewController(cfg Config, logger *zap.Logger) *Controller {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	// a record may only be dropped once its whole window has expired
	if cfg.IdleTTL < window {
		cfg.IdleTTL = window
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}

	return &Controller{
		clients: make(map[string]*clientState),
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// Admit checks the rate window first, then the concurrency gate.
// An admitted request must be paired with exactly one Release.
func (c *Controller) Admit(clientID string) Decision {
	if clientID == "" {
		clientID = unknownClientIdentifier
	}

	for {
		state := c.state(clientID)

		state.mu.Lock()
		if state.discarded {
			// evicted between lookup and lock, resolve a fresh record
			state.mu.Unlock()
			continue
		}

		decision := c.admitLocked(state)
		state.mu.Unlock()

		return decision
	}
}

func (c *Controller) admitLocked(state *clientState) Decision {
	now := c.now()
	state.lastSeen = now

	cutoff := now.Add(-window)
	kept := state.requests[:0]
	for _, ts := range state.requests {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	state.requests = kept

	if len(state.requests) >= c.cfg.RequestsPerMinute {
		return Decision{Reason: ReasonRateLimited, RetryAfter: rateLimitedRetryAfter}
	}

	if state.inFlight >= c.cfg.MaxConcurrent {
		return Decision{Reason: ReasonTooManyConcurrent, RetryAfter: concurrencyRetryAfter}
	}

	state.requests = append(state.requests, now)
	state.inFlight++

	return Decision{Admitted: true}
}

// Release frees the concurrency slot taken by an admitted request.
func (c *Controller) Release(clientID string) {
	if clientID == "" {
		clientID = unknownClientIdentifier
	}

	c.mu.RLock()
	state, ok := c.clients[clientID]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("release for unknown client", zap.String("client_id", clientID))
		return
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.inFlight > 0 {
		state.inFlight--
	}
	state.lastSeen = c.now()
}

// InFlight reports the number of admitted, unreleased requests of a client.
func (c *Controller) InFlight(clientID string) int {
	c.mu.RLock()
	state, ok := c.clients[clientID]
	c.mu.RUnlock()
	if !ok {
		return 0
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.inFlight
}

// TrackedClients returns the number of client records held in memory.
func (c *Controller) TrackedClients() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Run sweeps idle client records until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.evictIdle(); removed > 0 {
				c.logger.Debug("evicted idle clients from admission controller", zap.Int("count", removed))
			}
		}
	}
}

func (c *Controller) evictIdle() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for clientID, state := range c.clients {
		state.mu.Lock()
		if state.inFlight == 0 && now.Sub(state.lastSeen) > c.cfg.IdleTTL {
			state.discarded = true
			delete(c.clients, clientID)
			removed++
		}
		state.mu.Unlock()
	}

	return removed
}

func (c *Controller) state(clientID string) *clientState {
	c.mu.RLock()
	state, ok := c.clients[clientID]
	c.mu.RUnlock()
	if ok {
		return state
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if state, ok = c.clients[clientID]; ok {
		return state
	}

	state = &clientState{lastSeen: c.now()}
	c.clients[clientID] = state
	return state
}
