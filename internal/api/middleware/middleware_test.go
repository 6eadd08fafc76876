package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/futig/explainer-backend/internal/admission"
	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newController(perMinute, concurrent int) *admission.Controller {
	return admission.NewController(admission.Config{
		RequestsPerMinute: perMinute,
		MaxConcurrent:     concurrent,
	}, zap.NewNop())
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAdmissionRateLimit(t *testing.T) {
	t.Parallel()

	ctrl := newController(2, 5)
	h := Admission(ctrl, config.RateLimitConfig{PerMinute: 2, MaxConcurrent: 5}, "/health")(http.HandlerFunc(ok))

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("/levels").Code)
	assert.Equal(t, http.StatusOK, send("/levels").Code)

	rec := send("/levels")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body entity.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limit_exceeded", body.Error)
	assert.Equal(t, 60, body.RetryAfter)
	assert.Contains(t, body.Detail, "Maximum 2 requests per minute")

	assert.Equal(t, http.StatusOK, send("/health").Code)
	assert.Zero(t, ctrl.InFlight("10.0.0.1"))
}

func TestAdmissionConcurrency(t *testing.T) {
	t.Parallel()

	ctrl := newController(100, 1)
	entered := make(chan struct{})
	unblock := make(chan struct{})
	h := Admission(ctrl, config.RateLimitConfig{PerMinute: 100, MaxConcurrent: 1})(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/slow" {
				close(entered)
				<-unblock
			}
			w.WriteHeader(http.StatusOK)
		}))

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		send("/slow")
	}()
	<-entered

	rec := send("/fast")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("Retry-After"))

	close(unblock)
	wg.Wait()

	assert.Zero(t, ctrl.InFlight("203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("/fast").Code)
}

func TestAdmissionReleasesOnPanic(t *testing.T) {
	t.Parallel()

	ctrl := newController(10, 1)
	h := Admission(ctrl, config.RateLimitConfig{PerMinute: 10, MaxConcurrent: 1})(http.HandlerFunc(
		func(http.ResponseWriter, *http.Request) { panic("boom") }))

	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	req.RemoteAddr = "10.0.0.2:1"
	assert.Panics(t, func() { h.ServeHTTP(httptest.NewRecorder(), req) })
	assert.Zero(t, ctrl.InFlight("10.0.0.2"))
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestLoggerPassesThrough(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestAdmissionBypassPrefix(t *testing.T) {
	t.Parallel()

	ctrl := newController(1, 1)
	h := Admission(ctrl, config.RateLimitConfig{PerMinute: 1, MaxConcurrent: 1}, "/health", "/docs/*")(http.HandlerFunc(ok))

	for _, path := range []string{"/docs/index.html", "/docs/swagger.yaml", "/health", "/health"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Zero(t, ctrl.TrackedClients())
}
