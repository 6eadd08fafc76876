package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/explainer-backend/internal/admission"
	"github.com/futig/explainer-backend/internal/config"
	"github.com/futig/explainer-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Admitter decides whether a client may start another request.
type Admitter interface {
	Admit(clientID string) admission.Decision
	Release(clientID string)
}

// Admission rejects requests over the client's rate or concurrency budget
// with 429. Paths listed in bypass skip the check; a trailing "*" matches
// any suffix.
func Admission(controller Admitter, cfg config.RateLimitConfig, bypass ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || bypassed(r.URL.Path, bypass) {
				next.ServeHTTP(w, r)
				return
			}

			clientID := admission.ClientID(r)
			decision := controller.Admit(clientID)
			if !decision.Admitted {
				ctxzap.Warn(r.Context(), "request rejected",
					zap.String("reason", string(decision.Reason)),
					zap.Duration("retry_after", decision.RetryAfter),
				)

				if decision.Reason == admission.ReasonTooManyConcurrent {
					response.TooManyRequests(w, "too_many_concurrent_requests",
						fmt.Sprintf("Too many concurrent requests. Maximum %d concurrent requests.", cfg.MaxConcurrent),
						decision.RetryAfter)
					return
				}
				response.TooManyRequests(w, "rate_limit_exceeded",
					fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute.", cfg.PerMinute),
					decision.RetryAfter)
				return
			}
			defer controller.Release(clientID)

			next.ServeHTTP(w, r)
		})
	}
}

func bypassed(path string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}
