package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	applog "github.com/janisto/company-admin/internal/platform/logging"
	"github.com/janisto/company-admin/internal/platform/respond"
)

// RateLimit limits each client IP to requests per window. Rejected requests
// get 429 with Retry-After.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitHandler(window)),
	)
}

// RateLimitRoutes applies a separate per-IP, per-route limit to requests whose
// method and path match one of routes, e.g. "POST /v1/session".
func RateLimitRoutes(requests int, window time.Duration, routes ...string) func(http.Handler) http.Handler {
	match := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		match[r] = struct{}{}
	}
	limiter := httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(limitHandler(window)),
	)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := match[r.Method+" "+r.URL.Path]; ok {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limitHandler(window time.Duration) http.HandlerFunc {
	retryAfter := strconv.Itoa(max(1, int(window.Seconds())))
	return func(w http.ResponseWriter, r *http.Request) {
		applog.LogWarn(r.Context(), "rate limit exceeded",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		w.Header().Set("Retry-After", retryAfter)
		respond.WriteProblem(w, r, http.StatusTooManyRequests, "rate limit exceeded")
	}
}
