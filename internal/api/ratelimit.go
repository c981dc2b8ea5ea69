package api

import (
	"net/http"
	"strings"

	"github.com/recipeapp/recipe-server/internal/http/response"
	"github.com/recipeapp/recipe-server/internal/metrics"
	"github.com/recipeapp/recipe-server/internal/ratelimit"
)

// rateLimitedPaths are the unauthenticated account endpoints limited per client IP.
var rateLimitedPaths = map[string]bool{
	"/user/create": true,
	"/user/token":  true,
}

// RateLimitMiddleware rate limits POSTs to the account endpoints by client IP.
// Returns 429 Too Many Requests when limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger interface{ Warn(msg string, args ...any) }) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || r.Method != http.MethodPost || !rateLimitedPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				metrics.RateLimited(r.URL.Path)
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", "60")
				response.TooManyRequests(w, "too many requests, please try again later", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For may carry a chain; the first entry is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return strings.Trim(ip[:i], "[]")
	}
	return ip
}
