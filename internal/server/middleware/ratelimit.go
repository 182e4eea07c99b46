package middleware

import (
	"net/http"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by all clients. Update swaps the
// bucket so a config reload applies to the next request.
type RateLimiter struct {
	limiter atomic.Pointer[rate.Limiter]
}

// NewRateLimiter creates a limiter. A disabled limiter allows everything.
func NewRateLimiter(enabled bool, rps float64, burst int) *RateLimiter {
	l := &RateLimiter{}
	l.Update(enabled, rps, burst)
	return l
}

// Update replaces the bucket.
func (l *RateLimiter) Update(enabled bool, rps float64, burst int) {
	if !enabled {
		l.limiter.Store(nil)
		return
	}
	l.limiter.Store(rate.NewLimiter(rate.Limit(rps), burst))
}

// Allow reports whether one more request may pass now.
func (l *RateLimiter) Allow() bool {
	limiter := l.limiter.Load()
	return limiter == nil || limiter.Allow()
}

// RateLimit rejects requests beyond the limiter's rate with 429. Paths in
// excludePaths are never limited.
func RateLimit(l *RateLimiter, excludePaths ...string) Middleware {
	if l == nil {
		return passthrough
	}

	excluded := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		excluded[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excluded[r.URL.Path] || l.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
		})
	}
}
