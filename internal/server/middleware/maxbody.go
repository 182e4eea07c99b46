package middleware

import (
	"net/http"
)

// MaxBodySize is used when no limit is configured.
const MaxBodySize = 1 << 20 // 1 MB

// MaxBody limits request bodies of POST requests. Reading past the limit
// fails with *http.MaxBytesError, which the handlers report as 413.
func MaxBody(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}
