package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// DebugAuthConfig holds debug endpoint authentication configuration.
type DebugAuthConfig struct {
	// Token for Bearer authentication on debug endpoints.
	Token string
	// Fallback is used when Token is empty.
	Fallback *AuthConfig
}

// DebugAuth protects the profiling and debug endpoints.
// A set token requires "Authorization: Bearer <token>". Without a token the
// main basic auth is used when enabled. With neither, every request is
// forbidden.
func DebugAuth(config *DebugAuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Token != "" {
				if checkBearerToken(r, config.Token) {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusForbidden, "debug authentication required")
				return
			}

			if config.Fallback != nil && config.Fallback.Enabled() {
				if !config.Fallback.check(r) {
					unauthorized(w, Realm+"-debug")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			writeError(w, http.StatusForbidden, "debug authentication required")
		})
	}
}

// checkBearerToken validates the Authorization: Bearer <token> header.
func checkBearerToken(r *http.Request, expectedToken string) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) == 1
}
