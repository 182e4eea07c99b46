package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
)

// Realm is announced in WWW-Authenticate challenges.
const Realm = "irisd"

// AuthConfig holds basic auth credentials. It is shared with the server so
// a config reload takes effect without rebuilding the handler chain.
type AuthConfig struct {
	mu       sync.RWMutex
	enabled  bool
	user     string
	password string
}

func NewAuthConfig(enabled bool, user, password string) *AuthConfig {
	return &AuthConfig{enabled: enabled, user: user, password: password}
}

// Update replaces the credentials.
func (c *AuthConfig) Update(enabled bool, user, password string) {
	c.mu.Lock()
	c.enabled = enabled
	c.user = user
	c.password = password
	c.mu.Unlock()
}

// Enabled reports whether basic auth is switched on.
func (c *AuthConfig) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// check compares credentials in constant time.
func (c *AuthConfig) check(r *http.Request) bool {
	c.mu.RLock()
	wantUser, wantPass := c.user, c.password
	c.mu.RUnlock()

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}

	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userMatch && passMatch
}

// Auth creates a Basic Auth middleware.
// Paths in excludePaths will be excluded from authentication.
// Paths ending with "*" are treated as prefixes (e.g., "/debug/*" matches "/debug/foo").
func Auth(config *AuthConfig, excludePaths ...string) Middleware {
	exactExcludes := make(map[string]bool)
	var prefixExcludes []string

	for _, path := range excludePaths {
		if strings.HasSuffix(path, "*") {
			prefixExcludes = append(prefixExcludes, strings.TrimSuffix(path, "*"))
		} else {
			exactExcludes[path] = true
		}
	}

	excluded := func(path string) bool {
		if exactExcludes[path] {
			return true
		}
		for _, prefix := range prefixExcludes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled() || excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !config.check(r) {
				unauthorized(w, Realm)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	writeError(w, http.StatusUnauthorized, "unauthorized")
}
