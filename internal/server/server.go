package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/monitor"
	"github.com/haskel/irisd/internal/pipeline"
	"github.com/haskel/irisd/internal/server/middleware"
)

// Paths that stay reachable without credentials and outside the rate limit.
var publicPaths = []string{"/health", "/ready"}

type Server struct {
	httpServer  *http.Server
	predictor   *pipeline.Predictor
	aggregator  *monitor.Aggregator
	logger      *slog.Logger
	version     string
	started     time.Time
	authConfig  *middleware.AuthConfig
	rateLimiter *middleware.RateLimiter
	stats       *Stats

	mu     sync.RWMutex
	config *config.Config
}

// New builds the HTTP server. agg may be nil, in which case /status reports
// only the request counters.
func New(cfg *config.Config, predictor *pipeline.Predictor, agg *monitor.Aggregator, logger *slog.Logger, version string) *Server {
	s := &Server{
		predictor:   predictor,
		aggregator:  agg,
		config:      cfg,
		logger:      logger,
		version:     version,
		started:     time.Now(),
		authConfig:  middleware.NewAuthConfig(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password),
		rateLimiter: middleware.NewRateLimiter(cfg.Server.RateLimit.Enabled, cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst),
		stats:       NewStats(),
	}

	mux := s.setupRoutes()

	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger),
		middleware.Tracing(cfg.Tracing.Enabled, cfg.Tracing.ServiceName),
		middleware.Logging(logger),
		middleware.SecurityHeaders(),
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
		middleware.RateLimit(s.rateLimiter, publicPaths...),
		middleware.Auth(s.authConfig, publicPaths...),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ReloadConfig applies the settings that can change at runtime.
// Listen address, artifacts and debug routes require a restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.logger.Info("reloading configuration")

	s.authConfig.Update(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)
	s.rateLimiter.Update(cfg.Server.RateLimit.Enabled, cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst)

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.logger.Info("configuration reloaded",
		"auth_enabled", cfg.Auth.Enabled,
		"rate_limit_enabled", cfg.Server.RateLimit.Enabled,
	)
}

func (s *Server) currentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
		"artifacts_loaded", s.predictor.Ready(),
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
