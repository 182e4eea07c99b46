package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/haskel/irisd/internal/server/middleware"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /status", s.handleStatus)

	s.setupDebugRoutes(mux)

	return mux
}

// setupDebugRoutes configures debug and profiling endpoints with authentication.
func (s *Server) setupDebugRoutes(mux *http.ServeMux) {
	cfg := s.currentConfig()
	profilingEnabled := cfg.Server.Profiling.Enabled
	debugEnabled := cfg.Debug.Enabled

	if !profilingEnabled && !debugEnabled {
		return
	}

	debugAuth := middleware.DebugAuth(&middleware.DebugAuthConfig{
		Token:    cfg.Debug.Auth.Token,
		Fallback: s.authConfig,
	})

	if profilingEnabled {
		s.logger.Info("profiling endpoints enabled at /debug/pprof/ (auth required)")
		mux.Handle("GET /debug/pprof/{$}", debugAuth(http.HandlerFunc(pprof.Index)))
		mux.Handle("GET /debug/pprof/cmdline", debugAuth(http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("GET /debug/pprof/profile", debugAuth(http.HandlerFunc(pprof.Profile)))
		mux.Handle("GET /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("POST /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("GET /debug/pprof/trace", debugAuth(http.HandlerFunc(pprof.Trace)))
		mux.Handle("GET /debug/pprof/{name...}", debugAuth(http.HandlerFunc(pprof.Index)))
	}

	if debugEnabled {
		s.logger.Warn("debug mode enabled - debug endpoints require authentication")
		mux.Handle("GET /debug/status", debugAuth(http.HandlerFunc(s.handleDebugStatus)))
	}
}
