package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/inference"
	"github.com/haskel/irisd/internal/monitor"
	"github.com/haskel/irisd/internal/pipeline"
	"github.com/haskel/irisd/internal/storage"
)

const (
	msgLoaded      = "API is running and artifacts are loaded."
	msgNotLoaded   = "API is running BUT model/scaler artifacts failed to load."
	msgUnavailable = "Model or scaler failed to load during server initialization."
	msgInternal    = "An unexpected server error occurred."
	msgTooLarge    = "request body too large"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ReadyResponse struct {
	Ready bool `json:"ready"`
}

// PredictResponse is the success body of POST /predict.
type PredictResponse struct {
	Prediction       int       `json:"prediction"`
	ClassName        string    `json:"class_name"`
	ProcessingTimeMS float64   `json:"processing_time_ms"`
	Probabilities    []float64 `json:"probabilities,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Version         string                `json:"version"`
	ArtifactsLoaded bool                  `json:"artifacts_loaded"`
	Stats           StatsSnapshot         `json:"stats"`
	Process         *monitor.ProcessState `json:"process,omitempty"`
	Host            *monitor.HostState    `json:"host,omitempty"`
	Timestamp       *time.Time            `json:"timestamp,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}

	s.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "irisd",
		Version: s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.predictor.Ready() {
		s.writeJSON(w, http.StatusInternalServerError, HealthResponse{
			Status:  "error",
			Message: msgNotLoaded,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: msgLoaded,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := s.predictor.Ready()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, ReadyResponse{Ready: ready})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	s.stats.recordRequest()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.stats.recordError(true)
			s.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgTooLarge})
			return
		}
		s.stats.recordError(true)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: pipeline.ErrInput.Error()})
		return
	}

	out, err := s.predictor.Predict(r.Context(), body)
	if err != nil {
		s.writePredictError(w, err)
		return
	}

	s.stats.recordPrediction(out.Result.ClassIndex, out.Latency.Microseconds())

	resp := PredictResponse{
		Prediction:       out.Result.ClassIndex,
		ClassName:        out.Result.ClassName,
		ProcessingTimeMS: float64(out.Latency.Microseconds()) / 1000,
	}
	if r.URL.Query().Get("probabilities") == "true" {
		resp.Probabilities = out.Result.Probabilities
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// writePredictError maps pipeline failures to responses. Only input and
// validation failures are described to the caller.
func (s *Server) writePredictError(w http.ResponseWriter, err error) {
	switch {
	case pipeline.IsClientError(err):
		s.stats.recordError(true)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: clientMessage(err)})

	case errors.Is(err, inference.ErrArtifactUnavailable):
		s.stats.recordError(false)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgUnavailable})

	default:
		s.stats.recordError(false)
		s.logger.Error("prediction failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	}
}

func clientMessage(err error) string {
	if errors.Is(err, pipeline.ErrInput) {
		return pipeline.ErrInput.Error()
	}
	var verr *features.ValidationError
	if errors.As(err, &verr) {
		return pipeline.ErrValidation.Error() + ": " + verr.Error()
	}
	return pipeline.ErrValidation.Error()
}

func (s *Server) statsSnapshot() StatsSnapshot {
	snap := s.stats.Snapshot()
	snap.ArtifactsLoaded = s.predictor.Ready()
	snap.UptimeSeconds = int64(time.Since(s.started).Seconds())
	return snap
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.statsSnapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version:         s.version,
		ArtifactsLoaded: s.predictor.Ready(),
		Stats:           s.statsSnapshot(),
	}

	if s.aggregator != nil {
		status := s.aggregator.Status()
		if !status.Timestamp.IsZero() {
			resp.Process = &status.Process
			resp.Host = &status.Host
			resp.Timestamp = &status.Timestamp
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleDebugStatus handles GET /debug/status.
func (s *Server) handleDebugStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.currentConfig()
	store := storage.NewArtifactStore(cfg.Artifacts.Dir, s.logger)
	scalerDim, classifierDim := s.predictor.Dims()

	resp := map[string]any{
		"debug_enabled":     cfg.Debug.Enabled,
		"profiling_enabled": cfg.Server.Profiling.Enabled,
		"auth_enabled":      s.authConfig.Enabled(),
		"artifacts": map[string]any{
			"loaded":         s.predictor.Ready(),
			"dir":            cfg.Artifacts.Dir,
			"format":         cfg.Artifacts.Format,
			"scaler":         store.Info(cfg.Artifacts.Scaler),
			"classifier":     store.Info(cfg.Artifacts.Classifier),
			"scaler_dim":     scalerDim,
			"classifier_dim": classifierDim,
		},
		"columns": features.Columns,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
