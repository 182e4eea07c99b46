package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/inference"
	"github.com/haskel/irisd/internal/inference/inferencetest"
	"github.com/haskel/irisd/internal/pipeline"
	"github.com/haskel/irisd/internal/storage"
)

const setosa = `{"sepal length (cm)": 5.1, "sepal width (cm)": 3.5, "petal length (cm)": 1.4, "petal width (cm)": 0.2}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg *config.Config, adapter *inference.Adapter) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	return New(cfg, pipeline.NewPredictor(adapter, testLogger()), nil, testLogger(), "0.1.0-test")
}

func testServer(t *testing.T) *Server {
	return newTestServer(t, nil, inferencetest.Adapter())
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHandleInfo(t *testing.T) {
	w := do(testServer(t), http.MethodGet, "/", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	info := decode[InfoResponse](t, w)
	if info.Name != "irisd" || info.Version != "0.1.0-test" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestHandleInfo_NotFound(t *testing.T) {
	w := do(testServer(t), http.MethodGet, "/nonexistent", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	w := do(testServer(t), http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	health := decode[HealthResponse](t, w)
	if health.Status != "ok" || health.Message == "" {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestHandleReady(t *testing.T) {
	if w := do(testServer(t), http.MethodGet, "/ready", ""); w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	s := newTestServer(t, nil, inference.Unavailable())
	w := do(s, http.MethodGet, "/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if decode[ReadyResponse](t, w).Ready {
		t.Error("expected ready=false")
	}
}

func TestHandlePredict(t *testing.T) {
	w := do(testServer(t), http.MethodPost, "/predict", setosa)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	for _, key := range []string{"prediction", "class_name", "processing_time_ms"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected %q in response", key)
		}
	}
	if _, ok := raw["probabilities"]; ok {
		t.Error("probabilities must only be sent on request")
	}
	if raw["prediction"] != float64(0) || raw["class_name"] != "setosa" {
		t.Errorf("expected 0/setosa, got %v/%v", raw["prediction"], raw["class_name"])
	}
}

func TestHandlePredict_Probabilities(t *testing.T) {
	w := do(testServer(t), http.MethodPost, "/predict?probabilities=true", setosa)

	resp := decode[PredictResponse](t, w)
	if len(resp.Probabilities) != 3 {
		t.Fatalf("expected 3 probabilities, got %v", resp.Probabilities)
	}
}

func TestHandlePredict_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", pipeline.ErrInput.Error()},
		{"not json", "hello", pipeline.ErrInput.Error()},
		{"missing feature", `{"sepal length (cm)": 5.1, "sepal width (cm)": 3.5, "petal length (cm)": 1.4}`, "petal width (cm)"},
		{"non numeric", `{"sepal length (cm)": "x", "sepal width (cm)": 3.5, "petal length (cm)": 1.4, "petal width (cm)": 0.2}`, pipeline.ErrValidation.Error()},
		{"negative", `{"sepal length (cm)": -5.1, "sepal width (cm)": 3.5, "petal length (cm)": 1.4, "petal width (cm)": 0.2}`, pipeline.ErrValidation.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(testServer(t), http.MethodPost, "/predict", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
			resp := decode[ErrorResponse](t, w)
			if !strings.Contains(resp.Error, tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, resp.Error)
			}
		})
	}
}

func TestHandlePredict_BodyTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 16
	s := newTestServer(t, cfg, inferencetest.Adapter())

	w := do(s, http.MethodPost, "/predict", setosa)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", w.Code)
	}
}

func TestHandlePredict_InternalErrorIsGeneric(t *testing.T) {
	narrow, err := inference.NewStandardScaler(nil, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("NewStandardScaler error: %v", err)
	}
	s := newTestServer(t, nil, inference.NewAdapter(narrow, inferencetest.Classifier()))

	w := do(s, http.MethodPost, "/predict", setosa)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if got := decode[ErrorResponse](t, w).Error; got != msgInternal {
		t.Errorf("expected generic message, got %q", got)
	}
}

// Artifacts that fail to load leave the server up: health reports the
// failure and predictions fail fast.
func TestArtifactsUnavailable(t *testing.T) {
	s := newTestServer(t, nil, inference.Unavailable())

	w := do(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if health := decode[HealthResponse](t, w); health.Status != "error" {
		t.Errorf("expected status error, got %+v", health)
	}

	w = do(s, http.MethodPost, "/predict", setosa)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if got := decode[ErrorResponse](t, w).Error; got != msgUnavailable {
		t.Errorf("expected fixed message, got %q", got)
	}
}

func TestHandleStats(t *testing.T) {
	s := testServer(t)

	do(s, http.MethodPost, "/predict", setosa)
	do(s, http.MethodPost, "/predict", `{"sepal length (cm)": 7.3, "sepal width (cm)": 2.9, "petal length (cm)": 6.3, "petal width (cm)": 1.8}`)
	do(s, http.MethodPost, "/predict", "{}")

	w := do(s, http.MethodGet, "/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	stats := decode[StatsSnapshot](t, w)
	if stats.Requests != 3 || stats.Predictions != 2 || stats.ClientErrors != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.Classes["setosa"] != 1 || stats.Classes["virginica"] != 1 || stats.Classes["versicolor"] != 0 {
		t.Errorf("unexpected class counts: %v", stats.Classes)
	}
	if !stats.ArtifactsLoaded {
		t.Error("expected artifacts_loaded")
	}
}

func TestHandleStatus(t *testing.T) {
	w := do(testServer(t), http.MethodGet, "/status", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	status := decode[StatusResponse](t, w)
	if status.Version != "0.1.0-test" || !status.ArtifactsLoaded {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.Process != nil {
		t.Error("expected no process stats without an aggregator")
	}
}

func TestAuth_HealthExcluded(t *testing.T) {
	cfg := config.Default()
	cfg.Auth = config.AuthConfig{Enabled: true, User: "admin", Password: "secret"}
	s := newTestServer(t, cfg, inferencetest.Adapter())

	if w := do(s, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("expected /health without auth, got %d", w.Code)
	}
	if w := do(s, http.MethodPost, "/predict", setosa); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(setosa))
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with credentials, got %d", w.Code)
	}
}

func TestReloadConfig(t *testing.T) {
	s := testServer(t)

	cfg := config.Default()
	cfg.Auth = config.AuthConfig{Enabled: true, User: "admin", Password: "secret"}
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}
	s.ReloadConfig(cfg)

	if w := do(s, http.MethodGet, "/stats", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected auth after reload, got %d", w.Code)
	}
	if w := do(s, http.MethodGet, "/stats", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected rate limit after reload, got %d", w.Code)
	}
	if s.currentConfig() != cfg {
		t.Error("expected stored config to be replaced")
	}
}

func TestDebugRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.Debug.Enabled = true
	cfg.Debug.Auth.Token = "tok"
	store := inferencetest.Store(t)
	cfg.Artifacts.Dir = filepath.Dir(store.Path(inferencetest.ScalerFile))
	cfg.Artifacts.Scaler = inferencetest.ScalerFile
	cfg.Artifacts.Classifier = "missing.json"
	s := newTestServer(t, cfg, inferencetest.Adapter())

	if w := do(s, http.MethodGet, "/debug/status", ""); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/status", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}

	var status struct {
		Artifacts struct {
			Loaded        bool                 `json:"loaded"`
			Scaler        storage.ArtifactInfo `json:"scaler"`
			Classifier    storage.ArtifactInfo `json:"classifier"`
			ScalerDim     int                  `json:"scaler_dim"`
			ClassifierDim int                  `json:"classifier_dim"`
		} `json:"artifacts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode debug status: %v", err)
	}
	if !status.Artifacts.Loaded {
		t.Error("expected artifacts loaded")
	}
	if !status.Artifacts.Scaler.Exists || status.Artifacts.Scaler.Size == 0 {
		t.Errorf("expected scaler file info, got %+v", status.Artifacts.Scaler)
	}
	if status.Artifacts.Classifier.Exists {
		t.Error("expected missing classifier file to be reported")
	}
	if status.Artifacts.ScalerDim != features.NumColumns || status.Artifacts.ClassifierDim != features.NumColumns {
		t.Errorf("expected dims %d, got %d/%d", features.NumColumns, status.Artifacts.ScalerDim, status.Artifacts.ClassifierDim)
	}

	if w := do(testServer(t), http.MethodGet, "/debug/status", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected debug routes to be absent by default, got %d", w.Code)
	}
}
