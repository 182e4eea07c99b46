package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected default host 127.0.0.1, got %s", cfg.Server.Host)
	}

	if cfg.Artifacts.Format != "json" {
		t.Errorf("expected default classifier format json, got %s", cfg.Artifacts.Format)
	}

	if cfg.Batch.Sink != "csv" {
		t.Errorf("expected default sink csv, got %s", cfg.Batch.Sink)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  host: "0.0.0.0"
  port: 9090

artifacts:
  dir: "/srv/iris"
  classifier: "iris_model.onnx"
  classifier_format: "onnx"

batch:
  sink: "sqlite"
  table: "iris_predictions"

logging:
  level: "debug"
  format: "text"
  file:
    path: "/var/log/irisd.log"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}

	if cfg.Artifacts.Dir != "/srv/iris" || cfg.Artifacts.Format != "onnx" {
		t.Errorf("unexpected artifacts section: %+v", cfg.Artifacts)
	}

	if cfg.Batch.Sink != "sqlite" || cfg.Batch.Table != "iris_predictions" {
		t.Errorf("unexpected batch section: %+v", cfg.Batch)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	// Check that defaults are preserved for unspecified values
	if cfg.Artifacts.Scaler != "iris_scaler.json" {
		t.Errorf("expected default scaler name, got %s", cfg.Artifacts.Scaler)
	}
	if cfg.Artifacts.ONNX.InputName != "float_input" {
		t.Errorf("expected default onnx input name, got %s", cfg.Artifacts.ONNX.InputName)
	}
	if cfg.Logging.File.MaxSizeMB != 100 {
		t.Errorf("expected default max_size_mb 100, got %d", cfg.Logging.File.MaxSizeMB)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	configPath := writeConfig(t, `
artifacts:
  scalar: "typo.json"
`)

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadInvalid(t *testing.T) {
	configPath := writeConfig(t, `
batch:
  sink: "parquet"
`)

	if _, err := Load(configPath); err == nil {
		t.Error("expected validation error")
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected defaults for empty input, got port %d", cfg.Server.Port)
	}
}

func TestLoadOrDefault(t *testing.T) {
	// Empty path returns defaults
	cfg := LoadOrDefault("")
	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}

	// Non-existent file returns defaults
	cfg = LoadOrDefault("/nonexistent/path/config.yaml")
	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
}

func TestWatchDebounce(t *testing.T) {
	cfg := Default()
	cfg.Watch.DebounceMS = 500

	if got := cfg.WatchDebounce().Milliseconds(); got != 500 {
		t.Errorf("expected 500ms, got %dms", got)
	}
}
