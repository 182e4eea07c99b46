package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/haskel/irisd/internal/inference"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Artifacts.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("artifacts: %w", err))
	}

	if err := c.Batch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("batch: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if err := c.Monitoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("monitoring: %w", err))
	}

	if err := c.Watch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("watch: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.validateDebugSecurity(); err != nil {
		errs = append(errs, fmt.Errorf("debug: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}

	if s.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be non-negative"))
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
	}

	return errors.Join(errs...)
}

func (a *ArtifactsConfig) Validate() error {
	var errs []error

	if a.Scaler == "" {
		errs = append(errs, fmt.Errorf("scaler cannot be empty"))
	}
	if a.Classifier == "" {
		errs = append(errs, fmt.Errorf("classifier cannot be empty"))
	}

	format := inference.Format(a.Format)
	if !format.IsValid() {
		errs = append(errs, fmt.Errorf("invalid classifier_format: %s (valid: %s, %s)", a.Format, inference.FormatJSON, inference.FormatONNX))
	}
	if format == inference.FormatONNX && (a.ONNX.InputName == "" || a.ONNX.OutputName == "") {
		errs = append(errs, fmt.Errorf("onnx.input_name and onnx.output_name are required for onnx classifiers"))
	}

	return errors.Join(errs...)
}

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (b *BatchConfig) Validate() error {
	switch b.Sink {
	case "csv":
		return nil
	case "sqlite":
		if !tableNameRegex.MatchString(b.Table) {
			return fmt.Errorf("invalid table name: %q", b.Table)
		}
		return nil
	default:
		return fmt.Errorf("invalid sink: %s (valid: csv, sqlite)", b.Sink)
	}
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	if l.File.Path != "" {
		if l.File.MaxSizeMB < 1 {
			return fmt.Errorf("file.max_size_mb must be at least 1")
		}
		if l.File.MaxBackups < 0 || l.File.MaxAgeDays < 0 {
			return fmt.Errorf("file.max_backups and file.max_age_days must be non-negative")
		}
	}

	return nil
}

func (t *TracingConfig) Validate() error {
	if t.Enabled && t.ServiceName == "" {
		return fmt.Errorf("service_name cannot be empty when tracing is enabled")
	}
	return nil
}

func (m *MonitoringConfig) Validate() error {
	if m.IntervalMS < 100 {
		return fmt.Errorf("interval_ms must be at least 100, got %d", m.IntervalMS)
	}
	return nil
}

func (w *WatchConfig) Validate() error {
	if w.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be non-negative")
	}
	return nil
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

// validateDebugSecurity refuses debug or profiling endpoints that nothing
// protects.
func (c *Config) validateDebugSecurity() error {
	if !c.Debug.Enabled && !c.Server.Profiling.Enabled {
		return nil
	}
	if c.Debug.Auth.Token != "" || c.Auth.Enabled {
		return nil
	}
	return fmt.Errorf("debug and profiling endpoints require auth.enabled or debug.auth.token")
}
