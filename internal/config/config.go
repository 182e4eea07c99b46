package config

import "time"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Batch      BatchConfig      `yaml:"batch"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Watch      WatchConfig      `yaml:"watch"`
	Debug      DebugConfig      `yaml:"debug"`
}

// DebugConfig holds debug mode configuration.
type DebugConfig struct {
	// Enabled exposes /debug/status.
	Enabled bool `yaml:"enabled"`
	// Auth holds debug-specific authentication.
	// If set, debug endpoints require this token.
	// If not set but main auth is enabled, main auth is used.
	Auth DebugAuthConfig `yaml:"auth"`
}

// DebugAuthConfig holds debug endpoint authentication.
type DebugAuthConfig struct {
	// Token for Bearer authentication on debug endpoints.
	// If empty, falls back to main auth.
	Token string `yaml:"token"`
}

type ServerConfig struct {
	Host         string          `yaml:"host"`
	Port         int             `yaml:"port"`
	PIDFile      string          `yaml:"pid_file"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
	Profiling    ProfilingConfig `yaml:"profiling"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type ProfilingConfig struct {
	Enabled bool `yaml:"enabled"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ArtifactsConfig locates the fitted scaler and classifier. Relative paths
// are resolved against Dir.
type ArtifactsConfig struct {
	Dir        string     `yaml:"dir"`
	Scaler     string     `yaml:"scaler"`
	Classifier string     `yaml:"classifier"`
	Format     string     `yaml:"classifier_format"`
	ONNX       ONNXConfig `yaml:"onnx"`
}

type ONNXConfig struct {
	SharedLibrary string `yaml:"shared_library"`
	InputName     string `yaml:"input_name"`
	OutputName    string `yaml:"output_name"`
}

// BatchConfig selects where batch results go.
type BatchConfig struct {
	// Sink is csv or sqlite.
	Sink  string `yaml:"sink"`
	Table string `yaml:"table"`
}

type LoggingConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   LogFileConfig `yaml:"file"`
}

// LogFileConfig enables a rotated log file next to stdout.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// MonitoringConfig sets how often process and host usage is sampled.
type MonitoringConfig struct {
	IntervalMS int `yaml:"interval_ms"`
}

// WatchConfig reloads runtime settings when the config file changes.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

func (c *Config) MonitoringInterval() time.Duration {
	return time.Duration(c.Monitoring.IntervalMS) * time.Millisecond
}

func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
