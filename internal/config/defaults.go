package config

const defaultWatchDebounceMS = 250

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         5000,
			PIDFile:      "/var/run/irisd.pid",
			MaxBodyBytes: 64 * 1024,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 100,
				Burst:             200,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Artifacts: ArtifactsConfig{
			Dir:        "artifacts",
			Scaler:     "iris_scaler.json",
			Classifier: "iris_model.json",
			Format:     "json",
			ONNX: ONNXConfig{
				InputName:  "float_input",
				OutputName: "probabilities",
			},
		},
		Batch: BatchConfig{
			Sink:  "csv",
			Table: "predictions",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File: LogFileConfig{
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "irisd",
		},
		Monitoring: MonitoringConfig{
			IntervalMS: 2000,
		},
		Watch: WatchConfig{
			Enabled:    false,
			DebounceMS: defaultWatchDebounceMS,
		},
	}
}
