package cli

import (
	"log/slog"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/inference"
	"github.com/haskel/irisd/internal/logger"
	"github.com/haskel/irisd/internal/storage"
)

// loadConfig reads --config strictly. Without the flag the defaults apply.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	f := cfg.Logging.File
	log, closer := logger.NewWithFile(level, cfg.Logging.Format, logger.FileOptions{
		Path:       f.Path,
		MaxSizeMB:  f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAgeDays: f.MaxAgeDays,
		Compress:   f.Compress,
	})
	return log, func() { _ = closer.Close() }
}

func loaderOptions(a config.ArtifactsConfig) inference.Options {
	return inference.Options{
		Scaler:     a.Scaler,
		Classifier: a.Classifier,
		Format:     inference.Format(a.Format),
		ONNX: inference.ONNXConfig{
			SharedLibraryPath: a.ONNX.SharedLibrary,
			InputName:         a.ONNX.InputName,
			OutputName:        a.ONNX.OutputName,
		},
	}
}

// loadArtifacts reads the scaler and classifier named by a.
func loadArtifacts(a config.ArtifactsConfig, log *slog.Logger) (*inference.Adapter, error) {
	store := storage.NewArtifactStore(a.Dir, log)
	opts := loaderOptions(a)

	log.Info("loading artifacts",
		"scaler", store.Path(opts.Scaler),
		"classifier", store.Path(opts.Classifier),
		"format", opts.Format,
	)

	return inference.Load(store, opts)
}
