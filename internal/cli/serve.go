package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/inference"
	"github.com/haskel/irisd/internal/monitor"
	"github.com/haskel/irisd/internal/pipeline"
	"github.com/haskel/irisd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the prediction server",
	Long: `Start the irisd HTTP server in foreground mode.

If the artifacts cannot be loaded the server still starts: /health reports
the failure and every prediction is refused until the process is restarted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}

	log, closeLog := newLogger(cfg)
	defer closeLog()

	log.Info("irisd starting",
		"version", Version,
		"config", cfgFile,
	)

	adapter, err := loadArtifacts(cfg.Artifacts, log)
	if err != nil {
		log.Error("failed to load artifacts, serving in degraded mode", "error", err)
		adapter = inference.Unavailable()
	}
	defer adapter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agg := monitor.NewAggregator(monitors(log), cfg.MonitoringInterval(), log)
	if err := agg.Start(ctx); err != nil {
		return fmt.Errorf("failed to start aggregator: %w", err)
	}

	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	srv := server.New(cfg, pipeline.NewPredictor(adapter, log), agg, log, Version)

	if cfg.Watch.Enabled && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, cfg.WatchDebounce(), srv.ReloadConfig, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
			log.Info("watching config file", "path", cfgFile)
		}
	}

	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Handle SIGHUP for hot-reload
	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading configuration")

				newCfg, err := loadConfig()
				if err != nil {
					log.Error("invalid configuration, reload aborted", "error", err)
					continue
				}

				srv.ReloadConfig(newCfg)
			case <-shutdownDone:
				return
			}
		}
	}()

	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}

		agg.Stop()
		cancel()
	}()

	log.Info("irisd ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("irisd stopped")
	return nil
}

func monitors(log *slog.Logger) []monitor.Monitor {
	list := []monitor.Monitor{monitor.NewHostMonitor()}

	pm, err := monitor.NewProcessMonitor()
	if err != nil {
		log.Warn("process monitor unavailable", "error", err)
		return list
	}
	return append(list, pm)
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", pid)), 0644)
}
