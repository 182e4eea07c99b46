package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Aggregator samples its monitors on an interval and keeps the latest
// Status for readers.
type Aggregator struct {
	monitors []Monitor
	state    Status
	interval time.Duration
	mu       sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

func NewAggregator(monitors []Monitor, interval time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		monitors: monitors,
		interval: interval,
		done:     make(chan struct{}),
		logger:   logger,
	}
}

func (a *Aggregator) Start(ctx context.Context) error {
	// Initial collection
	a.collect()

	go a.runLoop(ctx)

	a.logger.Info("aggregator started", "interval", a.interval, "monitors", len(a.monitors))
	return nil
}

// Stop ends the sampling loop. It may be called more than once.
func (a *Aggregator) Stop() error {
	a.stopOnce.Do(func() {
		close(a.done)
		a.logger.Info("aggregator stopped")
	})
	return nil
}

// Status returns the latest sample.
func (a *Aggregator) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Aggregator) runLoop(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.collect()
		case <-ctx.Done():
			return
		case <-a.done:
			return
		}
	}
}

func (a *Aggregator) collect() {
	a.mu.RLock()
	next := a.state
	a.mu.RUnlock()

	next.Timestamp = time.Now()

	for _, m := range a.monitors {
		data, err := m.Collect()
		if err != nil {
			a.logger.Warn("monitor collection failed",
				"monitor", m.Name(),
				"error", err,
			)
			continue
		}

		switch state := data.(type) {
		case *ProcessState:
			next.Process = *state
		case *HostState:
			next.Host = *state
		default:
			a.logger.Debug("ignoring monitor output", "monitor", m.Name())
		}
	}

	a.mu.Lock()
	a.state = next
	a.mu.Unlock()
}
