package server

import (
	"sync/atomic"

	"github.com/haskel/irisd/internal/features"
)

// Stats counts prediction traffic since start.
type Stats struct {
	requests     atomic.Uint64
	clientErrors atomic.Uint64
	serverErrors atomic.Uint64
	classes      [features.NumClasses]atomic.Uint64
	latencyMicro atomic.Uint64
}

func NewStats() *Stats {
	return &Stats{}
}

// StatsSnapshot is the JSON body of GET /stats.
type StatsSnapshot struct {
	Requests        uint64            `json:"requests"`
	Predictions     uint64            `json:"predictions"`
	ClientErrors    uint64            `json:"client_errors"`
	ServerErrors    uint64            `json:"server_errors"`
	Classes         map[string]uint64 `json:"classes"`
	AvgProcessingMS float64           `json:"avg_processing_time_ms"`
	ArtifactsLoaded bool              `json:"artifacts_loaded"`
	UptimeSeconds   int64             `json:"uptime_seconds"`
}

func (s *Stats) recordRequest() {
	s.requests.Add(1)
}

func (s *Stats) recordPrediction(class int, micros int64) {
	if class >= 0 && class < features.NumClasses {
		s.classes[class].Add(1)
	}
	if micros > 0 {
		s.latencyMicro.Add(uint64(micros))
	}
}

func (s *Stats) recordError(client bool) {
	if client {
		s.clientErrors.Add(1)
		return
	}
	s.serverErrors.Add(1)
}

// Snapshot reads the counters. Counters are read one by one, so a snapshot
// taken under load may be off by the requests in flight.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Requests:     s.requests.Load(),
		ClientErrors: s.clientErrors.Load(),
		ServerErrors: s.serverErrors.Load(),
		Classes:      make(map[string]uint64, features.NumClasses),
	}
	for i, name := range features.ClassNames {
		n := s.classes[i].Load()
		snap.Classes[name] = n
		snap.Predictions += n
	}
	if snap.Predictions > 0 {
		snap.AvgProcessingMS = float64(s.latencyMicro.Load()) / float64(snap.Predictions) / 1000
	}
	return snap
}
