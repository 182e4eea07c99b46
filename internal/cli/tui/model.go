package tui

import (
	"time"
)

// Config holds TUI configuration
type Config struct {
	ServerURL       string
	RefreshInterval time.Duration
	User            string
	Password        string
}

// Model represents the TUI state
type Model struct {
	config Config

	// Data from API
	health *HealthData
	stats  *StatsData
	status *StatusData

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time
}

// HealthData is the body of /health. A 500 still carries a body, so it is
// decoded rather than treated as a transport error.
type HealthData struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatsData represents prediction counters from /stats
type StatsData struct {
	Requests        uint64            `json:"requests"`
	Predictions     uint64            `json:"predictions"`
	ClientErrors    uint64            `json:"client_errors"`
	ServerErrors    uint64            `json:"server_errors"`
	Classes         map[string]uint64 `json:"classes"`
	AvgProcessingMS float64           `json:"avg_processing_time_ms"`
	UptimeSeconds   int64             `json:"uptime_seconds"`
}

// StatusData represents process and host usage from /status
type StatusData struct {
	Version string         `json:"version"`
	Process *ProcessStatus `json:"process"`
	Host    *HostStatus    `json:"host"`
}

type ProcessStatus struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
	Goroutines int     `json:"goroutines"`
}

type HostStatus struct {
	MemoryUsagePercent float64 `json:"memory_usage_percent"`
	MemoryTotalBytes   uint64  `json:"memory_total_bytes"`
	CPUs               int     `json:"cpus"`
	Load1              float64 `json:"load1"`
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	return Model{
		config:  cfg,
		loading: true,
	}
}
