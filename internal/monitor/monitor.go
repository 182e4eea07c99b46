// Package monitor samples resource usage of the serving process and its
// host for the status endpoint.
package monitor

import "time"

type Monitor interface {
	Name() string
	Collect() (any, error)
}

// ProcessState describes the irisd process itself.
type ProcessState struct {
	PID           int32   `json:"pid"`
	RSSBytes      uint64  `json:"rss_bytes"`
	VMSBytes      uint64  `json:"vms_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	Threads       int32   `json:"threads"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// HostState describes the machine the process runs on.
type HostState struct {
	MemoryUsedBytes    uint64  `json:"memory_used_bytes"`
	MemoryTotalBytes   uint64  `json:"memory_total_bytes"`
	MemoryUsagePercent float64 `json:"memory_usage_percent"`
	CPUs               int     `json:"cpus"`
	Load1              float64 `json:"load1"`
}

// Status is one sample of every monitor.
type Status struct {
	Process   ProcessState `json:"process"`
	Host      HostState    `json:"host"`
	Timestamp time.Time    `json:"timestamp"`
}
