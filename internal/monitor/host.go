package monitor

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostMonitor reports host memory and load.
type HostMonitor struct{}

func NewHostMonitor() *HostMonitor {
	return &HostMonitor{}
}

func (m *HostMonitor) Name() string {
	return "host"
}

func (m *HostMonitor) Collect() (any, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}

	state := &HostState{
		MemoryUsedBytes:    v.Used,
		MemoryTotalBytes:   v.Total,
		MemoryUsagePercent: v.UsedPercent,
	}

	if n, err := cpu.Counts(true); err == nil {
		state.CPUs = n
	}

	// Load average is not available everywhere.
	if avg, err := load.Avg(); err == nil {
		state.Load1 = avg.Load1
	}

	return state, nil
}
