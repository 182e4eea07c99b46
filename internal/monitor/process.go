package monitor

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessMonitor reports the resource usage of one process, by default the
// current one. CPU percent is measured between consecutive calls, so the
// first sample reads zero.
type ProcessMonitor struct {
	mu   sync.Mutex
	proc *process.Process
	self bool
}

func NewProcessMonitor() (*ProcessMonitor, error) {
	return NewProcessMonitorFor(int32(os.Getpid()))
}

// NewProcessMonitorFor watches pid. Goroutines are only reported for the
// current process.
func NewProcessMonitorFor(pid int32) (*ProcessMonitor, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	m := &ProcessMonitor{
		proc: proc,
		self: pid == int32(os.Getpid()),
	}

	// Prime the CPU counter.
	_, _ = proc.Percent(0)

	return m, nil
}

func (m *ProcessMonitor) Name() string {
	return "process"
}

func (m *ProcessMonitor) Collect() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	memInfo, err := m.proc.MemoryInfo()
	if err != nil {
		return nil, err
	}

	state := &ProcessState{
		PID:      m.proc.Pid,
		RSSBytes: memInfo.RSS,
		VMSBytes: memInfo.VMS,
	}

	if pct, err := m.proc.Percent(0); err == nil {
		state.CPUPercent = pct
	}

	if threads, err := m.proc.NumThreads(); err == nil {
		state.Threads = threads
	}

	if created, err := m.proc.CreateTime(); err == nil && created > 0 {
		state.UptimeSeconds = time.Since(time.UnixMilli(created)).Seconds()
	}

	if m.self {
		state.Goroutines = runtime.NumGoroutine()
	}

	return state, nil
}
