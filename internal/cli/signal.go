package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// signalServer sends sig to the process recorded in the PID file. An
// explicit --pid-file wins over the config.
func signalServer(sig syscall.Signal) (int, error) {
	pidPath := pidFile
	if pidPath == "" {
		cfg, err := loadConfig()
		if err != nil {
			return 0, fmt.Errorf("failed to load config: %w", err)
		}
		pidPath = cfg.Server.PIDFile
	}

	if pidPath == "" {
		return 0, fmt.Errorf("no PID file specified (use --pid-file or configure in config)")
	}

	pid, err := readPIDFile(pidPath)
	if err != nil {
		return 0, err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("process not found: %d", pid)
	}

	if err := process.Signal(sig); err != nil {
		return 0, fmt.Errorf("failed to send signal: %w", err)
	}

	return pid, nil
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("PID file not found: %s (server may not be running)", path)
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in file: %s", pidStr)
	}
	return pid, nil
}
