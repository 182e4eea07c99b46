package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/monitor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get server status and process resource usage",
	Long:  `Query the running irisd server for its artifact state and resource usage.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type serverStatus struct {
	Version         string                `json:"version"`
	ArtifactsLoaded bool                  `json:"artifacts_loaded"`
	Stats           serverStats           `json:"stats"`
	Process         *monitor.ProcessState `json:"process"`
	Host            *monitor.HostState    `json:"host"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	data, status, err := NewClient().Get("/status")
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, errorMessage(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var result serverStatus
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}

	fmt.Println("=== Server Status ===")
	fmt.Printf("Version:   %s\n", result.Version)
	fmt.Printf("Artifacts: %s\n", loadedLabel(result.ArtifactsLoaded))

	if p := result.Process; p != nil {
		fmt.Printf("\nProcess:\n")
		fmt.Printf("  PID:        %d\n", p.PID)
		fmt.Printf("  CPU:        %.1f%%\n", p.CPUPercent)
		fmt.Printf("  RSS:        %.1f MB\n", float64(p.RSSBytes)/1024/1024)
		fmt.Printf("  Threads:    %d\n", p.Threads)
		fmt.Printf("  Goroutines: %d\n", p.Goroutines)
	}

	if h := result.Host; h != nil {
		fmt.Printf("\nHost:\n")
		fmt.Printf("  Memory: %.1f%% of %.1f GB\n", h.MemoryUsagePercent, float64(h.MemoryTotalBytes)/1024/1024/1024)
		fmt.Printf("  CPUs:   %d, load %.2f\n", h.CPUs, h.Load1)
	}

	return nil
}

func loadedLabel(loaded bool) string {
	if loaded {
		return "loaded"
	}
	return "NOT LOADED"
}
