package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/features"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get prediction counters from the server",
	Long: `Query the irisd server for request, error and per-class prediction
counters since it started.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type serverStats struct {
	Requests        uint64            `json:"requests"`
	Predictions     uint64            `json:"predictions"`
	ClientErrors    uint64            `json:"client_errors"`
	ServerErrors    uint64            `json:"server_errors"`
	Classes         map[string]uint64 `json:"classes"`
	AvgProcessingMS float64           `json:"avg_processing_time_ms"`
	ArtifactsLoaded bool              `json:"artifacts_loaded"`
	UptimeSeconds   int64             `json:"uptime_seconds"`
}

func runStats(cmd *cobra.Command, args []string) error {
	data, status, err := NewClient().Get("/stats")
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, errorMessage(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var stats serverStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return err
	}
	printStats(&stats)

	return nil
}

func printStats(stats *serverStats) {
	fmt.Printf("=== Prediction Statistics ===\n")
	fmt.Printf("Artifacts loaded: %t\n", stats.ArtifactsLoaded)
	fmt.Printf("Uptime:           %ds\n", stats.UptimeSeconds)
	fmt.Printf("Requests:         %d\n", stats.Requests)
	fmt.Printf("Predictions:      %d\n", stats.Predictions)
	fmt.Printf("Client errors:    %d\n", stats.ClientErrors)
	fmt.Printf("Server errors:    %d\n", stats.ServerErrors)
	fmt.Printf("Avg time:         %.3f ms\n", stats.AvgProcessingMS)

	fmt.Printf("\nBy class:\n")
	for _, name := range features.ClassNames {
		fmt.Printf("  %-10s %d\n", name, stats.Classes[name])
	}
}
