package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify every row of a CSV file",
	Long: `Read a CSV file with the four measurement columns, predict a class for
every row and write the input columns plus prediction and
prediction_class_name to the output.

Nothing is written when any row fails; the run exits with status 1.

Examples:
  irisd batch --input flowers.csv --output predictions.csv
  irisd batch --input flowers.csv --scaler s.json --model m.json --output out.csv
  irisd batch --input flowers.csv --sink sqlite --output runs.db --table predictions`,
	RunE: runBatch,
}

var (
	batchInput  string
	batchOutput string
	batchScaler string
	batchModel  string
	batchSink   string
	batchTable  string
)

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "input CSV file")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output CSV file or SQLite database")
	batchCmd.Flags().StringVar(&batchScaler, "scaler", "", "scaler artifact (overrides config)")
	batchCmd.Flags().StringVar(&batchModel, "model", "", "classifier artifact (overrides config)")
	batchCmd.Flags().StringVar(&batchSink, "sink", "", "output sink: csv or sqlite (overrides config)")
	batchCmd.Flags().StringVar(&batchTable, "table", "", "SQLite table name (overrides config)")
	_ = batchCmd.MarkFlagRequired("input")
	_ = batchCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	artifacts := cfg.Artifacts
	// Artifact flags are paths from the working directory, not names inside
	// the artifact dir.
	if artifacts.Scaler, err = pathFlag(batchScaler, artifacts.Scaler); err != nil {
		return err
	}
	if artifacts.Classifier, err = pathFlag(batchModel, artifacts.Classifier); err != nil {
		return err
	}

	sink, err := newSink(cfg.Batch, batchOutput)
	if err != nil {
		return err
	}

	log, closeLog := newLogger(cfg)
	defer closeLog()

	adapter, err := loadArtifacts(artifacts, log)
	if err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}
	defer adapter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.NewBatchRunner(adapter, log).Run(ctx, batchInput, sink)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if jsonOut {
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Predicted %d rows in %s\n", report.Rows, report.Duration)
	fmt.Printf("Output: %s\n", report.Output)
	fmt.Printf("Outliers marked: %d\n", report.Outliers)
	for i, n := range report.Counts {
		fmt.Printf("  %-10s %d\n", features.ClassNames[i], n)
	}

	return nil
}

func pathFlag(flag, fallback string) (string, error) {
	if flag == "" {
		return fallback, nil
	}
	return filepath.Abs(flag)
}

func newSink(b config.BatchConfig, output string) (pipeline.Sink, error) {
	kind := b.Sink
	if batchSink != "" {
		kind = batchSink
	}
	table := b.Table
	if batchTable != "" {
		table = batchTable
	}

	switch kind {
	case "csv", "":
		return &pipeline.CSVSink{Path: output}, nil
	case "sqlite":
		if !pipeline.ValidTableName(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
		return &pipeline.SQLiteSink{Path: output, Table: table}, nil
	default:
		return nil, fmt.Errorf("unknown sink %q (use csv or sqlite)", kind)
	}
}
