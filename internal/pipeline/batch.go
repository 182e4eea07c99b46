package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/inference"
)

var nan = math.NaN()

// ErrMissingColumns is returned when the input lacks a raw feature column.
var ErrMissingColumns = errors.New("input is missing required columns")

// ErrReservedColumns is returned when the input already carries an output column.
var ErrReservedColumns = errors.New("input already has prediction columns")

// BatchReport summarizes a finished batch run.
type BatchReport struct {
	Rows     int                      `json:"rows"`
	Outliers int                      `json:"outliers"`
	Counts   [features.NumClasses]int `json:"counts"`
	Output   string                   `json:"output"`
	Duration time.Duration            `json:"duration"`
}

// BatchRunner classifies whole tables with one adapter.
type BatchRunner struct {
	adapter *inference.Adapter
	logger  *slog.Logger
}

// NewBatchRunner creates a runner.
func NewBatchRunner(adapter *inference.Adapter, logger *slog.Logger) *BatchRunner {
	return &BatchRunner{
		adapter: adapter,
		logger:  logger,
	}
}

// Run reads input, predicts every row and hands the merged table to sink.
// Any failure aborts the run before sink is written.
func (b *BatchRunner) Run(ctx context.Context, input string, sink Sink) (*BatchReport, error) {
	start := time.Now()

	if !b.adapter.Loaded() {
		return nil, inference.ErrArtifactUnavailable
	}

	b.logger.Info("loading input data", "path", input)
	table, err := ReadTable(input)
	if err != nil {
		return nil, err
	}

	out, report, err := b.Process(ctx, table)
	if err != nil {
		return nil, err
	}

	if err := sink.Write(ctx, out); err != nil {
		return nil, fmt.Errorf("failed to write results: %w", err)
	}

	report.Output = sink.String()
	report.Duration = time.Since(start)

	b.logger.Info("results saved",
		"output", report.Output,
		"rows", report.Rows,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, nil
}

// Process predicts every row of table and returns the input columns with
// the prediction columns appended, rows in input order.
func (b *BatchRunner) Process(ctx context.Context, table *Table) (*Table, *BatchReport, error) {
	report := &BatchReport{}

	if reserved := table.ReservedColumns(); len(reserved) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrReservedColumns, strings.Join(reserved, ", "))
	}
	header := OutputHeader(table.Header)

	if table.Empty() {
		b.logger.Warn("input is empty, writing header only")
		return &Table{Header: header}, report, nil
	}

	if missing := table.MissingColumns(); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	b.logger.Info("input data loaded", "rows", table.Len())

	measurements, err := table.Measurements()
	if err != nil {
		return nil, nil, err
	}

	vectors := features.PreprocessBatch(measurements)
	report.Outliers = features.CountOutliers(vectors)
	b.logger.Info("outlier flags calculated", "marked", report.Outliers)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	scaled, err := b.adapter.Scale(features.Matrix(vectors))
	if err != nil {
		return nil, nil, err
	}

	classes, _, err := b.adapter.Classify(scaled)
	if err != nil {
		return nil, nil, err
	}
	if len(classes) != table.Len() {
		return nil, nil, &inference.InferenceError{
			Op:  "batch",
			Err: fmt.Errorf("got %d predictions for %d rows", len(classes), table.Len()),
		}
	}

	rows := make([][]string, table.Len())
	for i, row := range table.Rows {
		name, ok := features.ClassName(classes[i])
		if ok {
			report.Counts[classes[i]]++
		}
		merged := make([]string, 0, len(row)+2)
		merged = append(merged, row...)
		rows[i] = append(merged, strconv.Itoa(classes[i]), name)
	}
	report.Rows = len(rows)

	b.logger.Info("scaling and prediction complete", "rows", report.Rows)

	return &Table{Header: header, Rows: rows}, report, nil
}
