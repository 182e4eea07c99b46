package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/inference/inferencetest"
	"github.com/haskel/irisd/internal/pipeline"
)

const batchInputCSV = `sepal length (cm),sepal width (cm),petal length (cm),petal width (cm)
5.1,3.5,1.4,0.2
6.2,2.8,4.7,1.3
7.3,2.9,6.3,1.8
`

func resetBatchFlags() {
	batchInput, batchOutput, batchScaler, batchModel, batchSink, batchTable = "", "", "", "", "", ""
	cfgFile = ""
}

func TestRunBatch(t *testing.T) {
	defer resetBatchFlags()

	store := inferencetest.Store(t)
	dir := t.TempDir()

	batchInput = filepath.Join(dir, "in.csv")
	if err := os.WriteFile(batchInput, []byte(batchInputCSV), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	batchOutput = filepath.Join(dir, "out", "predictions.csv")
	batchScaler = store.Path(inferencetest.ScalerFile)
	batchModel = store.Path(inferencetest.ClassifierFile)

	if err := runBatch(batchCmd, nil); err != nil {
		t.Fatalf("runBatch error: %v", err)
	}

	out, err := pipeline.ReadTable(batchOutput)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if out.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.Len())
	}
	for i, want := range []string{"setosa", "versicolor", "virginica"} {
		if got := out.Rows[i][len(out.Header)-1]; got != want {
			t.Errorf("row %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestRunBatch_MissingArtifacts(t *testing.T) {
	defer resetBatchFlags()

	dir := t.TempDir()
	batchInput = filepath.Join(dir, "in.csv")
	_ = os.WriteFile(batchInput, []byte(batchInputCSV), 0644)
	batchOutput = filepath.Join(dir, "out.csv")
	batchScaler = filepath.Join(dir, "nope.json")
	batchModel = filepath.Join(dir, "nope.json")

	if err := runBatch(batchCmd, nil); err == nil {
		t.Fatal("expected error for missing artifacts")
	}
	if _, err := os.Stat(batchOutput); !os.IsNotExist(err) {
		t.Error("no output must be written on failure")
	}
}

func TestNewSink(t *testing.T) {
	defer resetBatchFlags()

	sink, err := newSink(config.BatchConfig{Sink: "csv"}, "out.csv")
	if err != nil {
		t.Fatalf("newSink error: %v", err)
	}
	if _, ok := sink.(*pipeline.CSVSink); !ok {
		t.Errorf("expected CSV sink, got %T", sink)
	}

	batchSink = "sqlite"
	batchTable = "runs"
	sink, err = newSink(config.BatchConfig{Sink: "csv", Table: "predictions"}, "out.db")
	if err != nil {
		t.Fatalf("newSink error: %v", err)
	}
	sq, ok := sink.(*pipeline.SQLiteSink)
	if !ok || sq.Table != "runs" || sq.Path != "out.db" {
		t.Errorf("unexpected sink %#v", sink)
	}

	batchTable = "bad name"
	if _, err := newSink(config.BatchConfig{}, "out.db"); err == nil {
		t.Error("expected error for invalid table")
	}

	batchSink = "parquet"
	if _, err := newSink(config.BatchConfig{}, "out"); err == nil {
		t.Error("expected error for unknown sink")
	}
}

func TestPathFlag(t *testing.T) {
	got, err := pathFlag("", "iris_scaler.json")
	if err != nil || got != "iris_scaler.json" {
		t.Errorf("expected fallback, got %q, %v", got, err)
	}

	got, err = pathFlag("models/s.json", "iris_scaler.json")
	if err != nil || !filepath.IsAbs(got) || !strings.HasSuffix(got, filepath.Join("models", "s.json")) {
		t.Errorf("expected absolute path, got %q, %v", got, err)
	}
}

func TestReadPIDFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.pid")
	_ = os.WriteFile(good, []byte("1234\n"), 0644)
	if pid, err := readPIDFile(good); err != nil || pid != 1234 {
		t.Errorf("expected 1234, got %d, %v", pid, err)
	}

	bad := filepath.Join(dir, "bad.pid")
	_ = os.WriteFile(bad, []byte("abc"), 0644)
	if _, err := readPIDFile(bad); err == nil {
		t.Error("expected error for invalid PID")
	}

	if _, err := readPIDFile(filepath.Join(dir, "missing.pid")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	defer func() { cfgFile = "" }()

	cfgFile = ""
	cfg, err := loadConfig()
	if err != nil || cfg.Server.Port != 5000 {
		t.Errorf("expected defaults, got %v, %v", cfg, err)
	}

	cfgFile = filepath.Join(t.TempDir(), "irisd.yaml")
	_ = os.WriteFile(cfgFile, []byte("server:\n  prot: 1\n"), 0644)
	if _, err := loadConfig(); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestPredictBody(t *testing.T) {
	defer func() {
		predictData, predictFile = "", ""
		predictValues = [features.NumRaw]float64{}
	}()

	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(predictCmd.Flags())

	if _, err := predictBody(cmd); err == nil {
		t.Error("expected error without measurements")
	}

	for _, arg := range []string{"--sepal-length=5.1", "--petal-width=0.2"} {
		if err := cmd.Flags().Parse([]string{arg}); err != nil {
			t.Fatalf("parse %s: %v", arg, err)
		}
	}

	body, err := predictBody(cmd)
	if err != nil {
		t.Fatalf("predictBody error: %v", err)
	}
	var record map[string]float64
	if err := json.Unmarshal(body, &record); err != nil {
		t.Fatalf("invalid body %s: %v", body, err)
	}
	if len(record) != 2 || record[features.SepalLength] != 5.1 || record[features.PetalWidth] != 0.2 {
		t.Errorf("unexpected record %v", record)
	}

	predictData = `{"a": 1}`
	if body, _ := predictBody(cmd); string(body) != predictData {
		t.Errorf("expected raw data, got %s", body)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := map[string]string{
		`{"error": "invalid input data format"}`:   "invalid input data format",
		`{"status": "error", "message": "failed"}`: "failed",
		"plain text\n":                             "plain text",
	}
	for body, want := range tests {
		if got := errorMessage([]byte(body)); got != want {
			t.Errorf("errorMessage(%q) = %q, want %q", body, got, want)
		}
	}
}

func TestClientHealth(t *testing.T) {
	status := http.StatusOK
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status":"error","message":"artifacts failed to load"}`))
	}))
	defer ts.Close()

	c := NewClient()
	c.baseURL = ts.URL

	if err := c.Health(); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}

	status = http.StatusInternalServerError
	err := c.Health()
	if err == nil || !strings.Contains(err.Error(), "artifacts failed to load") {
		t.Errorf("expected health error with message, got %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "batch", "predict", "health", "stats", "status", "config", "stop", "reload", "tui"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %s not registered", name)
		}
	}
}
