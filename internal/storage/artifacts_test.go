package storage

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// mockArtifact for testing
type mockArtifact struct {
	Data  string `json:"data"`
	Value int    `json:"value"`
}

func (m *mockArtifact) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(m)
}

func (m *mockArtifact) Load(r io.Reader) error {
	return json.NewDecoder(r).Decode(m)
}

type failingArtifact struct{}

func (failingArtifact) Save(w io.Writer) error {
	return errors.New("boom")
}

func testStore(t *testing.T) *ArtifactStore {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewArtifactStore(t.TempDir(), logger)
}

func TestArtifactStore_SaveLoad(t *testing.T) {
	store := testStore(t)

	if store.Exists("scaler.json") {
		t.Error("expected artifact to not exist initially")
	}

	original := &mockArtifact{Data: "test data", Value: 42}
	if err := store.Save("scaler.json", original); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if !store.Exists("scaler.json") {
		t.Error("expected artifact to exist after save")
	}

	loaded := &mockArtifact{}
	if err := store.Load("scaler.json", loaded); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if loaded.Data != original.Data {
		t.Errorf("expected Data '%s', got '%s'", original.Data, loaded.Data)
	}
	if loaded.Value != original.Value {
		t.Errorf("expected Value %d, got %d", original.Value, loaded.Value)
	}
}

func TestArtifactStore_LoadMissing(t *testing.T) {
	store := testStore(t)

	err := store.Load("missing.json", &mockArtifact{})
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestArtifactStore_LoadCorrupt(t *testing.T) {
	store := testStore(t)

	if err := os.WriteFile(store.Path("bad.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := store.Load("bad.json", &mockArtifact{}); err == nil {
		t.Error("expected error for corrupt artifact")
	}
}

func TestArtifactStore_Path(t *testing.T) {
	store := NewArtifactStore("/var/lib/irisd", slog.New(slog.NewTextHandler(io.Discard, nil)))

	if got := store.Path("model.json"); got != filepath.Join("/var/lib/irisd", "model.json") {
		t.Errorf("unexpected relative resolution: %s", got)
	}
	if got := store.Path("/tmp/model.json"); got != "/tmp/model.json" {
		t.Errorf("absolute path should be kept, got %s", got)
	}

	bare := NewArtifactStore("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if got := bare.Path("model.json"); got != "model.json" {
		t.Errorf("expected name unchanged without dir, got %s", got)
	}
}

func TestArtifactStore_Info(t *testing.T) {
	store := testStore(t)

	info := store.Info("model.json")
	if info.Exists {
		t.Error("expected artifact to not exist")
	}

	if err := store.Save("model.json", &mockArtifact{Data: "test", Value: 123}); err != nil {
		t.Fatalf("failed to save artifact: %v", err)
	}

	info = store.Info("model.json")
	if !info.Exists {
		t.Error("expected artifact to exist")
	}
	if info.Size == 0 {
		t.Error("expected non-zero size")
	}
	if info.UpdatedAt.IsZero() {
		t.Error("expected non-zero UpdatedAt")
	}
}

func TestArtifactStore_AtomicWrite(t *testing.T) {
	store := testStore(t)

	for i := 0; i < 5; i++ {
		if err := store.Save("model.json", &mockArtifact{Data: "test", Value: i}); err != nil {
			t.Fatalf("Save iteration %d error: %v", i, err)
		}
	}

	loaded := &mockArtifact{}
	if err := store.Load("model.json", loaded); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if loaded.Value != 4 {
		t.Errorf("expected Value 4, got %d", loaded.Value)
	}
}

func TestArtifactStore_FailedSaveKeepsPrevious(t *testing.T) {
	store := testStore(t)

	if err := store.Save("model.json", &mockArtifact{Data: "keep", Value: 1}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if err := store.Save("model.json", failingArtifact{}); err == nil {
		t.Fatal("expected save error")
	}

	loaded := &mockArtifact{}
	if err := store.Load("model.json", loaded); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Data != "keep" {
		t.Errorf("expected previous artifact to survive, got %q", loaded.Data)
	}

	if _, err := os.Stat(store.Path("model.json") + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be removed after failed save")
	}
}

func TestWriteAtomic_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	err := WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != "a,b\n" {
		t.Errorf("unexpected content %q", data)
	}
}
