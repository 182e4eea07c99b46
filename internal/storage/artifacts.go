package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ErrArtifactNotFound is returned when an artifact file does not exist.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore reads and writes fitted artifacts. Relative names are
// resolved against the store directory; absolute paths are used as given.
type ArtifactStore struct {
	dir    string
	logger *slog.Logger
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string, logger *slog.Logger) *ArtifactStore {
	return &ArtifactStore{dir: dir, logger: logger}
}

// Saveable is an interface for objects that can be saved.
type Saveable interface {
	Save(w io.Writer) error
}

// Loadable is an interface for objects that can be loaded.
type Loadable interface {
	Load(r io.Reader) error
}

// Path resolves an artifact name to a file path.
func (s *ArtifactStore) Path(name string) string {
	if filepath.IsAbs(name) || s.dir == "" {
		return name
	}
	return filepath.Join(s.dir, name)
}

// Save writes an artifact atomically.
func (s *ArtifactStore) Save(name string, artifact Saveable) error {
	filePath := s.Path(name)

	if err := WriteAtomic(filePath, artifact.Save); err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}

	s.logger.Debug("saved artifact to disk", "path", filePath)
	return nil
}

// Load reads an artifact. A missing file is an error: there is no fresh
// state to fall back to.
func (s *ArtifactStore) Load(name string, artifact Loadable) error {
	filePath := s.Path(name)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, filePath)
		}
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	if err := artifact.Load(file); err != nil {
		return fmt.Errorf("failed to load artifact %s: %w", filePath, err)
	}

	s.logger.Info("loaded artifact from disk", "path", filePath)
	return nil
}

// Exists returns whether an artifact file exists.
func (s *ArtifactStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// ArtifactInfo describes an artifact file.
type ArtifactInfo struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Info returns information about an artifact file.
func (s *ArtifactStore) Info(name string) ArtifactInfo {
	filePath := s.Path(name)
	info := ArtifactInfo{
		Path: filePath,
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return info
	}

	info.Exists = true
	info.Size = stat.Size()
	info.UpdatedAt = stat.ModTime()
	return info
}

// WriteAtomic writes to a temp file next to path and renames it into place,
// creating the parent directory when needed. On failure path is untouched.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
