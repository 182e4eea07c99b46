package inference

import (
	"fmt"

	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/storage"
)

// Format selects how the classifier artifact is read.
type Format string

const (
	FormatJSON Format = "json"
	FormatONNX Format = "onnx"
)

// IsValid checks if the format is supported.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatONNX:
		return true
	}
	return false
}

// Options names the artifacts to load.
type Options struct {
	Scaler     string
	Classifier string
	Format     Format
	ONNX       ONNXConfig
}

// Load reads the scaler and classifier from store and checks that both match
// the model input layout.
func Load(store *storage.ArtifactStore, opts Options) (*Adapter, error) {
	scaler := &StandardScaler{}
	if err := store.Load(opts.Scaler, scaler); err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}

	if err := checkLayout(scaler); err != nil {
		return nil, err
	}

	var classifier Classifier
	switch opts.Format {
	case FormatJSON, "":
		lr := &LogisticRegression{}
		if err := store.Load(opts.Classifier, lr); err != nil {
			return nil, fmt.Errorf("classifier: %w", err)
		}
		classifier = lr

	case FormatONNX:
		path := store.Path(opts.Classifier)
		if !store.Exists(opts.Classifier) {
			return nil, fmt.Errorf("classifier: %w: %s", storage.ErrArtifactNotFound, path)
		}
		cfg := opts.ONNX
		if cfg.NumFeatures == 0 {
			cfg.NumFeatures = features.NumColumns
		}
		if cfg.NumClasses == 0 {
			cfg.NumClasses = features.NumClasses
		}
		onnx, err := NewONNXClassifier(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("classifier: %w", err)
		}
		classifier = onnx

	default:
		return nil, fmt.Errorf("unknown classifier format: %s", opts.Format)
	}

	if classifier.Dim() != scaler.Dim() {
		adapter := NewAdapter(scaler, classifier)
		adapter.Close()
		return nil, fmt.Errorf("classifier expects %d columns but scaler produces %d", classifier.Dim(), scaler.Dim())
	}

	return NewAdapter(scaler, classifier), nil
}

// checkLayout rejects a scaler fitted on a different column layout.
func checkLayout(s *StandardScaler) error {
	if s.Dim() != features.NumColumns {
		return fmt.Errorf("scaler fitted on %d columns, expected %d", s.Dim(), features.NumColumns)
	}
	if len(s.FeatureNames) == 0 {
		return nil
	}
	for i, name := range features.Columns {
		if s.FeatureNames[i] != name {
			return fmt.Errorf("scaler column %d is %q, expected %q", i, s.FeatureNames[i], name)
		}
	}
	return nil
}
