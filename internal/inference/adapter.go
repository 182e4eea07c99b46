// Package inference wraps a fitted scaler and classifier behind a two-step
// scale/classify contract.
package inference

import (
	"fmt"
	"math"
)

// Adapter holds the loaded artifacts. It is immutable after construction and
// safe for concurrent use.
type Adapter struct {
	scaler     Scaler
	classifier Classifier
}

// NewAdapter creates an adapter. A nil scaler or classifier yields an adapter
// that fails every call with ErrArtifactUnavailable.
func NewAdapter(scaler Scaler, classifier Classifier) *Adapter {
	return &Adapter{
		scaler:     scaler,
		classifier: classifier,
	}
}

// Unavailable returns an adapter with no artifacts.
func Unavailable() *Adapter {
	return &Adapter{}
}

// Loaded reports whether both artifacts are present.
func (a *Adapter) Loaded() bool {
	return a != nil && a.scaler != nil && a.classifier != nil
}

// Scale applies the fitted scaler.
func (a *Adapter) Scale(rows [][]float64) ([][]float64, error) {
	if !a.Loaded() {
		return nil, ErrArtifactUnavailable
	}
	return a.scaler.Transform(rows)
}

// Classify returns one class index and one probability distribution per row.
func (a *Adapter) Classify(scaled [][]float64) ([]int, [][]float64, error) {
	if !a.Loaded() {
		return nil, nil, ErrArtifactUnavailable
	}

	dim := a.classifier.Dim()
	for i, row := range scaled {
		if len(row) != dim {
			return nil, nil, dimensionError("classify", i, dim, len(row))
		}
		for _, x := range row {
			if math.IsNaN(x) {
				return nil, nil, &InferenceError{Op: "classify", Err: fmt.Errorf("row %d contains a missing value", i)}
			}
		}
	}

	probs, err := a.classifier.PredictProba(scaled)
	if err != nil {
		return nil, nil, err
	}
	if len(probs) != len(scaled) {
		return nil, nil, &InferenceError{
			Op:  "classify",
			Err: fmt.Errorf("classifier returned %d results for %d rows", len(probs), len(scaled)),
		}
	}

	classes := a.classifier.Classes()
	indices := make([]int, len(probs))
	for i, p := range probs {
		if len(p) != len(classes) {
			return nil, nil, &InferenceError{
				Op:  "classify",
				Err: fmt.Errorf("row %d: expected %d probabilities, got %d", i, len(classes), len(p)),
			}
		}
		indices[i] = classes[argmax(p)]
	}

	return indices, probs, nil
}

// Dims returns the scaler and classifier input widths, or zeros when the
// artifacts are not loaded.
func (a *Adapter) Dims() (scaler, classifier int) {
	if !a.Loaded() {
		return 0, 0
	}
	return a.scaler.Dim(), a.classifier.Dim()
}

// Close releases classifier resources that need explicit cleanup.
func (a *Adapter) Close() {
	if a == nil {
		return
	}
	if c, ok := a.classifier.(interface{ Close() }); ok {
		c.Close()
	}
}
