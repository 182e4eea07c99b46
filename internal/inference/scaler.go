package inference

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// KindStandardScaler identifies a StandardScaler artifact.
const KindStandardScaler = "standard_scaler"

// Scaler is a fitted linear transform.
type Scaler interface {
	// Dim returns the number of columns the scaler was fitted on.
	Dim() int
	// Transform scales rows without modifying them.
	Transform(rows [][]float64) ([][]float64, error)
}

// StandardScaler applies (x - mean) / scale per column.
type StandardScaler struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// NewStandardScaler creates a scaler from learned column statistics.
func NewStandardScaler(names []string, mean, scale []float64) (*StandardScaler, error) {
	s := &StandardScaler{
		Kind:         KindStandardScaler,
		FeatureNames: names,
		Mean:         mean,
		Scale:        scale,
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StandardScaler) check() error {
	if s.Kind != KindStandardScaler {
		return fmt.Errorf("unexpected scaler kind %q", s.Kind)
	}
	if len(s.Mean) == 0 {
		return fmt.Errorf("scaler has no columns")
	}
	if len(s.Scale) != len(s.Mean) {
		return fmt.Errorf("scaler has %d means but %d scales", len(s.Mean), len(s.Scale))
	}
	if len(s.FeatureNames) != 0 && len(s.FeatureNames) != len(s.Mean) {
		return fmt.Errorf("scaler has %d feature names but %d columns", len(s.FeatureNames), len(s.Mean))
	}
	for i, sc := range s.Scale {
		if sc == 0 || math.IsNaN(sc) || math.IsInf(sc, 0) {
			return fmt.Errorf("scaler column %d has invalid scale %v", i, sc)
		}
	}
	return nil
}

// Dim returns the fitted column count.
func (s *StandardScaler) Dim() int {
	return len(s.Mean)
}

// Transform returns scaled copies of rows.
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(s.Mean) {
			return nil, &ScalingError{Row: i, Expected: len(s.Mean), Got: len(row)}
		}
		scaled := make([]float64, len(row))
		for j, x := range row {
			if math.IsNaN(x) {
				return nil, &ScalingError{Row: i, Reason: fmt.Sprintf("missing value in column %d", j)}
			}
			scaled[j] = (x - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// Save serializes the scaler.
func (s *StandardScaler) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Load deserializes and checks the scaler.
func (s *StandardScaler) Load(r io.Reader) error {
	var loaded StandardScaler
	if err := json.NewDecoder(r).Decode(&loaded); err != nil {
		return fmt.Errorf("failed to decode scaler: %w", err)
	}
	if err := loaded.check(); err != nil {
		return err
	}
	*s = loaded
	return nil
}
