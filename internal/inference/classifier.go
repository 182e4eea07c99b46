package inference

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// KindLogisticRegression identifies a LogisticRegression artifact.
const KindLogisticRegression = "logistic_regression"

// Classifier is a fitted probabilistic classifier.
type Classifier interface {
	// Dim returns the number of input columns.
	Dim() int
	// Classes returns the class index for each probability position.
	Classes() []int
	// PredictProba returns one probability distribution per row.
	PredictProba(rows [][]float64) ([][]float64, error)
}

// LogisticRegression is a multinomial logistic regression:
// p = softmax(coef · x + intercept).
type LogisticRegression struct {
	Kind      string      `json:"kind"`
	Labels    []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// NewLogisticRegression creates a classifier from fitted weights.
func NewLogisticRegression(classes []int, coef [][]float64, intercept []float64) (*LogisticRegression, error) {
	m := &LogisticRegression{
		Kind:      KindLogisticRegression,
		Labels:    classes,
		Coef:      coef,
		Intercept: intercept,
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LogisticRegression) check() error {
	if m.Kind != KindLogisticRegression {
		return fmt.Errorf("unexpected classifier kind %q", m.Kind)
	}
	if len(m.Labels) < 2 {
		return fmt.Errorf("classifier needs at least 2 classes, got %d", len(m.Labels))
	}
	if len(m.Coef) != len(m.Labels) || len(m.Intercept) != len(m.Labels) {
		return fmt.Errorf("classifier has %d classes, %d coefficient rows and %d intercepts",
			len(m.Labels), len(m.Coef), len(m.Intercept))
	}
	dim := len(m.Coef[0])
	if dim == 0 {
		return fmt.Errorf("classifier has no input columns")
	}
	for i, row := range m.Coef {
		if len(row) != dim {
			return fmt.Errorf("coefficient row %d has %d columns, expected %d", i, len(row), dim)
		}
	}
	return nil
}

// Dim returns the input column count.
func (m *LogisticRegression) Dim() int {
	return len(m.Coef[0])
}

// Classes returns the fitted class indices.
func (m *LogisticRegression) Classes() []int {
	return m.Labels
}

// PredictProba computes softmax probabilities for each row.
func (m *LogisticRegression) PredictProba(rows [][]float64) ([][]float64, error) {
	dim := m.Dim()
	out := make([][]float64, len(rows))

	for i, row := range rows {
		if len(row) != dim {
			return nil, dimensionError("predict", i, dim, len(row))
		}

		logits := make([]float64, len(m.Labels))
		for k := range m.Labels {
			z := m.Intercept[k]
			for j, x := range row {
				z += m.Coef[k][j] * x
			}
			logits[k] = z
		}

		probs, err := softmax(logits)
		if err != nil {
			return nil, &InferenceError{Op: "predict", Err: fmt.Errorf("row %d: %w", i, err)}
		}
		out[i] = probs
	}

	return out, nil
}

func softmax(logits []float64) ([]float64, error) {
	maxLogit := math.Inf(-1)
	for _, z := range logits {
		if math.IsNaN(z) {
			return nil, fmt.Errorf("non-finite logit")
		}
		if z > maxLogit {
			maxLogit = z
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for k, z := range logits {
		probs[k] = math.Exp(z - maxLogit)
		sum += probs[k]
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("non-finite logit")
	}
	for k := range probs {
		probs[k] /= sum
	}
	return probs, nil
}

// Save serializes the classifier.
func (m *LogisticRegression) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Load deserializes and checks the classifier.
func (m *LogisticRegression) Load(r io.Reader) error {
	var loaded LogisticRegression
	if err := json.NewDecoder(r).Decode(&loaded); err != nil {
		return fmt.Errorf("failed to decode classifier: %w", err)
	}
	if err := loaded.check(); err != nil {
		return err
	}
	*m = loaded
	return nil
}

// argmax returns the position of the largest probability; ties go to the
// lowest position.
func argmax(probs []float64) int {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}
