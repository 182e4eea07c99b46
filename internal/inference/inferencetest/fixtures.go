// Package inferencetest provides fitted iris artifacts for tests.
package inferencetest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/inference"
	"github.com/haskel/irisd/internal/storage"
)

const (
	ScalerFile     = "iris_scaler.json"
	ClassifierFile = "iris_model.json"
)

// Scaler returns a scaler with column statistics close to the iris dataset.
func Scaler() *inference.StandardScaler {
	s, err := inference.NewStandardScaler(
		features.Columns[:],
		[]float64{5.843, 3.057, 3.758, 1.199, 1.953, 4.310, 0.0067},
		[]float64{0.825, 0.434, 1.759, 0.760, 0.400, 2.500, 0.0814},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// Classifier returns a logistic regression that separates the three classes
// on scaled petal length: below the mean is setosa, around it versicolor,
// well above it virginica.
func Classifier() *inference.LogisticRegression {
	coef := [][]float64{
		{0, 0, -5, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0},
		{0, 0, 5, 0, 0, 0, 0},
	}
	m, err := inference.NewLogisticRegression([]int{0, 1, 2}, coef, []float64{-2, 0, -4.5})
	if err != nil {
		panic(err)
	}
	return m
}

// Adapter returns an adapter over Scaler and Classifier.
func Adapter() *inference.Adapter {
	return inference.NewAdapter(Scaler(), Classifier())
}

// Store writes both artifacts into a temp directory and returns the store.
func Store(t *testing.T) *storage.ArtifactStore {
	t.Helper()

	store := storage.NewArtifactStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := store.Save(ScalerFile, Scaler()); err != nil {
		t.Fatalf("failed to save scaler: %v", err)
	}
	if err := store.Save(ClassifierFile, Classifier()); err != nil {
		t.Fatalf("failed to save classifier: %v", err)
	}
	return store
}

// Options returns load options matching Store.
func Options() inference.Options {
	return inference.Options{
		Scaler:     ScalerFile,
		Classifier: ClassifierFile,
		Format:     inference.FormatJSON,
	}
}
