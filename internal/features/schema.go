// Package features defines the iris feature schema and the deterministic
// transformation from raw measurements to the model input vector.
package features

// Raw measurement names as they appear in request bodies and CSV headers.
const (
	SepalLength = "sepal length (cm)"
	SepalWidth  = "sepal width (cm)"
	PetalLength = "petal length (cm)"
	PetalWidth  = "petal width (cm)"
)

// Derived column names.
const (
	SepalRatio = "sepal_ratio"
	PetalRatio = "petal_ratio"
	IsOutlier  = "is_outlier"
)

const (
	NumRaw     = 4
	NumColumns = 7
	NumClasses = 3
)

// Epsilon is added to ratio denominators and replaces a zero standard deviation.
const Epsilon = 1e-6

// OutlierZScore is the absolute z-score above which a batch row is flagged.
const OutlierZScore = 3.0

// Column positions inside a Vector.
const (
	ColSepalLength = iota
	ColSepalWidth
	ColPetalLength
	ColPetalWidth
	ColSepalRatio
	ColPetalRatio
	ColIsOutlier
)

// RawNames is the fixed order of the raw measurements.
var RawNames = [NumRaw]string{
	SepalLength,
	SepalWidth,
	PetalLength,
	PetalWidth,
}

// Columns is the model input layout. The scaler was fitted against exactly
// this order; reordering it changes predictions without raising an error.
var Columns = [NumColumns]string{
	SepalLength,
	SepalWidth,
	PetalLength,
	PetalWidth,
	SepalRatio,
	PetalRatio,
	IsOutlier,
}

// ClassNames maps class indices to labels.
var ClassNames = [NumClasses]string{
	"setosa",
	"versicolor",
	"virginica",
}

// ClassName returns the label for a class index.
func ClassName(idx int) (string, bool) {
	if idx < 0 || idx >= NumClasses {
		return "", false
	}
	return ClassNames[idx], true
}

// RawRecord is a single decoded request payload.
type RawRecord map[string]any

// Measurements holds the four raw values in RawNames order.
type Measurements [NumRaw]float64

// Vector is one row of model input in Columns order. NaN marks a value
// that could not be derived.
type Vector [NumColumns]float64

// Slice returns a copy of the vector as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, NumColumns)
	copy(out, v[:])
	return out
}

// Matrix converts vectors to rows suitable for the inference adapter.
func Matrix(vectors []Vector) [][]float64 {
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		rows[i] = v.Slice()
	}
	return rows
}
