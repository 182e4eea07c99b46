package features

import "math"

// Preprocess builds the model input for a single record. The outlier flag is
// always 0 because one row carries no population statistics. Values that are
// absent or not numeric become NaN and propagate into the ratios.
func Preprocess(raw RawRecord) Vector {
	return Derive(MeasurementsOf(raw))
}

// MeasurementsOf extracts the four raw values in RawNames order.
func MeasurementsOf(raw RawRecord) Measurements {
	var m Measurements
	for i, name := range RawNames {
		v, ok := numeric(raw[name])
		if !ok {
			v = math.NaN()
		}
		m[i] = v
	}
	return m
}

// Derive computes the ratio columns for one row and leaves is_outlier at 0.
func Derive(m Measurements) Vector {
	var v Vector
	v[ColSepalLength] = m[0]
	v[ColSepalWidth] = m[1]
	v[ColPetalLength] = m[2]
	v[ColPetalWidth] = m[3]
	v[ColSepalRatio] = m[0] / (m[1] + Epsilon)
	v[ColPetalRatio] = m[2] / (m[3] + Epsilon)
	v[ColIsOutlier] = 0
	return v
}

// Holes returns the names of columns that could not be derived.
func Holes(v Vector) []string {
	var holes []string
	for i, x := range v {
		if math.IsNaN(x) {
			holes = append(holes, Columns[i])
		}
	}
	return holes
}
