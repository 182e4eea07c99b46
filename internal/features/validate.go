package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrMissingFeature     = errors.New("missing feature")
	ErrNonNumericFeature  = errors.New("feature is not numeric")
	ErrNonPositiveFeature = errors.New("feature must be positive")
)

// ValidationError names the field that failed a check.
type ValidationError struct {
	Field   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q", e.Wrapped, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// Validate reports whether raw carries all four measurements as positive
// numbers. It never panics.
func Validate(raw RawRecord) bool {
	return CheckRecord(raw) == nil
}

// CheckRecord is Validate with the reason for rejection. Checks run in the
// same order as Validate: presence of every field, then numeric type, then
// positivity.
func CheckRecord(raw RawRecord) error {
	for _, name := range RawNames {
		if _, ok := raw[name]; !ok {
			return &ValidationError{Field: name, Wrapped: ErrMissingFeature}
		}
	}

	values := make([]float64, NumRaw)
	for i, name := range RawNames {
		v, ok := numeric(raw[name])
		if !ok || math.IsInf(v, 0) {
			return &ValidationError{Field: name, Wrapped: ErrNonNumericFeature}
		}
		values[i] = v
	}

	for i, name := range RawNames {
		// NaN fails this comparison and is rejected with the non-positive values.
		if !(values[i] > 0) {
			return &ValidationError{Field: name, Wrapped: ErrNonPositiveFeature}
		}
	}

	return nil
}

// numeric accepts Go integer and floating point kinds and json.Number.
// Booleans and strings are rejected.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	default:
		return math.NaN(), false
	}
}
