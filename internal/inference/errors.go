package inference

import (
	"errors"
	"fmt"
)

// ErrArtifactUnavailable is returned by every call on an adapter whose
// scaler or classifier failed to load.
var ErrArtifactUnavailable = errors.New("model or scaler not loaded")

// ScalingError reports input the fitted scaler cannot transform.
type ScalingError struct {
	Row      int
	Expected int
	Got      int
	Reason   string
}

func (e *ScalingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("scaling row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("scaling row %d: expected %d columns, got %d", e.Row, e.Expected, e.Got)
}

// InferenceError reports a classifier failure.
type InferenceError struct {
	Op  string
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

var errDimension = errors.New("dimension mismatch")

func dimensionError(op string, row, expected, got int) *InferenceError {
	return &InferenceError{
		Op:  op,
		Err: fmt.Errorf("%w: row %d has %d columns, model expects %d", errDimension, row, got, expected),
	}
}
