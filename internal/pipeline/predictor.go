// Package pipeline runs the serving and batch paths over the shared
// preprocessing and inference steps.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/inference"
)

// State is a step of the single-record pipeline.
type State int

const (
	StateReceived State = iota
	StateValidated
	StatePreprocessed
	StateScaled
	StateClassified
	StateResponded
	StateError
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateValidated:
		return "validated"
	case StatePreprocessed:
		return "preprocessed"
	case StateScaled:
		return "scaled"
	case StateClassified:
		return "classified"
	case StateResponded:
		return "responded"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInput      = errors.New("no input data provided in JSON format")
	ErrValidation = errors.New("invalid input data format")
)

// PreprocessingError reports columns left empty after a record passed
// validation.
type PreprocessingError struct {
	Missing []string
}

func (e *PreprocessingError) Error() string {
	return fmt.Sprintf("preprocessing left missing values in %s", strings.Join(e.Missing, ", "))
}

// StageError wraps a failure with the state the request was in when it
// failed. The request itself always ends in StateError.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result is one prediction.
type Result struct {
	ClassIndex    int       `json:"prediction"`
	ClassName     string    `json:"class_name"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// Outcome is a successful pass through the pipeline.
type Outcome struct {
	Result  Result
	Vector  features.Vector
	Latency time.Duration
	State   State
}

// Predictor serves single records against one adapter.
type Predictor struct {
	adapter *inference.Adapter
	logger  *slog.Logger
}

// NewPredictor creates a predictor. A nil or unloaded adapter makes every
// call fail with inference.ErrArtifactUnavailable.
func NewPredictor(adapter *inference.Adapter, logger *slog.Logger) *Predictor {
	return &Predictor{
		adapter: adapter,
		logger:  logger,
	}
}

// Ready reports whether the artifacts are loaded.
func (p *Predictor) Ready() bool {
	return p.adapter.Loaded()
}

// Dims returns the loaded scaler and classifier input widths.
func (p *Predictor) Dims() (scaler, classifier int) {
	return p.adapter.Dims()
}

// Predict decodes payload as a raw record and classifies it.
func (p *Predictor) Predict(ctx context.Context, payload []byte) (*Outcome, error) {
	start := time.Now()

	if !p.adapter.Loaded() {
		return nil, &StageError{State: StateReceived, Err: inference.ErrArtifactUnavailable}
	}

	raw, err := decodeRecord(payload)
	if err != nil {
		p.logger.Debug("rejected payload", "error", err)
		return nil, &StageError{State: StateReceived, Err: ErrInput}
	}

	return p.run(ctx, raw, start)
}

func (p *Predictor) run(ctx context.Context, raw features.RawRecord, start time.Time) (*Outcome, error) {
	if err := features.CheckRecord(raw); err != nil {
		p.logger.Debug("validation failed", "error", err)
		return nil, &StageError{State: StateReceived, Err: fmt.Errorf("%w: %w", ErrValidation, err)}
	}

	state := StateValidated

	vector := features.Preprocess(raw)
	if holes := features.Holes(vector); len(holes) > 0 {
		return nil, &StageError{State: state, Err: &PreprocessingError{Missing: holes}}
	}
	state = StatePreprocessed

	if err := ctx.Err(); err != nil {
		return nil, &StageError{State: state, Err: err}
	}

	scaled, err := p.adapter.Scale([][]float64{vector.Slice()})
	if err != nil {
		return nil, &StageError{State: state, Err: err}
	}
	state = StateScaled

	classes, probs, err := p.adapter.Classify(scaled)
	if err != nil {
		return nil, &StageError{State: state, Err: err}
	}
	state = StateClassified

	name, ok := features.ClassName(classes[0])
	if !ok {
		return nil, &StageError{
			State: state,
			Err:   &inference.InferenceError{Op: "label", Err: fmt.Errorf("class index %d out of range", classes[0])},
		}
	}

	return &Outcome{
		Result: Result{
			ClassIndex:    classes[0],
			ClassName:     name,
			Probabilities: probs[0],
		},
		Vector:  vector,
		Latency: time.Since(start),
		State:   StateResponded,
	}, nil
}

// decodeRecord requires a non-empty JSON object. Numbers are kept as
// json.Number so integers and floats are both accepted while strings and
// booleans keep their own types.
func decodeRecord(payload []byte) (features.RawRecord, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, errors.New("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw features.RawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	if len(raw) == 0 {
		return nil, errors.New("empty object")
	}
	return raw, nil
}

// IsClientError reports whether err is caused by the request content and
// may be shown to the caller.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInput) || errors.Is(err, ErrValidation)
}
