package inference

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig describes an exported classifier graph.
type ONNXConfig struct {
	// SharedLibraryPath points at libonnxruntime; empty uses the default lookup.
	SharedLibraryPath string
	InputName         string
	OutputName        string
	NumFeatures       int
	NumClasses        int
}

// ONNXClassifier runs a classifier exported to ONNX with a probability
// output of shape [1, NumClasses]. The session reuses fixed tensors, so
// calls are serialized.
type ONNXClassifier struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	dim     int
	classes []int
}

// NewONNXClassifier initializes the runtime and opens the model.
func NewONNXClassifier(modelPath string, cfg ONNXConfig) (*ONNXClassifier, error) {
	if cfg.NumFeatures <= 0 || cfg.NumClasses <= 0 {
		return nil, fmt.Errorf("onnx classifier needs positive feature and class counts")
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.NumFeatures)))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.NumClasses)))
	if err != nil {
		input.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	classes := make([]int, cfg.NumClasses)
	for i := range classes {
		classes[i] = i
	}

	return &ONNXClassifier{
		session: session,
		input:   input,
		output:  output,
		dim:     cfg.NumFeatures,
		classes: classes,
	}, nil
}

// Dim returns the input column count.
func (c *ONNXClassifier) Dim() int {
	return c.dim
}

// Classes returns 0..NumClasses-1.
func (c *ONNXClassifier) Classes() []int {
	return c.classes
}

// PredictProba runs the session once per row.
func (c *ONNXClassifier) PredictProba(rows [][]float64) ([][]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, ErrArtifactUnavailable
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != c.dim {
			return nil, dimensionError("predict", i, c.dim, len(row))
		}

		data := c.input.GetData()
		for j, x := range row {
			data[j] = float32(x)
		}

		if err := c.session.Run(); err != nil {
			return nil, &InferenceError{Op: "predict", Err: err}
		}

		result := c.output.GetData()
		probs := make([]float64, len(result))
		for k, p := range result {
			probs[k] = float64(p)
		}
		out[i] = probs
	}

	return out, nil
}

// Close releases the session and the runtime environment.
func (c *ONNXClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.input != nil {
		c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		c.output.Destroy()
		c.output = nil
	}
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	ort.DestroyEnvironment()
}
