package ml

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXOptions selects the runtime library and the graph's tensor names.
type ONNXOptions struct {
	LibraryPath string
	InputName   string
	OutputName  string
}

// DefaultONNXOptions matches the names skl2onnx gives a converted classifier.
func DefaultONNXOptions() ONNXOptions {
	return ONNXOptions{
		InputName:  "float_input",
		OutputName: "label",
	}
}

// ONNXClassifier runs a classifier graph with a [1, NumFeatures] float32 input
// and an int64 label output.
type ONNXClassifier struct {
	session *ort.DynamicAdvancedSession
}

var ortMu sync.Mutex

func initONNXRuntime(libraryPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// DecodeONNXClassifier creates a session over the serialized ONNX graph.
func DecodeONNXClassifier(payload []byte, opts ONNXOptions) (*ONNXClassifier, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty onnx model")
	}
	defaults := DefaultONNXOptions()
	if opts.InputName == "" {
		opts.InputName = defaults.InputName
	}
	if opts.OutputName == "" {
		opts.OutputName = defaults.OutputName
	}
	if err := initONNXRuntime(opts.LibraryPath); err != nil {
		return nil, err
	}
	session, err := ort.NewDynamicAdvancedSessionWithONNXData(payload,
		[]string{opts.InputName}, []string{opts.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &ONNXClassifier{session: session}, nil
}

func (c *ONNXClassifier) Predict(v FeatureVector) (int, error) {
	input, err := ort.NewTensor(ort.NewShape(1, NumFeatures), v.Float32())
	if err != nil {
		return 0, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := c.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return 0, fmt.Errorf("run onnx session: %w", err)
	}
	labels := output.GetData()
	if len(labels) == 0 {
		return 0, fmt.Errorf("onnx session returned no label")
	}
	return int(labels[0]), nil
}

// Close releases the native session.
func (c *ONNXClassifier) Close() error {
	if c.session == nil {
		return nil
	}
	return c.session.Destroy()
}
