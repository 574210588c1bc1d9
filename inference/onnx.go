package inference

import (
	"context"
	"image"
	"os"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-query-detect/detection"
)

// ONNXOptions configures the onnxruntime session of an ONNX export of the network.
type ONNXOptions struct {
	// LibraryPath is the onnxruntime shared library; empty uses DefaultSharedLibPath.
	LibraryPath string `json:"library" yaml:"library"`
	// InputName is the name of the image input tensor.
	InputName string `json:"input" yaml:"input"`
	// OutputName is the name of the [1, 1, N, 7] detection output tensor.
	OutputName string `json:"output" yaml:"output"`
	// MaxDetections is N, the number of rows the output layer keeps.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`
	// Threads bounds intra-op parallelism; 0 lets onnxruntime decide.
	Threads int `json:"threads" yaml:"threads"`
	// Provider is the execution provider; empty runs on the CPU.
	Provider Provider `json:"provider" yaml:"provider"`
	// Device is the device id used by GPU providers.
	Device int `json:"device" yaml:"device"`
}

// DefaultONNXOptions returns the tensor names of a MobileNet-SSD conversion.
func DefaultONNXOptions() ONNXOptions {
	return ONNXOptions{
		InputName:     "data",
		OutputName:    "detection_out",
		MaxDetections: 100,
	}
}

// ONNXEngine runs an ONNX export of the network through onnxruntime.
type ONNXEngine struct {
	session    *Session
	preprocess Preprocess
	logger     *zap.Logger
}

// NewONNXEngine creates an onnxruntime session for the model.
//
// Arguments:
//   - modelPath: Path to the .onnx file.
//   - opts: The onnxruntime options.
//   - p: The input preprocessing.
//   - logger: The logger.
//
// Returns:
//   - *ONNXEngine: The loaded engine.
//   - error: An error if the library, the model or the session cannot be set up.
func NewONNXEngine(modelPath string, opts ONNXOptions, p Preprocess, logger *zap.Logger) (*ONNXEngine, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.Wrap(err, "model file not accessible")
	}
	if opts.MaxDetections <= 0 {
		return nil, errors.Errorf("invalid max detections %d", opts.MaxDetections)
	}
	if _, err := ParseProvider(string(opts.Provider)); err != nil {
		return nil, err
	}
	if err := initEnvironment(opts.LibraryPath); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(p.Height), int64(p.Width)))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, int64(opts.MaxDetections), detection.RowWidth))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if err := configureSession(options, opts, logger); err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	logger.Debug("onnx model loaded",
		zap.String("model", modelPath),
		zap.String("input", opts.InputName),
		zap.String("output", opts.OutputName),
		zap.Int("max_detections", opts.MaxDetections),
		zap.String("provider", string(opts.Provider)),
	)

	return &ONNXEngine{
		session:    &Session{Session: session, Input: input, Output: output},
		preprocess: p,
		logger:     logger,
	}, nil
}

func configureSession(options *ort.SessionOptions, opts ONNXOptions, logger *zap.Logger) error {
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return errors.Wrap(err, "error setting graph optimization level")
	}
	if opts.Threads > 0 {
		if err := options.SetIntraOpNumThreads(opts.Threads); err != nil {
			return errors.Wrap(err, "error setting intra-op threads")
		}
	}
	return applyProvider(options, opts.Provider, opts.Device, logger)
}

// Infer runs one forward pass on img.
//
// Arguments:
//   - ctx: The context; checked before the forward pass starts.
//   - img: The image to detect objects in.
//
// Returns:
//   - []detection.Row: The decoded detection rows.
//   - error: An error if inference fails.
func (e *ONNXEngine) Infer(ctx context.Context, img image.Image) ([]detection.Row, error) {
	if e.session == nil || e.session.Session == nil {
		return nil, errors.New("model not loaded")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	copy(e.session.Input.GetData(), Blob(img, e.preprocess))

	if err := e.session.Session.Run(); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}

	data := e.session.Output.GetData()
	if len(data) == 0 {
		return nil, ErrEmptyOutput
	}
	return detection.RowsFromFloats(append([]float32(nil), data...))
}

// Close releases the session and the onnxruntime environment.
func (e *ONNXEngine) Close() error {
	if e.session != nil {
		e.session.Close()
		e.session = nil
	}
	if ort.IsInitialized() {
		return errors.Wrap(ort.DestroyEnvironment(), "failed to destroy ORT environment")
	}
	return nil
}
