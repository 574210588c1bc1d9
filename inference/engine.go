package inference

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-query-detect/detection"
)

// ErrEmptyOutput is returned when a forward pass produces no output tensor.
var ErrEmptyOutput = errors.New("inference returned empty output")

// Engine is a loaded, pretrained detection network.
type Engine interface {
	// Infer preprocesses img into the network's input tensor, runs one forward
	// pass and decodes the detection output.
	Infer(ctx context.Context, img image.Image) ([]detection.Row, error)
	// Close releases the network.
	Close() error
}

// EngineBuilder builds an Engine with a fluent API.
type EngineBuilder struct {
	engineType EngineType
	config     string
	weights    string
	preprocess Preprocess
	onnx       ONNXOptions
	logger     *zap.Logger
	err        error
}

// NewEngineBuilder creates a new engine builder with MobileNet-SSD defaults.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{
		engineType: EngineCaffe,
		preprocess: DefaultPreprocess(),
		onnx:       DefaultONNXOptions(),
		logger:     zap.NewNop(),
	}
}

// WithType sets the engine type.
//
// Arguments:
//   - t: The engine type.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithType(t EngineType) *EngineBuilder {
	if b.HasError() {
		return b
	}
	parsed, err := ParseEngineType(string(t))
	if err != nil {
		b.err = err
		return b
	}
	b.engineType = parsed
	return b
}

// WithModel sets the model files.
//
// Arguments:
//   - config: The network topology file (a Caffe prototxt). Ignored by the ONNX engine.
//   - weights: The pretrained weights file (a caffemodel or an .onnx file).
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithModel(config, weights string) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.config = config
	b.weights = weights
	return b
}

// WithPreprocess sets the input preprocessing.
//
// Arguments:
//   - p: The preprocessing parameters.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithPreprocess(p Preprocess) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if err := p.Validate(); err != nil {
		b.err = err
		return b
	}
	b.preprocess = p
	return b
}

// WithONNX sets the onnxruntime options used by EngineONNX.
//
// Arguments:
//   - opts: The onnxruntime options.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithONNX(opts ONNXOptions) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.onnx = opts
	return b
}

// WithLogger sets the logger.
//
// Arguments:
//   - logger: The logger.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithLogger(logger *zap.Logger) *EngineBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// MustBuild builds the engine and panics if there is an error.
//
// Returns:
//   - Engine: The engine.
func (b *EngineBuilder) MustBuild() Engine {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

// Build loads the model and returns the engine.
//
// Returns:
//   - Engine: The engine.
//   - error: The error if any.
func (b *EngineBuilder) Build() (Engine, error) {
	if b.HasError() {
		return nil, b.err
	}
	if b.weights == "" {
		return nil, errors.New("model weights not configured")
	}

	switch b.engineType {
	case EngineCaffe:
		if b.config == "" {
			return nil, errors.New("caffe engine needs a prototxt file")
		}
		e, err := NewCaffeEngine(b.config, b.weights, b.preprocess, b.logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineONNX:
		e, err := NewONNXEngine(b.weights, b.onnx, b.preprocess, b.logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedEngine, "%q", b.engineType)
	}
}
