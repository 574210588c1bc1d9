package inference

import (
	"context"
	"image"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-query-detect/detection"
)

// CaffeEngine runs a Caffe network through OpenCV's DNN module.
type CaffeEngine struct {
	net        gocv.Net
	preprocess Preprocess
	logger     *zap.Logger
}

// NewCaffeEngine loads a Caffe network.
//
// Arguments:
//   - prototxt: Path to the network topology file.
//   - weights: Path to the caffemodel weights file.
//   - p: The input preprocessing.
//   - logger: The logger.
//
// Returns:
//   - *CaffeEngine: The loaded engine.
//   - error: An error if either file is missing or OpenCV cannot parse them.
func NewCaffeEngine(prototxt, weights string, p Preprocess, logger *zap.Logger) (*CaffeEngine, error) {
	for _, path := range []string{prototxt, weights} {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(err, "model file not accessible")
		}
		if info.Size() == 0 {
			return nil, errors.Errorf("model file is empty: %s", path)
		}
	}

	net := gocv.ReadNetFromCaffe(prototxt, weights)
	if net.Empty() {
		return nil, errors.Errorf("failed to load caffe model %s with %s", weights, prototxt)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "failed to set preferable backend")
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "failed to set preferable target")
	}

	logger.Debug("caffe model loaded",
		zap.String("prototxt", prototxt),
		zap.String("weights", weights),
		zap.Int("input_width", p.Width),
		zap.Int("input_height", p.Height),
	)

	return &CaffeEngine{net: net, preprocess: p, logger: logger}, nil
}

// Infer runs one forward pass on img.
//
// Arguments:
//   - ctx: The context; checked before the forward pass starts.
//   - img: The image to detect objects in.
//
// Returns:
//   - []detection.Row: The decoded detection rows.
//   - error: An error if conversion or inference fails.
func (e *CaffeEngine) Infer(ctx context.Context, img image.Image) ([]detection.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ImageToMatRGB stores pixels in OpenCV's BGR order.
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert image to mat")
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, e.preprocess.Size(), 0, 0, gocv.InterpolationLinear)

	mean := e.preprocess.Mean
	blob := gocv.BlobFromImage(resized, e.preprocess.Scale, e.preprocess.Size(),
		gocv.NewScalar(mean, mean, mean, 0), e.preprocess.SwapRB, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	output := e.net.Forward("")
	defer output.Close()
	if output.Empty() {
		return nil, ErrEmptyOutput
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read detection output")
	}
	e.logger.Debug("forward pass complete", zap.Ints("output_shape", output.Size()))

	// The output mat owns data; decode from a copy that outlives it.
	return detection.RowsFromFloats(append([]float32(nil), data...))
}

// Close releases the network.
func (e *CaffeEngine) Close() error {
	return e.net.Close()
}
