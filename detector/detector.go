// Package detector - Runs one image through a detection network and reports the
// objects matching a query label.
package detector

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-query-detect/detection"
	"github.com/nvr-ai/go-query-detect/images"
	"github.com/nvr-ai/go-query-detect/inference"
	"github.com/nvr-ai/go-query-detect/models"
	"github.com/nvr-ai/go-query-detect/profiler"
	"github.com/nvr-ai/go-query-detect/render"
)

// Request is one detection run.
type Request struct {
	// ImagePath is the image to search.
	ImagePath string
	// Prototxt is the network topology file.
	Prototxt string
	// Model is the pretrained weights file.
	Model string
	// Confidence is the exclusive minimum confidence.
	Confidence float32
	// Query is the class name to look for.
	Query string
	// Verbose prints every class seen above the threshold after presenting.
	Verbose bool
}

// EngineFactory loads the network for a request.
type EngineFactory func(req Request) (inference.Engine, error)

// ImageLoader reads the image for a request.
type ImageLoader func(path string) (image.Image, error)

// Options configures a Detector.
type Options struct {
	// Vocabulary maps the network's class ids to names.
	Vocabulary models.Vocabulary
	// NewEngine loads the network. Required.
	NewEngine EngineFactory
	// Presenter shows or stores the annotated image. Optional.
	Presenter render.Presenter
	// Out receives the result lines. Defaults to io.Discard.
	Out io.Writer
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
	// LoadImage defaults to images.Load.
	LoadImage ImageLoader
}

// Report is the outcome of a run.
type Report struct {
	// Result holds the accepted detections and the classes seen.
	Result detection.Result
	// Width and Height are the image size in pixels.
	Width, Height int
	// Timings holds the duration of each pipeline stage.
	Timings []profiler.Stage
}

// Detector runs the load, infer, filter and present pipeline.
type Detector struct {
	opts Options
}

// New creates a Detector.
//
// Arguments:
//   - opts: The detector options.
//
// Returns:
//   - *Detector: The detector.
//   - error: An error if no engine factory or vocabulary is set.
func New(opts Options) (*Detector, error) {
	if opts.NewEngine == nil {
		return nil, errors.New("engine factory is required")
	}
	if opts.Vocabulary.Len() == 0 {
		return nil, errors.New("label vocabulary is empty")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.LoadImage == nil {
		opts.LoadImage = images.Load
	}
	return &Detector{opts: opts}, nil
}

// Run loads the network and the image, runs inference, keeps the rows matching
// the request and presents them.
//
// Result lines are written to Out in this order: a loading notice, a notice
// before inference, the match count, and with Verbose the set of every class
// seen, printed after the presenter returns. The engine is closed before Run
// returns, whatever the outcome.
//
// Arguments:
//   - ctx: The context.
//   - req: The request.
//
// Returns:
//   - *Report: The result of the run.
//   - error: An error if any stage fails.
//
// Example:
//
// ```go
//
//	d, err := detector.New(detector.Options{
//		Vocabulary: models.MobileNetSSD,
//		NewEngine:  factory,
//		Out:        os.Stdout,
//	})
//	report, err := d.Run(ctx, detector.Request{ImagePath: "dog.jpg", Query: "dog", Confidence: 0.5})
//
// ```
func (d *Detector) Run(ctx context.Context, req Request) (report *Report, err error) {
	log := d.opts.Logger.With(zap.String("image", req.ImagePath), zap.String("query", req.Query))
	tracker := profiler.NewTracker()

	if id, ok := d.opts.Vocabulary.Index(req.Query); ok {
		log.Debug("query class resolved", zap.Int("class_id", id))
	} else {
		log.Warn("query is not a class of the network, nothing can match",
			zap.Strings("classes", d.opts.Vocabulary.Names()),
		)
	}

	d.printf("loading model...\n")
	done := tracker.Track("load_model")
	engine, err := d.opts.NewEngine(req)
	done()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load model")
	}
	if engine == nil {
		return nil, errors.New("failed to load model: no engine returned")
	}
	defer func() {
		err = multierr.Append(err, errors.Wrap(engine.Close(), "failed to close model"))
	}()

	done = tracker.Track("load_image")
	img, err := d.opts.LoadImage(req.ImagePath)
	done()
	if err != nil {
		return nil, err
	}
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	log.Debug("image loaded", zap.Int("width", width), zap.Int("height", height))

	d.printf("Passing the image to the model...\n")
	done = tracker.Track("inference")
	rows, err := engine.Infer(ctx, img)
	done()
	if err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	log.Debug("inference complete", zap.Int("rows", len(rows)))

	done = tracker.Track("filter")
	res, err := detection.Filter(rows, d.opts.Vocabulary, req.Confidence, req.Query, width, height)
	done()
	if err != nil {
		return nil, err
	}

	if len(res.Accepted) == 0 {
		d.printf("NO %s detected in the given image !\n", req.Query)
	} else {
		d.printf("%s detected %d !\n", req.Query, len(res.Accepted))
	}

	if d.opts.Presenter != nil {
		done = tracker.Track("present")
		err = d.opts.Presenter.Present(ctx, img, res.Accepted)
		done()
		if err != nil {
			return nil, errors.Wrap(err, "failed to present result")
		}
	}

	if req.Verbose {
		d.printf("All objects detected in the image : %s\n", res.Classes)
	}

	log.Debug("run complete", tracker.Fields()...)

	return &Report{
		Result:  res,
		Width:   width,
		Height:  height,
		Timings: tracker.Stages(),
	}, nil
}

// Close releases the presenter.
func (d *Detector) Close() error {
	if d.opts.Presenter == nil {
		return nil
	}
	return d.opts.Presenter.Close()
}

func (d *Detector) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.opts.Out, format, args...)
}
