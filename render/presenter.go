package render

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-query-detect/detection"
	"github.com/nvr-ai/go-query-detect/images"
)

// Presenter shows or stores an annotated result.
type Presenter interface {
	// Present annotates img with dets and delivers it.
	Present(ctx context.Context, img image.Image, dets []detection.Accepted) error
	// Close releases any display resources.
	Close() error
}

// WindowPresenter shows the result in an OpenCV window and blocks until a key
// is pressed, the window is closed or the context is done.
type WindowPresenter struct {
	Title   string
	Palette Palette
	Style   Style

	window *gocv.Window
}

// NewWindowPresenter creates a presenter for a window with the given title.
func NewWindowPresenter(title string, palette Palette, style Style) *WindowPresenter {
	return &WindowPresenter{Title: title, Palette: palette, Style: style}
}

// Present implements Presenter.
func (p *WindowPresenter) Present(ctx context.Context, img image.Image, dets []detection.Accepted) error {
	canvas, err := NewMatCanvas(img)
	if err != nil {
		return err
	}
	defer canvas.Close()

	Annotate(canvas, dets, p.Palette, p.Style)

	if p.window == nil {
		p.window = gocv.NewWindow(p.Title)
	}
	p.window.IMShow(canvas.Mat())

	for p.window.IsOpen() {
		if key := p.window.WaitKey(100); key >= 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Presenter.
func (p *WindowPresenter) Close() error {
	if p.window == nil {
		return nil
	}
	err := p.window.Close()
	p.window = nil
	return errors.Wrap(err, "failed to close window")
}

// FilePresenter writes the annotated result to an image file.
type FilePresenter struct {
	Path    string
	Palette Palette
	Style   Style
}

// NewFilePresenter creates a presenter writing to path. The format follows the
// file extension.
func NewFilePresenter(path string, palette Palette, style Style) *FilePresenter {
	return &FilePresenter{Path: path, Palette: palette, Style: style}
}

// Present implements Presenter.
func (p *FilePresenter) Present(ctx context.Context, img image.Image, dets []detection.Accepted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	canvas := NewImageCanvas(img)
	Annotate(canvas, dets, p.Palette, p.Style)
	return images.Save(canvas.Image(), p.Path)
}

// Close implements Presenter.
func (p *FilePresenter) Close() error {
	return nil
}

// MultiPresenter delivers to each presenter in order.
type MultiPresenter []Presenter

// Present implements Presenter. It stops at the first failure.
func (m MultiPresenter) Present(ctx context.Context, img image.Image, dets []detection.Accepted) error {
	for _, p := range m {
		if err := p.Present(ctx, img, dets); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Presenter. Every presenter is closed; the errors are combined.
func (m MultiPresenter) Close() error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Close())
	}
	return err
}
