package inference

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Preprocess describes how an image becomes the network's input tensor:
// resized to Width x Height, then every channel value v becomes (v - Mean) * Scale.
type Preprocess struct {
	// Width is the network input width.
	Width int `json:"width" yaml:"width"`
	// Height is the network input height.
	Height int `json:"height" yaml:"height"`
	// Scale multiplies each mean-subtracted value.
	Scale float64 `json:"scale" yaml:"scale"`
	// Mean is subtracted from every channel.
	Mean float64 `json:"mean" yaml:"mean"`
	// SwapRB feeds channels in RGB order instead of BGR.
	SwapRB bool `json:"swap_rb" yaml:"swap_rb"`
}

// DefaultPreprocess returns the MobileNet-SSD input: 300x300 BGR with values
// mapped from [0, 255] to roughly [-1, 1].
func DefaultPreprocess() Preprocess {
	return Preprocess{
		Width:  300,
		Height: 300,
		Scale:  0.007843,
		Mean:   127.5,
	}
}

// Validate checks the input size.
func (p Preprocess) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Errorf("invalid input size %dx%d", p.Width, p.Height)
	}
	return nil
}

// Size returns the input size as a point.
func (p Preprocess) Size() image.Point {
	return image.Pt(p.Width, p.Height)
}

// Blob converts an image into a [1, 3, Height, Width] float32 tensor in planar
// (NCHW) layout, matching what OpenCV's blobFromImage produces for the same
// parameters.
//
// Arguments:
//   - img: The image to convert.
//   - p: The preprocessing parameters.
//
// Returns:
//   - []float32: The tensor data, 3 * Width * Height values.
func Blob(img image.Image, p Preprocess) []float32 {
	resized := resize.Resize(uint(p.Width), uint(p.Height), img, resize.Bilinear)
	bounds := resized.Bounds()

	plane := p.Width * p.Height
	data := make([]float32, 3*plane)
	first := data[0:plane]
	second := data[plane : 2*plane]
	third := data[2*plane : 3*plane]

	i := 0
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if p.SwapRB {
				first[i], third[i] = p.normalize(r), p.normalize(b)
			} else {
				first[i], third[i] = p.normalize(b), p.normalize(r)
			}
			second[i] = p.normalize(g)
			i++
		}
	}
	return data
}

func (p Preprocess) normalize(v uint32) float32 {
	return float32((float64(v>>8) - p.Mean) * p.Scale)
}
