package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/font/basicfont"
)

// MatCanvas draws on an OpenCV Mat with Hershey fonts.
type MatCanvas struct {
	mat gocv.Mat
}

// NewMatCanvas copies img into a new BGR Mat.
//
// Arguments:
//   - img: The image to draw on.
//
// Returns:
//   - *MatCanvas: The canvas. The caller must Close it.
//   - error: An error if the image cannot be converted.
func NewMatCanvas(img image.Image) (*MatCanvas, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert image to mat")
	}
	return &MatCanvas{mat: mat}, nil
}

// Bounds implements Canvas.
func (c *MatCanvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.mat.Cols(), c.mat.Rows())
}

// Rectangle implements Canvas.
func (c *MatCanvas) Rectangle(r image.Rectangle, col color.RGBA, thickness int) {
	gocv.Rectangle(&c.mat, r, col, thickness)
}

// Text implements Canvas.
func (c *MatCanvas) Text(s string, pt image.Point, col color.RGBA, scale float64, thickness int) {
	gocv.PutText(&c.mat, s, pt, gocv.FontHersheySimplex, scale, col, thickness)
}

// Mat returns the underlying Mat.
func (c *MatCanvas) Mat() gocv.Mat {
	return c.mat
}

// Close releases the Mat.
func (c *MatCanvas) Close() error {
	return c.mat.Close()
}

// ImageCanvas draws on an in-memory RGBA copy of an image. It needs no OpenCV
// window or display and is used to write annotated images to disk.
type ImageCanvas struct {
	dc *gg.Context
}

// NewImageCanvas copies img into a new drawing context.
func NewImageCanvas(img image.Image) *ImageCanvas {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)
	return &ImageCanvas{dc: dc}
}

// Bounds implements Canvas.
func (c *ImageCanvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.dc.Width(), c.dc.Height())
}

// Rectangle implements Canvas.
func (c *ImageCanvas) Rectangle(r image.Rectangle, col color.RGBA, thickness int) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(float64(thickness))
	c.dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	c.dc.Stroke()
}

// Text implements Canvas. The bitmap font has a fixed size, so scale and
// thickness are ignored.
func (c *ImageCanvas) Text(s string, pt image.Point, col color.RGBA, _ float64, _ int) {
	c.dc.SetColor(col)
	c.dc.DrawString(s, float64(pt.X), float64(pt.Y))
}

// Image returns the annotated image.
func (c *ImageCanvas) Image() image.Image {
	return c.dc.Image()
}
