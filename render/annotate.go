package render

import (
	"image"
	"image/color"

	"github.com/nvr-ai/go-query-detect/detection"
)

// Canvas is a drawing surface for boxes and captions.
type Canvas interface {
	// Bounds returns the pixel bounds of the surface.
	Bounds() image.Rectangle
	// Rectangle draws the outline of r.
	Rectangle(r image.Rectangle, c color.RGBA, thickness int)
	// Text draws s with its baseline starting at pt.
	Text(s string, pt image.Point, c color.RGBA, scale float64, thickness int)
}

// Style controls how detections are drawn.
type Style struct {
	// Thickness is the stroke width of boxes and captions.
	Thickness int `json:"thickness" yaml:"thickness"`
	// FontScale scales the caption font where the canvas supports it.
	FontScale float64 `json:"font_scale" yaml:"font_scale"`
	// LabelOffset is the vertical distance between a box's top edge and its caption.
	LabelOffset int `json:"label_offset" yaml:"label_offset"`
}

// DefaultStyle returns a 2px stroke, a 0.5 font scale and a 15px caption offset.
func DefaultStyle() Style {
	return Style{Thickness: 2, FontScale: 0.5, LabelOffset: 15}
}

// LabelY returns the caption baseline for a box whose top edge is at top.
// The caption sits above the box unless that would put it within offset
// pixels of the image's top edge, in which case it moves inside the box.
//
// Arguments:
//   - top: The box's top edge in pixels.
//   - offset: The caption offset, 15 by default.
//
// Returns:
//   - int: The caption's y coordinate.
//
// Example:
//
// ```go
//
//	render.LabelY(10, 15) // 25
//	render.LabelY(40, 15) // 25
//	render.LabelY(31, 15) // 16
//
// ```
func LabelY(top, offset int) int {
	if top-offset > offset {
		return top - offset
	}
	return top + offset
}

// Annotate draws every detection onto the canvas: a box in its class color and a
// "{label} : {confidence}" caption. Boxes are clamped to the canvas bounds before
// drawing; the detections themselves are not modified.
//
// Arguments:
//   - canvas: The surface to draw on.
//   - dets: The accepted detections.
//   - palette: The class id to color mapping.
//   - style: The drawing style.
func Annotate(canvas Canvas, dets []detection.Accepted, palette Palette, style Style) {
	bounds := canvas.Bounds()
	for _, d := range dets {
		box := d.Box.Clamp(bounds)
		c := palette.Color(d.ClassID)

		canvas.Rectangle(box.Rectangle(), c, style.Thickness)
		canvas.Text(d.Text(), image.Pt(box.X1, LabelY(box.Y1, style.LabelOffset)), c, style.FontScale, style.Thickness)
	}
}
