// Package detection - Filters raw detection rows into query matches.
package detection

import (
	"strconv"
	"strings"

	"github.com/nvr-ai/go-query-detect/images"
)

// Row is one candidate emitted by an SSD-style detection output layer.
type Row struct {
	// The class id, an index into the network's label vocabulary.
	ClassID int
	// The confidence score in [0, 1].
	Confidence float32
	// The box as fractions of the image size: left, top, right, bottom.
	Box [4]float32
}

// Scale converts the normalized box to pixels, truncating toward zero.
//
// Arguments:
//   - width: The image width in pixels.
//   - height: The image height in pixels.
//
// Returns:
//   - images.Rect: The pixel box. It is not clamped to the image.
func (r Row) Scale(width, height int) images.Rect {
	w, h := float64(width), float64(height)
	return images.Rect{
		X1: int(float64(r.Box[0]) * w),
		Y1: int(float64(r.Box[1]) * h),
		X2: int(float64(r.Box[2]) * w),
		Y2: int(float64(r.Box[3]) * h),
	}
}

// Accepted is a row that passed the confidence threshold and matched the query.
type Accepted struct {
	// The class id the row carried, used to pick a drawing color.
	ClassID int
	// The resolved class name.
	Label string
	// The confidence as a percentage.
	Confidence float32
	// The box in pixel coordinates.
	Box images.Rect
}

// Text returns the caption drawn next to the box, e.g. "cat : 97.5".
func (a Accepted) Text() string {
	return a.Label + " : " + formatPercent(a.Confidence)
}

// formatPercent prints the shortest representation of a float32, always with a
// fractional part.
func formatPercent(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Result is the output of Filter.
type Result struct {
	// Accepted detections in the order the rows were given.
	Accepted []Accepted
	// Every class seen above the threshold, whether or not it matched the query.
	Classes ClassSet
}
