// Package images - Image loading and pixel geometry utilities.
package images

import "image"

// Rect is a lightweight bounding box in pixel coordinates.
//
// Unlike image.Rectangle it is never canonicalized, so a box scaled from a
// network's output keeps exactly the corners the network produced, even when
// they are inverted or fall outside the image.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// FromRectangle converts an image.Rectangle to a Rect.
func FromRectangle(r image.Rectangle) Rect {
	return Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rectangle converts the box to a canonical image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Dx returns the signed width of the box.
func (r Rect) Dx() int {
	return r.X2 - r.X1
}

// Dy returns the signed height of the box.
func (r Rect) Dy() int {
	return r.Y2 - r.Y1
}

// Clamp limits every corner of the box to the given bounds.
//
// Arguments:
//   - bounds: The valid pixel range, usually the bounds of the image drawn on.
//
// Returns:
//   - Rect: The clamped box. Corner order is preserved.
//
// Example:
//
// ```go
//
//	box := Rect{X1: -20, Y1: 10, X2: 700, Y2: 50}
//	box.Clamp(image.Rect(0, 0, 640, 480)) // Rect{X1: 0, Y1: 10, X2: 640, Y2: 50}
//
// ```
func (r Rect) Clamp(bounds image.Rectangle) Rect {
	return Rect{
		X1: clamp(r.X1, bounds.Min.X, bounds.Max.X),
		Y1: clamp(r.Y1, bounds.Min.Y, bounds.Max.Y),
		X2: clamp(r.X2, bounds.Min.X, bounds.Max.X),
		Y2: clamp(r.Y2, bounds.Min.Y, bounds.Max.Y),
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
