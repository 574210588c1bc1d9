// Package render - Draws accepted detections onto an image.
package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// goldenAngle spreads consecutive hues as far apart as possible.
const goldenAngle = 137.50776405003785

// Palette maps class ids to drawing colors.
type Palette []color.RGBA

// NewPalette builds a deterministic palette of n saturated, distinct colors.
//
// Arguments:
//   - n: The number of colors, usually the vocabulary length.
//
// Returns:
//   - Palette: The palette.
//
// Example:
//
// ```go
//
//	palette := render.NewPalette(models.MobileNetSSD.Len())
//	c := palette.Color(15) // color for "person"
//
// ```
func NewPalette(n int) Palette {
	p := make(Palette, n)
	for i := range p {
		hue := math.Mod(float64(i)*goldenAngle, 360)
		// Alternate brightness so neighbours on the hue wheel stay distinguishable.
		value := 0.95
		if i%2 == 1 {
			value = 0.75
		}
		r, g, b := colorful.Hsv(hue, 0.85, value).RGB255()
		p[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p
}

// Color returns the color for a class id. Ids outside the palette wrap around.
func (p Palette) Color(id int) color.RGBA {
	if len(p) == 0 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	i := id % len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}
