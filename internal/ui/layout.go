package ui

import (
	"image"
)

// Geometry is fractional element box, 1.0 = full canvas side.
type Geometry struct {
	Left, Top, Width, Height float64
}

// Resolve converts fractional geometry into pixel bounds.
// Values are truncated toward zero, no clamping.
func Resolve(g Geometry, canvasWidth, canvasHeight int) image.Rectangle {
	x := int(g.Left * float64(canvasWidth))
	y := int(g.Top * float64(canvasHeight))
	w := int(g.Width * float64(canvasWidth))
	h := int(g.Height * float64(canvasHeight))
	return image.Rect(x, y, x+w, y+h)
}
