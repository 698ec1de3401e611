package ui

import (
	"image"
)

// Text is measured at ReferenceSize, then scaled to box.
const ReferenceSize = 12

// FitSize returns largest font size for text measured at ReferenceSize
// so that it fits box width, capped by box height. Never less than 1.
func FitSize(text string, measuredAtReference int, box image.Point) int {
	if text == "" || measuredAtReference <= 0 || box.X <= 0 || box.Y <= 0 {
		return 1
	}
	candidate := int(float64(ReferenceSize) * float64(box.X) / float64(measuredAtReference))
	size := minInt(candidate, box.Y)
	if size < 1 {
		return 1
	}
	return size
}

// FontSize picks declared size, or auto-fit when declared < 0.
// Zero declared size means ReferenceSize.
func FontSize(declared int, text string, measure func(size int) int, box image.Point) int {
	switch {
	case declared > 0:
		return declared
	case declared == 0:
		return ReferenceSize
	}
	return FitSize(text, measure(ReferenceSize), box)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
