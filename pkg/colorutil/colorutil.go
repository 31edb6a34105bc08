// Package colorutil provides shared color utilities for the annotation tool.
package colorutil

import (
	"image/color"
	"math"
)

// Common overlay colors used throughout the application.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Brush is the fixed color for manual mask strokes. It is fully saturated
// yellow so manual edits stay visually distinct from detection hues.
var Brush = Yellow

// HueToRGBA converts a hue in degrees (0-360) to a fully saturated,
// full-value RGBA color with the given alpha.
func HueToRGBA(hue float64, alpha uint8) color.RGBA {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}

	c := 1.0 // chroma at full saturation and value
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: alpha,
	}
}
