// Package transform maintains the viewport transform between screen and
// image (world) coordinates.
package transform

import (
	"cellbrush/pkg/geometry"
)

// MinScale is the floor for user-driven zoom. Zoom has no upper bound;
// the floor only prevents a degenerate transform.
const MinScale = 0.1

// ZoomStep is the multiplicative factor applied per zoom action.
const ZoomStep = 1.25

// Transform maps world coordinates to screen coordinates as
// screen = world*Scale + Offset.
type Transform struct {
	Scale  float64
	Offset geometry.Point2D
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ScreenToWorld converts a screen-space point to world (image pixel) space.
func ScreenToWorld(p geometry.Point2D, t Transform) geometry.Point2D {
	return geometry.Point2D{
		X: (p.X - t.Offset.X) / t.Scale,
		Y: (p.Y - t.Offset.Y) / t.Scale,
	}
}

// WorldToScreen converts a world-space point to screen space.
func WorldToScreen(p geometry.Point2D, t Transform) geometry.Point2D {
	return geometry.Point2D{
		X: p.X*t.Scale + t.Offset.X,
		Y: p.Y*t.Scale + t.Offset.Y,
	}
}

// ScreenToWorld converts a screen point through this transform.
func (t Transform) ScreenToWorld(p geometry.Point2D) geometry.Point2D {
	return ScreenToWorld(p, t)
}

// WorldToScreen converts a world point through this transform.
func (t Transform) WorldToScreen(p geometry.Point2D) geometry.Point2D {
	return WorldToScreen(p, t)
}

// FitToContainer computes the transform that fits an image of the given
// native dimensions inside a container, leaving the given margin on every
// side and centering the result. The initial fit never exceeds 100% zoom;
// oversize containers show the image at native resolution. The fit scale
// has no lower bound: the scaled image must always stay inside the
// container, MinScale only floors user-driven zoom.
func FitToContainer(imageW, imageH, containerW, containerH, margin float64) Transform {
	if imageW <= 0 || imageH <= 0 {
		return Identity()
	}

	availW := containerW - 2*margin
	availH := containerH - 2*margin
	if availW < 1 {
		availW = 1
	}
	if availH < 1 {
		availH = 1
	}

	scale := availW / imageW
	if s := availH / imageH; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}

	return Transform{
		Scale: scale,
		Offset: geometry.Point2D{
			X: (containerW - imageW*scale) / 2,
			Y: (containerH - imageH*scale) / 2,
		},
	}
}

// Pan returns the offset translated by a screen-space delta.
func Pan(offset, delta geometry.Point2D) geometry.Point2D {
	return offset.Add(delta)
}

// Zoom returns the scale multiplied by factor, floored at MinScale.
// Zoom is viewport-center-agnostic: it does not adjust the offset.
func Zoom(scale, factor float64) float64 {
	s := scale * factor
	if s < MinScale {
		s = MinScale
	}
	return s
}
