package annotation

import (
	"image/color"

	"cellbrush/internal/mask"
	"cellbrush/pkg/colorutil"
)

// overlayAlpha is the opacity of a detection ellipse on the mask layer.
const overlayAlpha = 204 // 80%

// RenderRegions paints one filled ellipse per region onto the mask layer,
// inscribed in the region's pixel rectangle, in the region's id-derived hue.
//
// The ellipse is a crude approximation of the detected instance, not a true
// segmentation mask. Painting is additive onto whatever the layer already
// holds; rendering the same regions twice double-paints. Callers wanting an
// idempotent re-detect must clear the mask first.
func RenderRegions(layer *mask.Layer, regions []Region, width, height int) {
	if layer == nil || !layer.Allocated() {
		return
	}
	for _, r := range regions {
		hue := colorutil.HueToRGBA(r.Hue(), overlayAlpha)
		layer.FillEllipse(r.PixelRect(width, height), color.NRGBA{
			R: hue.R,
			G: hue.G,
			B: hue.B,
			A: overlayAlpha,
		})
	}
}
