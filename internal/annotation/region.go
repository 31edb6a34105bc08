// Package annotation provides detected-region records, their mask overlay
// rendering, and the export formats.
package annotation

import (
	"cellbrush/pkg/geometry"
)

// Region is one detected instance with a bounding box normalized to [0,1]
// relative to the owning image's dimensions. Regions are produced only by
// the detection collaborator; manual painting never creates one.
type Region struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	YMin       float64 `json:"ymin"`
	XMin       float64 `json:"xmin"`
	YMax       float64 `json:"ymax"`
	XMax       float64 `json:"xmax"`
}

// Normalize clamps all box coordinates to [0,1], orders min/max pairs, and
// clamps confidence to [0,1]. Collaborator responses pass through here
// before entering the session.
func (r *Region) Normalize() {
	r.YMin = clamp01(r.YMin)
	r.XMin = clamp01(r.XMin)
	r.YMax = clamp01(r.YMax)
	r.XMax = clamp01(r.XMax)
	if r.YMin > r.YMax {
		r.YMin, r.YMax = r.YMax, r.YMin
	}
	if r.XMin > r.XMax {
		r.XMin, r.XMax = r.XMax, r.XMin
	}
	r.Confidence = clamp01(r.Confidence)
}

// PixelRect converts the normalized box to a pixel rectangle for an image
// of the given native dimensions.
func (r Region) PixelRect(width, height int) geometry.Rect {
	w := float64(width)
	h := float64(height)
	return geometry.Rect{
		X:      r.XMin * w,
		Y:      r.YMin * h,
		Width:  (r.XMax - r.XMin) * w,
		Height: (r.YMax - r.YMin) * h,
	}
}

// Hue derives a deterministic hue in [0,360) from the region id, so the
// same id always renders the same color across redraws.
func (r Region) Hue() float64 {
	sum := 0
	for _, b := range []byte(r.ID) {
		sum += int(b)
	}
	return float64(sum % 360)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
