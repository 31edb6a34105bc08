package image

import (
	goimage "image"
	"image/color"
	"math"
)

// DemoSpecimen generates a synthetic microscopy-style image: a dark field
// with a handful of bright cell-like blobs. Used to seed the session so
// the tool is usable before any files are loaded.
func DemoSpecimen(width, height int) goimage.Image {
	img := goimage.NewRGBA(goimage.Rect(0, 0, width, height))

	// Fixed blob positions as fractions of the image size, so the demo
	// looks the same at any resolution.
	blobs := []struct {
		cx, cy, r float64
	}{
		{0.25, 0.30, 0.08},
		{0.60, 0.25, 0.06},
		{0.45, 0.60, 0.10},
		{0.75, 0.70, 0.07},
		{0.20, 0.75, 0.05},
	}

	minDim := float64(width)
	if float64(height) < minDim {
		minDim = float64(height)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Dim background gradient.
			base := 20 + uint8((x*20)/width) + uint8((y*20)/height)
			r, g, b := base, base, base+10

			for _, blob := range blobs {
				dx := float64(x) - blob.cx*float64(width)
				dy := float64(y) - blob.cy*float64(height)
				dist := math.Sqrt(dx*dx + dy*dy)
				radius := blob.r * minDim
				if dist < radius {
					// Brighter toward the blob center.
					intensity := 1 - dist/radius
					r = uint8(math.Min(255, float64(r)+160*intensity))
					g = uint8(math.Min(255, float64(g)+190*intensity))
					b = uint8(math.Min(255, float64(b)+120*intensity))
				}
			}
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return img
}
