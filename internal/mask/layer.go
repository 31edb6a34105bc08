// Package mask provides the offscreen annotation raster for the active image.
//
// The layer is sized to the native pixel dimensions of the image it belongs
// to, never the viewport. Manual strokes and detection overlays both paint
// onto the same surface; compositing onto the visible canvas happens at a
// fixed opacity with no per-region ordering.
package mask

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"cellbrush/internal/transform"
	"cellbrush/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// OverlayAlpha is the fixed opacity at which the mask is composited over
// the base image.
const OverlayAlpha = 0.6

// Layer is the persistent raster surface holding all annotation marks for
// one image. The zero value is unallocated; Resize must be called before
// any paint or composite operation.
type Layer struct {
	img *image.NRGBA
}

// NewLayer creates an unallocated mask layer.
func NewLayer() *Layer {
	return &Layer{}
}

// Allocated reports whether the layer has a raster surface.
func (l *Layer) Allocated() bool {
	return l.img != nil
}

// Bounds returns the raster bounds, or the zero rectangle if unallocated.
func (l *Layer) Bounds() image.Rectangle {
	if l.img == nil {
		return image.Rectangle{}
	}
	return l.img.Bounds()
}

// Image returns the underlying raster. Owners hold this handle directly;
// it is never looked up through the widget tree.
func (l *Layer) Image() *image.NRGBA {
	return l.img
}

// Resize reallocates the raster surface to the given native image
// dimensions. Any prior content is discarded.
func (l *Layer) Resize(width, height int) {
	if width < 1 || height < 1 {
		l.img = nil
		return
	}
	l.img = image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Clear sets all pixels to fully transparent.
func (l *Layer) Clear() {
	if l.img == nil {
		return
	}
	for i := range l.img.Pix {
		l.img.Pix[i] = 0
	}
}

// ToEncoded serializes the raster content as a base64 PNG string.
// Returns "" if no layer is allocated.
func (l *Layer) ToEncoded() string {
	if l.img == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, l.img); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// LoadFromEncoded decodes a base64 PNG blob and draws it at the origin of
// a layer already sized to match. An absent or malformed blob leaves the
// layer cleared; it is treated as "no prior mask", not an error.
func (l *Layer) LoadFromEncoded(blob string) {
	if l.img == nil || blob == "" {
		return
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return
	}
	draw.Draw(l.img, l.img.Bounds(), decoded, image.Point{}, draw.Over)
}

// FillDisc paints an opaque filled disc centered at a world-space point.
func (l *Layer) FillDisc(center geometry.Point2D, radius float64, col color.NRGBA) {
	l.eachDiscPixel(center, radius, func(x, y int) {
		l.img.SetNRGBA(x, y, col)
	})
}

// EraseDisc punches full transparency in a disc centered at a world-space
// point, regardless of what was painted underneath.
func (l *Layer) EraseDisc(center geometry.Point2D, radius float64) {
	l.eachDiscPixel(center, radius, func(x, y int) {
		l.img.SetNRGBA(x, y, color.NRGBA{})
	})
}

// FillEllipse blends a filled ellipse inscribed in the given world-space
// rectangle over the existing mask content.
func (l *Layer) FillEllipse(rect geometry.Rect, col color.NRGBA) {
	if l.img == nil || rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	bounds := l.img.Bounds()

	cx := rect.X + rect.Width/2
	cy := rect.Y + rect.Height/2
	rx := rect.Width / 2
	ry := rect.Height / 2

	minX, maxX := int(rect.X), int(rect.X+rect.Width)+1
	minY, maxY := int(rect.Y), int(rect.Y+rect.Height)+1

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			if dx*dx+dy*dy <= 1 {
				l.blendOver(x, y, col)
			}
		}
	}
}

// CompositeOnto draws the base image at the transform's scale and offset
// with nearest-neighbor sampling, then the mask layer on top at the fixed
// overlay opacity. This two-layer order is the entire rendering contract.
func (l *Layer) CompositeOnto(dst *image.RGBA, base image.Image, t transform.Transform) {
	if dst == nil || base == nil || t.Scale <= 0 {
		return
	}

	srcBounds := base.Bounds()
	w := float64(srcBounds.Dx())
	h := float64(srcBounds.Dy())

	// Screen-space rectangle covered by the image under the transform.
	target := image.Rect(
		int(t.Offset.X),
		int(t.Offset.Y),
		int(t.Offset.X+w*t.Scale),
		int(t.Offset.Y+h*t.Scale),
	)

	// Nearest-neighbor keeps per-pixel fidelity for scientific inspection.
	xdraw.NearestNeighbor.Scale(dst, target, base, srcBounds, xdraw.Src, nil)

	if l.img == nil {
		return
	}

	clip := target.Intersect(dst.Bounds())
	maskBounds := l.img.Bounds()
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			world := t.ScreenToWorld(geometry.Point2D{X: float64(x), Y: float64(y)})
			mx, my := int(world.X), int(world.Y)
			if mx < maskBounds.Min.X || mx >= maskBounds.Max.X ||
				my < maskBounds.Min.Y || my >= maskBounds.Max.Y {
				continue
			}
			m := l.img.NRGBAAt(mx, my)
			if m.A == 0 {
				continue
			}

			alpha := float64(m.A) / 255 * OverlayAlpha
			d := dst.RGBAAt(x, y)
			inv := 1 - alpha
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(m.R)*alpha + float64(d.R)*inv),
				G: uint8(float64(m.G)*alpha + float64(d.G)*inv),
				B: uint8(float64(m.B)*alpha + float64(d.B)*inv),
				A: 255,
			})
		}
	}
}

// eachDiscPixel visits every raster pixel inside a disc, clipped to the
// layer bounds. No-op when the layer is unallocated.
func (l *Layer) eachDiscPixel(center geometry.Point2D, radius float64, visit func(x, y int)) {
	if l.img == nil || radius <= 0 {
		return
	}
	bounds := l.img.Bounds()

	minX := int(center.X - radius - 1)
	maxX := int(center.X + radius + 1)
	minY := int(center.Y - radius - 1)
	maxY := int(center.Y + radius + 1)

	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - center.X
			dy := float64(y) - center.Y
			if dx*dx+dy*dy <= r2 {
				visit(x, y)
			}
		}
	}
}

// blendOver composites col over the pixel at (x, y) using straight-alpha
// source-over.
func (l *Layer) blendOver(x, y int, col color.NRGBA) {
	srcA := float64(col.A) / 255
	if srcA >= 1 {
		l.img.SetNRGBA(x, y, col)
		return
	}
	d := l.img.NRGBAAt(x, y)
	dstA := float64(d.A) / 255

	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		l.img.SetNRGBA(x, y, color.NRGBA{})
		return
	}

	blend := func(s, dc uint8) uint8 {
		v := (float64(s)*srcA + float64(dc)*dstA*(1-srcA)) / outA
		return uint8(v + 0.5)
	}
	l.img.SetNRGBA(x, y, color.NRGBA{
		R: blend(col.R, d.R),
		G: blend(col.G, d.G),
		B: blend(col.B, d.B),
		A: uint8(outA*255 + 0.5),
	})
}
