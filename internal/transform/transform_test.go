package transform

import (
	"math"
	"testing"

	"cellbrush/pkg/geometry"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScreenWorldRoundTrip(t *testing.T) {
	tf := Transform{Scale: 2.5, Offset: geometry.Point2D{X: -120, Y: 48}}

	points := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: 100, Y: 100},
		{X: -37.5, Y: 912.25},
		{X: 0.001, Y: -0.001},
	}
	for _, p := range points {
		got := tf.WorldToScreen(tf.ScreenToWorld(p))
		if !almostEqual(got.X, p.X) || !almostEqual(got.Y, p.Y) {
			t.Errorf("round trip of %v gave %v", p, got)
		}
	}
}

func TestWorldToScreenScaleThenOffset(t *testing.T) {
	tf := Transform{Scale: 2, Offset: geometry.Point2D{X: 10, Y: 20}}
	got := tf.WorldToScreen(geometry.Point2D{X: 5, Y: 5})
	if got.X != 20 || got.Y != 30 {
		t.Errorf("expected (20,30), got %v", got)
	}
}

func TestFitToContainerCentersImage(t *testing.T) {
	tf := FitToContainer(800, 600, 416, 316, 16)

	// Usable area is 384x284; the limiting axis is vertical.
	wantScale := 284.0 / 600.0
	if !almostEqual(tf.Scale, wantScale) {
		t.Fatalf("expected scale %v, got %v", wantScale, tf.Scale)
	}

	// The image center must land on the container center.
	center := tf.WorldToScreen(geometry.Point2D{X: 400, Y: 300})
	if !almostEqual(center.X, 208) || !almostEqual(center.Y, 158) {
		t.Errorf("image center mapped to %v, want (208,158)", center)
	}
}

func TestFitToContainerNeverUpscales(t *testing.T) {
	tf := FitToContainer(100, 100, 2000, 2000, 16)
	if tf.Scale != 1 {
		t.Errorf("small image should fit at scale 1, got %v", tf.Scale)
	}
}

func TestFitToContainerTinyContainerStaysInside(t *testing.T) {
	tf := FitToContainer(4000, 3000, 300, 300, 16)

	// The fit scale drops below the zoom floor rather than overflow.
	if tf.Scale >= MinScale {
		t.Fatalf("scale %v, want below %v for a tiny container", tf.Scale, MinScale)
	}
	avail := 300.0 - 2*16
	if w := 4000 * tf.Scale; w > avail+1e-9 {
		t.Errorf("scaled width %v exceeds available %v", w, avail)
	}
	if h := 3000 * tf.Scale; h > avail+1e-9 {
		t.Errorf("scaled height %v exceeds available %v", h, avail)
	}
}

func TestFitToContainerDegenerateContainer(t *testing.T) {
	tf := FitToContainer(800, 600, 0, 0, 16)
	if tf.Scale <= 0 {
		t.Errorf("scale %v, want positive", tf.Scale)
	}
}

func TestZoomFloorsAtMinScale(t *testing.T) {
	scale := 0.2
	for i := 0; i < 20; i++ {
		scale = Zoom(scale, 1/ZoomStep)
	}
	if scale != MinScale {
		t.Errorf("expected zoom-out to stop at %v, got %v", MinScale, scale)
	}
}

func TestZoomInUnbounded(t *testing.T) {
	scale := Zoom(1.0, ZoomStep)
	if !almostEqual(scale, ZoomStep) {
		t.Errorf("expected %v, got %v", ZoomStep, scale)
	}
}

func TestPanAccumulates(t *testing.T) {
	off := geometry.Point2D{X: 0, Y: 0}
	off = Pan(off, geometry.Point2D{X: 10, Y: -5})
	off = Pan(off, geometry.Point2D{X: -4, Y: 15})
	if off.X != 6 || off.Y != 10 {
		t.Errorf("expected (6,10), got %v", off)
	}
}
