package paint

import (
	"testing"

	"cellbrush/internal/mask"
	"cellbrush/internal/transform"
	"cellbrush/pkg/geometry"
)

func newTestLayer(w, h int) *mask.Layer {
	l := mask.NewLayer()
	l.Resize(w, h)
	return l
}

func identity() transform.Transform {
	return transform.Transform{Scale: 1}
}

func TestPanToolNeverPaints(t *testing.T) {
	e := NewEngine()
	layer := newTestLayer(50, 50)

	if e.PointerDown(layer, geometry.Point2D{X: 25, Y: 25}, identity()) {
		t.Error("pan tool must not start a paint stroke")
	}
	if e.StrokeActive() {
		t.Error("no stroke should be active under pan")
	}
	if got := layer.Image().NRGBAAt(25, 25); got.A != 0 {
		t.Error("pan tool painted the mask")
	}
}

func TestBrushStrokePaintsYellow(t *testing.T) {
	e := NewEngine()
	e.SetTool(ToolBrush)
	e.SetBrushSize(10)
	layer := newTestLayer(50, 50)

	if !e.PointerDown(layer, geometry.Point2D{X: 25, Y: 25}, identity()) {
		t.Fatal("brush down should mutate the mask")
	}
	got := layer.Image().NRGBAAt(25, 25)
	if got.R != 255 || got.G != 255 || got.B != 0 || got.A != 255 {
		t.Errorf("brush pixel %v, want opaque yellow", got)
	}
}

func TestBrushSizeIsWorldSpace(t *testing.T) {
	// At 2x zoom the same diameter must cover the same image pixels.
	zoomed := transform.Transform{Scale: 2}
	e := NewEngine()
	e.SetTool(ToolBrush)
	e.SetBrushSize(10)

	layer := newTestLayer(50, 50)
	// Screen (50,50) is world (25,25) at scale 2.
	e.PointerDown(layer, geometry.Point2D{X: 50, Y: 50}, zoomed)
	e.PointerUp()

	if got := layer.Image().NRGBAAt(25, 25); got.A == 0 {
		t.Fatal("stroke center not painted")
	}
	// Radius 5 in world space regardless of zoom.
	if got := layer.Image().NRGBAAt(25, 21); got.A == 0 {
		t.Error("world pixel inside radius not painted")
	}
	if got := layer.Image().NRGBAAt(25, 32); got.A != 0 {
		t.Error("world pixel outside radius painted; brush scaled with zoom")
	}
}

func TestEraserRemovesPaint(t *testing.T) {
	e := NewEngine()
	e.SetTool(ToolBrush)
	e.SetBrushSize(20)
	layer := newTestLayer(60, 60)
	e.PointerDown(layer, geometry.Point2D{X: 30, Y: 30}, identity())
	e.PointerUp()

	e.SetTool(ToolEraser)
	e.SetBrushSize(8)
	e.PointerDown(layer, geometry.Point2D{X: 30, Y: 30}, identity())
	e.PointerUp()

	if got := layer.Image().NRGBAAt(30, 30); got.A != 0 {
		t.Error("eraser left paint at stroke center")
	}
	if got := layer.Image().NRGBAAt(30, 38); got.A == 0 {
		t.Error("eraser removed paint outside its radius")
	}
}

func TestMoveRequiresActiveStroke(t *testing.T) {
	e := NewEngine()
	e.SetTool(ToolBrush)
	layer := newTestLayer(50, 50)

	if e.PointerMove(layer, geometry.Point2D{X: 25, Y: 25}, identity()) {
		t.Error("move without a prior down must not paint")
	}

	e.PointerDown(layer, geometry.Point2D{X: 10, Y: 10}, identity())
	if !e.PointerMove(layer, geometry.Point2D{X: 25, Y: 25}, identity()) {
		t.Error("move during a stroke should paint")
	}

	e.PointerUp()
	if e.PointerMove(layer, geometry.Point2D{X: 40, Y: 40}, identity()) {
		t.Error("move after up must not paint")
	}
}

func TestSwitchingToolEndsStroke(t *testing.T) {
	e := NewEngine()
	e.SetTool(ToolBrush)
	layer := newTestLayer(50, 50)
	e.PointerDown(layer, geometry.Point2D{X: 10, Y: 10}, identity())

	e.SetTool(ToolEraser)
	if e.StrokeActive() {
		t.Error("tool switch should end the live stroke")
	}
}

func TestPaintNoOpWithoutSurface(t *testing.T) {
	e := NewEngine()
	e.SetTool(ToolBrush)

	if e.PointerDown(nil, geometry.Point2D{X: 5, Y: 5}, identity()) {
		t.Error("nil layer should not report a mutation")
	}
	if e.PointerDown(mask.NewLayer(), geometry.Point2D{X: 5, Y: 5}, identity()) {
		t.Error("unallocated layer should not report a mutation")
	}
}

func TestBrushSizeClampedToMinimum(t *testing.T) {
	e := NewEngine()
	e.SetBrushSize(0)
	if e.BrushSize() < 1 {
		t.Errorf("brush size %v below minimum", e.BrushSize())
	}
}
