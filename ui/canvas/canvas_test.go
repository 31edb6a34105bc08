package canvas

import (
	"image"
	"image/color"
	"math"
	"testing"

	cbimage "cellbrush/internal/image"
	"cellbrush/internal/paint"
	"cellbrush/internal/session"

	"fyne.io/fyne/v2"
)

func newTestCanvas(t *testing.T) (*AnnotationCanvas, *session.Session, *paint.Engine) {
	t.Helper()
	sess := session.New()
	engine := paint.NewEngine()
	ac := New(sess, engine)

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 80, G: 80, B: 80, A: 255})
		}
	}
	sess.AddImage(session.NewProjectImage(&cbimage.Decoded{
		Name: "t.png", Img: img, Width: 200, Height: 100,
	}))
	return ac, sess, engine
}

func TestDrawEmptySessionIsBlack(t *testing.T) {
	ac := New(session.New(), paint.NewEngine())
	out := ac.draw(50, 50).(*image.RGBA)

	px := out.RGBAAt(25, 25)
	if px.R != 0 || px.G != 0 || px.B != 0 || px.A != 255 {
		t.Errorf("empty canvas pixel %v, want opaque black", px)
	}
}

func TestDrawCompositesActiveImage(t *testing.T) {
	ac, _, _ := newTestCanvas(t)
	out := ac.draw(400, 300).(*image.RGBA)

	// The image center lands on the container center under the fit.
	px := out.RGBAAt(200, 150)
	if px.R != 80 {
		t.Errorf("center pixel %v, want the base gray", px)
	}
	// Outside the fitted image rect the background shows through.
	if edge := out.RGBAAt(5, 5); edge.R != 0 {
		t.Errorf("background pixel %v, want black", edge)
	}
	if got := ac.RenderedOutput(); got == nil {
		t.Error("rendered output not retained")
	}
}

func TestDragPaintsWithBrush(t *testing.T) {
	ac, sess, engine := newTestCanvas(t)
	ac.draw(400, 300) // establishes the container size and fit

	engine.SetTool(paint.ToolBrush)
	engine.SetBrushSize(16)

	ac.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(200, 150)},
	})
	ac.DragEnd()

	maskImg := sess.MaskLayer().Image()
	found := false
	for i := 3; i < len(maskImg.Pix); i += 4 {
		if maskImg.Pix[i] != 0 {
			found = true
			break
		}
	}
	if !found {
		t.Error("brush drag left no paint on the mask")
	}
}

func TestDragPansWithPanTool(t *testing.T) {
	ac, sess, _ := newTestCanvas(t)
	ac.draw(400, 300)

	before := sess.Viewport().Offset
	ac.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)},
		Dragged:    fyne.Delta{DX: 30, DY: -10},
	})

	after := sess.Viewport().Offset
	if after.X != before.X+30 || after.Y != before.Y-10 {
		t.Errorf("offset %v -> %v, want translated by (30,-10)", before, after)
	}

	// Pan must never touch the mask.
	for i := 3; i < len(sess.MaskLayer().Image().Pix); i += 4 {
		if sess.MaskLayer().Image().Pix[i] != 0 {
			t.Fatal("pan drag painted the mask")
		}
	}
}

func TestScrollZooms(t *testing.T) {
	ac, sess, _ := newTestCanvas(t)
	ac.draw(400, 300)

	before := sess.Viewport().Scale
	ac.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 1}})
	if got := sess.Viewport().Scale; got <= before {
		t.Errorf("scroll up scale %v, want above %v", got, before)
	}

	ac.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -1}})
	if got := sess.Viewport().Scale; math.Abs(got-before) > 1e-9 {
		t.Errorf("scale %v after up+down, want restored %v", got, before)
	}
}

func TestMouseOutEndsStroke(t *testing.T) {
	ac, _, engine := newTestCanvas(t)
	ac.draw(400, 300)

	engine.SetTool(paint.ToolBrush)
	ac.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(200, 150)},
	})
	if !engine.StrokeActive() {
		t.Fatal("drag should start a stroke")
	}

	ac.MouseOut()
	if engine.StrokeActive() {
		t.Error("leaving the canvas should end the stroke")
	}
}
