// Package canvas provides the annotation canvas widget with pan, zoom, and
// mask painting.
package canvas

import (
	"image"

	"cellbrush/internal/paint"
	"cellbrush/internal/session"
	"cellbrush/internal/transform"
	"cellbrush/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// AnnotationCanvas displays the active image composited with its mask
// layer, and routes pointer input to the viewport or the paint engine
// depending on the active tool.
type AnnotationCanvas struct {
	widget.BaseWidget

	sess   *session.Session
	engine *paint.Engine
	raster *fynecanvas.Raster

	// Last rendered output for sampling in tests and exports.
	lastOutput *image.RGBA
}

// New creates an annotation canvas bound to the session and paint engine.
// The canvas repaints whenever the session reports a visual state change.
func New(sess *session.Session, engine *paint.Engine) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		sess:   sess,
		engine: engine,
	}

	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.raster.SetMinSize(fyne.NewSize(400, 300))

	// Event-driven repaint: every mutation that affects visual output
	// lands here, always as a full repaint.
	repaint := func(interface{}) { ac.raster.Refresh() }
	sess.On(session.EventImageActivated, repaint)
	sess.On(session.EventTransformChanged, repaint)
	sess.On(session.EventMaskChanged, repaint)
	sess.On(session.EventAnnotationsChanged, repaint)

	ac.ExtendBaseWidget(ac)
	return ac
}

// draw is the raster drawing function: base image under, mask over.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	ac.sess.SetContainerSize(float64(w), float64(h))

	output := image.NewRGBA(image.Rect(0, 0, w, h))
	// Opaque black background.
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	ac.sess.Render(output)

	ac.lastOutput = output
	return output
}

// RenderedOutput returns the last rendered canvas output for sampling.
func (ac *AnnotationCanvas) RenderedOutput() *image.RGBA {
	return ac.lastOutput
}

// Refresh repaints the canvas.
func (ac *AnnotationCanvas) Refresh() {
	ac.raster.Refresh()
	ac.BaseWidget.Refresh()
}

// Dragged pans the viewport with the pan tool, or extends the live stroke
// with the brush and eraser tools.
func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	pos := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}

	switch ac.engine.Tool() {
	case paint.ToolPan:
		ac.sess.Pan(geometry.Point2D{X: float64(ev.Dragged.DX), Y: float64(ev.Dragged.DY)})
	default:
		if ac.engine.StrokeActive() {
			ac.sess.PaintMove(ac.engine, pos)
		} else {
			ac.sess.PaintDown(ac.engine, pos)
		}
	}
}

// DragEnd ends any live stroke.
func (ac *AnnotationCanvas) DragEnd() {
	ac.engine.PointerUp()
}

// Tapped paints a single dab with the brush or eraser tool.
func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	if ac.engine.Tool() == paint.ToolPan {
		return
	}
	pos := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	ac.sess.PaintDown(ac.engine, pos)
	ac.engine.PointerUp()
}

// Scrolled zooms with the mouse wheel. Zoom is viewport-center-agnostic.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		ac.sess.ZoomBy(transform.ZoomStep)
	} else if ev.Scrolled.DY < 0 {
		ac.sess.ZoomBy(1 / transform.ZoomStep)
	}
}

// MouseIn implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseMoved(*desktop.MouseEvent) {}

// MouseOut ends any live stroke when the pointer leaves the canvas.
func (ac *AnnotationCanvas) MouseOut() {
	ac.engine.PointerUp()
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}
