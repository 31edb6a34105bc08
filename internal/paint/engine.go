// Package paint translates pointer-drag input into mask draw operations.
package paint

import (
	"image/color"

	"cellbrush/internal/mask"
	"cellbrush/internal/transform"
	"cellbrush/pkg/colorutil"
	"cellbrush/pkg/geometry"
)

// Tool represents the current interaction tool.
type Tool int

const (
	ToolPan Tool = iota
	ToolBrush
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "Brush"
	case ToolEraser:
		return "Eraser"
	default:
		return "Pan"
	}
}

const (
	// DefaultBrushSize is the initial brush diameter in image pixels.
	DefaultBrushSize = 20.0
	minBrushSize     = 1.0
)

// brushColor is the opaque fill for manual strokes, distinct from any
// detection hue.
var brushColor = color.NRGBA{
	R: colorutil.Brush.R,
	G: colorutil.Brush.G,
	B: colorutil.Brush.B,
	A: 255,
}

// Engine holds stroke state for the brush and eraser tools. Brush size is
// a world-space diameter, so stroke width is invariant to zoom level.
type Engine struct {
	tool      Tool
	brushSize float64
	active    bool
}

// NewEngine creates a paint engine with the pan tool selected.
func NewEngine() *Engine {
	return &Engine{tool: ToolPan, brushSize: DefaultBrushSize}
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool {
	return e.tool
}

// SetTool selects the active tool. Switching tools ends any live stroke.
func (e *Engine) SetTool(tool Tool) {
	e.tool = tool
	e.active = false
}

// BrushSize returns the brush diameter in image pixels.
func (e *Engine) BrushSize() float64 {
	return e.brushSize
}

// SetBrushSize sets the brush diameter in image pixels.
func (e *Engine) SetBrushSize(size float64) {
	if size < minBrushSize {
		size = minBrushSize
	}
	e.brushSize = size
}

// StrokeActive reports whether a stroke is in progress.
func (e *Engine) StrokeActive() bool {
	return e.active
}

// PointerDown begins a stroke and applies one paint operation at the down
// position. Returns true if the mask was mutated. A no-op when the active
// tool is not brush or eraser, or when no mask surface is mounted.
func (e *Engine) PointerDown(layer *mask.Layer, screen geometry.Point2D, t transform.Transform) bool {
	if e.tool != ToolBrush && e.tool != ToolEraser {
		return false
	}
	e.active = true
	return e.apply(layer, screen, t)
}

// PointerMove applies one paint operation at the reported position while a
// stroke is active. Samples are not interpolated; gaps at high pointer
// velocity are accepted.
func (e *Engine) PointerMove(layer *mask.Layer, screen geometry.Point2D, t transform.Transform) bool {
	if !e.active {
		return false
	}
	return e.apply(layer, screen, t)
}

// PointerUp ends the stroke unconditionally. Also used for pointer-leave.
func (e *Engine) PointerUp() {
	e.active = false
}

// apply paints one disc at the world position under the screen point.
func (e *Engine) apply(layer *mask.Layer, screen geometry.Point2D, t transform.Transform) bool {
	if layer == nil || !layer.Allocated() || t.Scale <= 0 {
		return false
	}
	world := t.ScreenToWorld(screen)
	radius := e.brushSize / 2

	switch e.tool {
	case ToolBrush:
		layer.FillDisc(world, radius, brushColor)
	case ToolEraser:
		// Erasing removes mask pixels only; annotation records are kept.
		layer.EraseDisc(world, radius)
	default:
		return false
	}
	return true
}
