package geometry

import "testing"

func TestPointArithmetic(t *testing.T) {
	p := Point2D{X: 3, Y: 4}
	if d := p.Distance(Point2D{}); d != 5 {
		t.Errorf("distance %v, want 5", d)
	}
	if got := p.Add(Point2D{X: 1, Y: -1}); got.X != 4 || got.Y != 3 {
		t.Errorf("add gave %v", got)
	}
	if got := p.Sub(Point2D{X: 1, Y: 1}); got.X != 2 || got.Y != 3 {
		t.Errorf("sub gave %v", got)
	}
	if got := p.Scale(2); got.X != 6 || got.Y != 8 {
		t.Errorf("scale gave %v", got)
	}
}

func TestRectContainsAndCenter(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	if !r.Contains(Point2D{X: 15, Y: 15}) {
		t.Error("interior point reported outside")
	}
	if r.Contains(Point2D{X: 31, Y: 15}) {
		t.Error("exterior point reported inside")
	}
	if c := r.Center(); c.X != 20 || c.Y != 15 {
		t.Errorf("center %v", c)
	}
}
