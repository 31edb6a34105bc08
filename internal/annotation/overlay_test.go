package annotation

import (
	"testing"

	"cellbrush/internal/mask"
)

func TestRenderRegionsPaintsEllipse(t *testing.T) {
	layer := mask.NewLayer()
	layer.Resize(100, 100)

	regions := []Region{
		{ID: "r1", Label: "cell", YMin: 0.2, XMin: 0.2, YMax: 0.8, XMax: 0.8},
	}
	RenderRegions(layer, regions, 100, 100)

	// Ellipse center is at the pixel rect center.
	if got := layer.Image().NRGBAAt(50, 50); got.A == 0 {
		t.Error("region center not painted")
	}
	// The rect corner lies outside the inscribed ellipse.
	if got := layer.Image().NRGBAAt(21, 21); got.A != 0 {
		t.Error("paint outside the inscribed ellipse")
	}
	// Well outside the region entirely.
	if got := layer.Image().NRGBAAt(5, 5); got.A != 0 {
		t.Error("paint outside the region rect")
	}
}

func TestRenderRegionsColorFollowsID(t *testing.T) {
	paintOne := func(id string) [3]uint8 {
		layer := mask.NewLayer()
		layer.Resize(60, 60)
		RenderRegions(layer, []Region{
			{ID: id, YMin: 0, XMin: 0, YMax: 1, XMax: 1},
		}, 60, 60)
		px := layer.Image().NRGBAAt(30, 30)
		return [3]uint8{px.R, px.G, px.B}
	}

	if paintOne("abc") != paintOne("abc") {
		t.Error("same id must render the same color")
	}
	if paintOne("abc") == paintOne("xyzw") {
		t.Error("expected different ids to render different colors")
	}
}

func TestRenderRegionsNoSurface(t *testing.T) {
	// Must not panic on an unallocated layer.
	RenderRegions(mask.NewLayer(), []Region{{ID: "x", YMax: 1, XMax: 1}}, 10, 10)
	RenderRegions(nil, nil, 10, 10)
}
