package colorutil

import (
	"image/color"
	"testing"
)

func TestHueToRGBAPrimaries(t *testing.T) {
	cases := []struct {
		hue  float64
		want color.RGBA
	}{
		{0, color.RGBA{R: 255, A: 255}},
		{120, color.RGBA{G: 255, A: 255}},
		{240, color.RGBA{B: 255, A: 255}},
		{60, color.RGBA{R: 255, G: 255, A: 255}},
	}
	for _, c := range cases {
		if got := HueToRGBA(c.hue, 255); got != c.want {
			t.Errorf("hue %v gave %v, want %v", c.hue, got, c.want)
		}
	}
}

func TestHueToRGBAWrapsAndCarriesAlpha(t *testing.T) {
	if HueToRGBA(360, 255) != HueToRGBA(0, 255) {
		t.Error("hue 360 should wrap to 0")
	}
	if HueToRGBA(-120, 255) != HueToRGBA(240, 255) {
		t.Error("negative hue should wrap")
	}
	if got := HueToRGBA(90, 128); got.A != 128 {
		t.Errorf("alpha %d, want 128", got.A)
	}
}
