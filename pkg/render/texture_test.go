package render

import (
	"image"
	"image/color"
	"testing"
)

func TestRadialGradientAt(t *testing.T) {
	g := RadialGradient{Stops: []ColorStop{
		{Offset: 0.1, Color: RGB(130, 130, 130)},
		{Offset: 1, Color: RGB(255, 255, 255)},
	}}

	tests := []struct {
		name string
		t    float64
		want uint8
	}{
		{"center clamps to first stop", 0, 130},
		{"first stop", 0.1, 130},
		{"last stop", 1, 255},
		{"past last stop", 1.7, 255},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.At(tc.t); got.R != tc.want || got.A != 255 {
				t.Errorf("At(%v) = %v, want gray %d", tc.t, got, tc.want)
			}
		})
	}

	// Halfway between the stops, within rounding.
	if got := g.At(0.55).R; got < 192 || got > 193 {
		t.Errorf("At(0.55) = %d, want 192 or 193", got)
	}
}

func TestRadialGradientImageCoversCanvas(t *testing.T) {
	g := RadialGradient{Stops: []ColorStop{
		{Offset: 0, Color: ColorBlack},
		{Offset: 1, Color: ColorWhite},
	}}
	img := g.Image(8)

	if img.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for _, p := range [][2]int{{0, 0}, {7, 0}, {0, 7}, {7, 7}, {4, 0}, {0, 4}} {
		if got := img.RGBAAt(p[0], p[1]); got != ColorWhite {
			t.Errorf("pixel %v = %v, want white", p, got)
		}
	}
	if got := img.RGBAAt(4, 4); got.R > 60 {
		t.Errorf("center pixel = %v, want dark", got)
	}

	if got := g.Image(0).Bounds().Dx(); got != 1 {
		t.Errorf("size 0 image width = %d, want 1", got)
	}
}

func TestTextureSampleWrap(t *testing.T) {
	tex := NewTexture(2, 2)
	// Image rows top to bottom: red green / blue white.
	tex.Pixels = []Color{ColorRed, ColorGreen, ColorBlue, ColorWhite}

	tests := []struct {
		name string
		wrap WrapMode
		u, v float64
		want Color
	}{
		{"bottom left", WrapRepeat, 0.25, 0.25, ColorBlue},
		{"top right", WrapRepeat, 0.75, 0.75, ColorGreen},
		{"repeat wraps", WrapRepeat, 1.25, 0.25, ColorBlue},
		{"clamp holds edge", WrapClamp, 5, 0.25, ColorWhite},
		{"clamp below", WrapClamp, -3, -3, ColorBlue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex.WrapU, tex.WrapV = tc.wrap, tc.wrap
			if got := tex.Sample(tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tc.u, tc.v, got, tc.want)
			}
		})
	}
}

func TestTextureSampleBilinear(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.Pixels = []Color{ColorBlack, ColorWhite}
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp
	tex.FilterMode = FilterBilinear

	if got := tex.Sample(0.5, 0.5); got.R != 128 {
		t.Errorf("midpoint = %v, want 128", got)
	}
	if got := tex.Sample(0, 0.5); got != ColorBlack {
		t.Errorf("left edge = %v, want black", got)
	}
	if got := tex.Sample(1, 0.5); got != ColorWhite {
		t.Errorf("right edge = %v, want white", got)
	}
}

func TestTextureFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	tex := TextureFromImage(src)
	if tex.Width != 3 || tex.Height != 2 {
		t.Fatalf("size = %dx%d", tex.Width, tex.Height)
	}
	if got := tex.Pixels[1*3+2]; got != RGB(10, 20, 30) {
		t.Errorf("pixel = %v", got)
	}
}

func TestModulateAndMultiplyColor(t *testing.T) {
	if got := ModulateColor(ColorWhite, RGB(10, 20, 30)); got != RGB(10, 20, 30) {
		t.Errorf("white modulate = %v", got)
	}
	if got := MultiplyColor(RGB(100, 200, 250), 2); got != RGB(200, 255, 255) {
		t.Errorf("saturating multiply = %v", got)
	}
}
