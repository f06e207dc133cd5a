package render

import (
	"image"
	"math"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // tile the texture
	WrapClamp                  // clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // nearest-neighbor (pixelated)
	FilterBilinear                   // bilinear interpolation (smooth)
)

// Texture holds a 2D image for texture mapping.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color // row-major, Y=0 at the top
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture creates an empty repeating, nearest-filtered texture.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:      width,
		Height:     height,
		Pixels:     make([]Color, width*height),
		WrapU:      WrapRepeat,
		WrapV:      WrapRepeat,
		FilterMode: FilterNearest,
	}
}

// TextureFromImage copies img into a new texture.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := range tex.Height {
			for x := range tex.Width {
				tex.Pixels[y*tex.Width+x] = rgba.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			}
		}
		return tex
	}

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit to 8-bit
			tex.Pixels[y*tex.Width+x] = Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
		}
	}
	return tex
}

// ColorStop is one entry of a gradient: Color at Offset, with Offset in [0,1].
type ColorStop struct {
	Offset float64
	Color  Color
}

// RadialGradient is a procedural circular gradient centred on the image.
// Offsets are fractions of the radius. Before the first stop the first
// color is used and past the last stop the last color is used.
type RadialGradient struct {
	Stops []ColorStop
}

// At returns the gradient color at fraction t of the radius.
func (g RadialGradient) At(t float64) Color {
	if len(g.Stops) == 0 {
		return Color{}
	}
	if t <= g.Stops[0].Offset {
		return g.Stops[0].Color
	}
	for i := 1; i < len(g.Stops); i++ {
		lo, hi := g.Stops[i-1], g.Stops[i]
		if t <= hi.Offset {
			span := hi.Offset - lo.Offset
			if span <= 0 {
				return hi.Color
			}
			return lerpColor(lo.Color, hi.Color, (t-lo.Offset)/span)
		}
	}
	return g.Stops[len(g.Stops)-1].Color
}

// Image renders the gradient into a new size x size image covering the
// whole canvas. Pixels are sampled at their centers and the radius is
// measured to the outermost texel centers, so the midpoints of each edge
// land exactly on the last stop.
func (g RadialGradient) Image(size int) *image.RGBA {
	size = max(size, 1)
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	c := float64(size) / 2
	radius := c - 0.5
	for y := range size {
		dy := float64(y) + 0.5 - c
		for x := range size {
			dx := float64(x) + 0.5 - c
			t := 1.0
			if radius > 0 {
				t = math.Sqrt(dx*dx+dy*dy) / radius
			}
			img.SetRGBA(x, y, g.At(t))
		}
	}
	return img
}

// Sample samples the texture at UV coordinates (0-1 range, V=0 at the bottom).
func (t *Texture) Sample(u, v float64) Color {
	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)
	v = 1.0 - v

	switch t.FilterMode {
	case FilterBilinear:
		return t.sampleBilinear(u, v)
	default:
		return t.sampleNearest(u, v)
	}
}

func wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		coord -= math.Floor(coord)
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	}
	return coord
}

func (t *Texture) pixel(x, y int) Color {
	return t.Pixels[y*t.Width+x]
}

func (t *Texture) sampleNearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.pixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapPixel(x0+1, t.Width, t.WrapU)
	y1 := wrapPixel(y0+1, t.Height, t.WrapV)
	x0 = wrapPixel(x0, t.Width, t.WrapU)
	y0 = wrapPixel(y0, t.Height, t.WrapV)

	top := lerpColor(t.pixel(x0, y0), t.pixel(x1, y0), tx)
	bot := lerpColor(t.pixel(x0, y1), t.pixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrapPixel(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x %= size
		if x < 0 {
			x += size
		}
	case WrapClamp:
		x = max(0, min(size-1, x))
	}
	return x
}

// lerpColor linearly interpolates between two colors, rounding to nearest.
func lerpColor(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// MultiplyColor scales RGB by intensity, rounding and saturating at 255.
func MultiplyColor(c Color, intensity float64) Color {
	scale := func(v uint8) uint8 {
		return uint8(math.Max(0, math.Min(255, math.Round(float64(v)*intensity))))
	}
	return Color{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

// ModulateColor multiplies two colors channel by channel (texture * tint).
func ModulateColor(a, b Color) Color {
	return Color{
		R: uint8((int(a.R) * int(b.R)) / 255),
		G: uint8((int(a.G) * int(b.G)) / 255),
		B: uint8((int(a.B) * int(b.B)) / 255),
		A: uint8((int(a.A) * int(b.A)) / 255),
	}
}
