package render

import (
	"math"

	"github.com/taigrr/plinth/pkg/math3d"
)

// BlendMode selects how a fragment combines with the framebuffer.
type BlendMode int

const (
	BlendOpaque   BlendMode = iota // replace
	BlendAlpha                     // src*a + dst*(1-a)
	BlendMultiply                  // dst*src/255; white leaves dst unchanged
)

func (b BlendMode) String() string {
	switch b {
	case BlendAlpha:
		return "alpha"
	case BlendMultiply:
		return "multiply"
	default:
		return "opaque"
	}
}

// Material describes how DrawSurface shades a mesh.
type Material struct {
	Color       Color    // base tint, multiplied with Texture when set
	Texture     *Texture // optional base color map
	Blend       BlendMode
	ToneMapped  bool // run fragments through the rasterizer's tone mapper
	DepthWrite  bool // update the depth buffer on pass
	DoubleSided bool // draw back faces too
	Unlit       bool // skip lighting; output Color*Texture as is
}

// DefaultMaterial is an opaque, lit, tone mapped white surface.
func DefaultMaterial() Material {
	return Material{
		Color:      ColorWhite,
		ToneMapped: true,
		DepthWrite: true,
	}
}

// Transparent reports whether the material blends with what is already drawn.
// Transparent surfaces have to be drawn after all opaque ones.
func (m Material) Transparent() bool {
	return m.Blend != BlendOpaque
}

func blendPixel(dst, src Color, mode BlendMode) Color {
	switch mode {
	case BlendAlpha:
		if src.A == 255 {
			return src
		}
		out := lerpColor(dst, src, float64(src.A)/255)
		out.A = max(dst.A, src.A)
		return out
	case BlendMultiply:
		product := Color{
			R: uint8(int(dst.R) * int(src.R) / 255),
			G: uint8(int(dst.G) * int(src.G) / 255),
			B: uint8(int(dst.B) * int(src.B) / 255),
			A: dst.A,
		}
		if src.A == 255 {
			return product
		}
		return lerpColor(dst, product, float64(src.A)/255)
	default:
		return src
	}
}

// Lighting is a single directional light plus an ambient term.
// Direction points from the surface toward the light.
type Lighting struct {
	Direction math3d.Vec3
	Ambient   float64
	Diffuse   float64
}

// DefaultLighting is a key light from above and in front.
func DefaultLighting() Lighting {
	return Lighting{
		Direction: math3d.V3(0.5, 1, 0.8).Normalize(),
		Ambient:   0.3,
		Diffuse:   0.7,
	}
}

// Intensity returns the Lambert term for a unit world-space normal.
func (l Lighting) Intensity(normal math3d.Vec3) float64 {
	dir := l.Direction.Normalize()
	return l.Ambient + l.Diffuse*math.Max(0, normal.Dot(dir))
}
