// Package shadow generates the fake contact shadow drawn under a model: a
// plane textured with a soft radial gradient and multiplied onto whatever
// is behind it.
package shadow

import (
	"image"
	"math"

	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/models"
	"github.com/taigrr/plinth/pkg/render"
	"github.com/taigrr/plinth/pkg/scene"
)

// TextureSize is the edge length of the gradient texture in pixels.
const TextureSize = 128

// Gradient stops, as fractions of the radius.
const (
	InnerStop = 0.1
	OuterStop = 1.0
)

var (
	InnerColor = render.RGB(130, 130, 130)
	OuterColor = render.RGB(255, 255, 255)
)

// Gradient returns the shadow falloff: InnerColor up to InnerStop, a
// linear ramp to OuterColor at OuterStop, and OuterColor beyond.
func Gradient() render.RadialGradient {
	return render.RadialGradient{Stops: []render.ColorStop{
		{Offset: InnerStop, Color: InnerColor},
		{Offset: OuterStop, Color: OuterColor},
	}}
}

// GradientImage draws the shadow gradient into a fresh size x size image.
// The whole canvas is filled; corners and edge midpoints are OuterColor.
// Sizes below 1 are treated as 1.
func GradientImage(size int) *image.RGBA {
	return Gradient().Image(size)
}

// NewContactShadow returns a new shadow node: a 1x1 plane lying flat with
// its face toward +Y, textured with the gradient and drawn with multiply
// blending, no tone mapping and no depth writes. Every call allocates its
// own mesh and texture.
func NewContactShadow() *scene.Node {
	tex := render.TextureFromImage(GradientImage(TextureSize))
	tex.WrapU, tex.WrapV = render.WrapClamp, render.WrapClamp
	tex.FilterMode = render.FilterBilinear

	mat := render.Material{
		Color:   render.ColorWhite,
		Texture: tex,
		Blend:   render.BlendMultiply,
		Unlit:   true,
	}

	n := scene.NewNode("contact-shadow", scene.Surface{
		Mesh:     models.NewPlane(1, 1),
		Material: mat,
	})
	n.Rotation = math3d.V3(-math.Pi/2, 0, 0)
	return n
}

// Options controls Place.
type Options struct {
	// Scale multiplies the larger horizontal extent of the model.
	Scale float64
	// Offset lifts the plane above the model's lowest point so the two
	// never share a depth.
	Offset float64
}

// DefaultOptions returns the standard placement.
func DefaultOptions() Options {
	return Options{Scale: 1.5, Offset: 0.001}
}

// Place centers the shadow under the footprint of bounds, at its floor,
// and scales it uniformly to Scale times the larger of the X and Z sizes.
// Empty bounds leave the node unchanged.
func Place(n *scene.Node, bounds render.AABB, opts Options) {
	if bounds.IsEmpty() {
		return
	}
	center := bounds.Center()
	size := bounds.Size()

	extent := opts.Scale * max(size.X, size.Z)
	if extent <= 0 {
		extent = opts.Scale
	}
	n.Position = math3d.V3(center.X, bounds.Min.Y+opts.Offset, center.Z)
	n.Scale = math3d.V3(extent, extent, extent)
}
