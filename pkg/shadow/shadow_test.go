package shadow

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/render"
)

var white = color.RGBA{255, 255, 255, 255}

func TestGradientImageCenterAndEdges(t *testing.T) {
	img := GradientImage(TextureSize)
	require.Equal(t, TextureSize, img.Bounds().Dx())
	require.Equal(t, TextureSize, img.Bounds().Dy())

	for _, p := range [][2]int{{64, 64}, {63, 63}, {63, 64}, {64, 63}} {
		assert.Equal(t, color.RGBA{130, 130, 130, 255}, img.RGBAAt(p[0], p[1]), "center pixel %v", p)
	}

	last := TextureSize - 1
	edges := [][2]int{
		{0, 0}, {last, 0}, {0, last}, {last, last},
		{64, 0}, {63, 0}, {0, 64}, {0, 63},
		{64, last}, {last, 64},
	}
	for _, p := range edges {
		assert.Equal(t, white, img.RGBAAt(p[0], p[1]), "edge pixel %v", p)
	}
}

func TestGradientImageMonotone(t *testing.T) {
	img := GradientImage(TextureSize)
	c := TextureSize / 2

	rays := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}}
	for _, ray := range rays {
		prev := 0
		for step := 0; ; step++ {
			x, y := c+ray[0]*step, c+ray[1]*step
			if ray[0] < 0 {
				x--
			}
			if ray[1] < 0 {
				y--
			}
			if x < 0 || y < 0 || x >= TextureSize || y >= TextureSize {
				break
			}
			v := int(img.RGBAAt(x, y).R)
			require.GreaterOrEqual(t, v, prev, "ray %v step %d", ray, step)
			prev = v
		}
	}
}

func TestGradientImageOuterRegionIsWhite(t *testing.T) {
	img := GradientImage(TextureSize)
	c := float64(TextureSize) / 2
	radius := c - 0.5

	for y := range TextureSize {
		for x := range TextureSize {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			if d >= radius {
				require.Equal(t, white, img.RGBAAt(x, y), "pixel (%d,%d) at distance %.2f", x, y, d)
			}
		}
	}
}

func TestGradientImageSymmetric(t *testing.T) {
	img := GradientImage(TextureSize)
	last := TextureSize - 1

	for y := range TextureSize {
		for x := range TextureSize {
			p := img.RGBAAt(x, y)
			require.Equal(t, p, img.RGBAAt(last-x, y), "mirror x at (%d,%d)", x, y)
			require.Equal(t, p, img.RGBAAt(x, last-y), "mirror y at (%d,%d)", x, y)
			require.Equal(t, uint8(255), p.A)
			require.Equal(t, p.R, p.G)
			require.Equal(t, p.R, p.B)
		}
	}
}

func TestGradientImageIndependent(t *testing.T) {
	a := GradientImage(TextureSize)
	b := GradientImage(TextureSize)

	require.Equal(t, a.Pix, b.Pix)
	assert.NotSame(t, &a.Pix[0], &b.Pix[0])

	a.SetRGBA(64, 64, color.RGBA{0, 0, 0, 255})
	assert.Equal(t, color.RGBA{130, 130, 130, 255}, b.RGBAAt(64, 64))
}

func TestGradientImageInvalidSize(t *testing.T) {
	for _, size := range []int{0, -5} {
		img := GradientImage(size)
		assert.Equal(t, 1, img.Bounds().Dx())
		assert.Equal(t, white, img.RGBAAt(0, 0))
	}
}

func TestNewContactShadow(t *testing.T) {
	n := NewContactShadow()
	require.Len(t, n.Surfaces, 1)
	s := n.Surfaces[0]

	// Unit footprint before transforms.
	assert.Equal(t, math3d.V3(1, 1, 0), s.Mesh.Size())

	normal := n.Matrix().NormalMatrix().MulVec3Dir(math3d.V3(0, 0, 1)).Normalize()
	assert.True(t, normal.ApproxEqual(math3d.Up(), 1e-9), "normal = %v", normal)

	world := n.WorldBounds().Size()
	assert.True(t, world.ApproxEqual(math3d.V3(1, 0, 1), 1e-9), "world size = %v", world)

	mat := s.Material
	assert.Equal(t, render.BlendMultiply, mat.Blend)
	assert.False(t, mat.ToneMapped)
	assert.False(t, mat.DepthWrite)
	assert.True(t, mat.Transparent())
	require.NotNil(t, mat.Texture)
	assert.Equal(t, render.WrapClamp, mat.Texture.WrapU)
	assert.Equal(t, render.WrapClamp, mat.Texture.WrapV)
	assert.Equal(t, render.FilterBilinear, mat.Texture.FilterMode)
	assert.Equal(t, TextureSize, mat.Texture.Width)
}

func TestNewContactShadowIndependent(t *testing.T) {
	a, b := NewContactShadow(), NewContactShadow()

	ta, tb := a.Surfaces[0].Material.Texture, b.Surfaces[0].Material.Texture
	assert.NotSame(t, ta, tb)
	assert.NotSame(t, a.Surfaces[0].Mesh, b.Surfaces[0].Mesh)
	assert.Equal(t, ta.Pixels, tb.Pixels)

	ta.Pixels[0] = render.ColorBlack
	a.Surfaces[0].Mesh.Vertices[0].Position = math3d.V3(9, 9, 9)
	assert.Equal(t, white, tb.Pixels[0])
	assert.Equal(t, math3d.V3(-0.5, -0.5, 0), b.Surfaces[0].Mesh.Vertices[0].Position)
}

func TestPlace(t *testing.T) {
	n := NewContactShadow()
	bounds := render.AABB{Min: math3d.V3(1, -0.5, 2), Max: math3d.V3(3, 1.5, 3)}

	Place(n, bounds, DefaultOptions())

	assert.True(t, n.Position.ApproxEqual(math3d.V3(2, -0.499, 2.5), 1e-12), "position = %v", n.Position)
	assert.True(t, n.Scale.ApproxEqual(math3d.V3(3, 3, 3), 1e-12), "scale = %v", n.Scale)

	world := n.WorldBounds()
	assert.InDelta(t, -0.499, world.Min.Y, 1e-9)
	assert.InDelta(t, 3, world.Size().X, 1e-9)
	assert.InDelta(t, 3, world.Size().Z, 1e-9)
}

func TestPlaceDegenerate(t *testing.T) {
	n := NewContactShadow()
	Place(n, render.EmptyAABB(), DefaultOptions())
	assert.Equal(t, math3d.Zero3(), n.Position)
	assert.Equal(t, math3d.One3(), n.Scale)

	// A vertical line still gets a visible shadow.
	Place(n, render.AABB{Min: math3d.V3(0, 0, 0), Max: math3d.V3(0, 1, 0)}, Options{Scale: 2})
	assert.Equal(t, math3d.V3(2, 2, 2), n.Scale)
}
