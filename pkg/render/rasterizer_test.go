package render

import (
	"math"
	"testing"

	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/models"
)

// mockMesh implements BoundedMeshRenderer for testing.
type mockMesh struct {
	vertices []struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}
	faces [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

func (m *mockMesh) GetBounds() (min, max math3d.Vec3) {
	min, max = m.vertices[0].pos, m.vertices[0].pos
	for _, v := range m.vertices[1:] {
		min = min.Min(v.pos)
		max = max.Max(v.pos)
	}
	return min, max
}

func (m *mockMesh) add(pos math3d.Vec3, uv math3d.Vec2) {
	m.vertices = append(m.vertices, struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}{pos, math3d.V3(0, 0, 1), uv})
}

// newQuad returns a unit quad in the XY plane facing +Z, wound clockwise
// as seen from the front.
func newQuad() *mockMesh {
	m := &mockMesh{}
	m.add(math3d.V3(-0.5, -0.5, 0), math3d.V2(0, 0))
	m.add(math3d.V3(0.5, -0.5, 0), math3d.V2(1, 0))
	m.add(math3d.V3(0.5, 0.5, 0), math3d.V2(1, 1))
	m.add(math3d.V3(-0.5, 0.5, 0), math3d.V2(0, 1))
	m.faces = [][3]int{{0, 2, 1}, {0, 3, 2}}
	return m
}

// createTestRasterizer looks down -Z from z=10 at the origin.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 3)
	camera.SetClipPlanes(0.1, 100)
	r := NewRasterizer(camera, fb)
	r.BeginFrame()
	return r, fb
}

func unlit(c Color) Material {
	m := DefaultMaterial()
	m.Color = c
	m.Unlit = true
	m.ToneMapped = false
	return m
}

func countNot(fb *Framebuffer, bg Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p != bg {
			n++
		}
	}
	return n
}

func TestDrawSurfaceFrontFace(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	fb.Clear(ColorBlack)

	r.DrawSurface(newQuad(), math3d.ScaleUniform(4), unlit(ColorRed), DefaultLighting())

	if got := fb.GetPixel(20, 20); got != ColorRed {
		t.Errorf("center pixel = %v, want red", got)
	}
	if got := fb.GetPixel(0, 0); got != ColorBlack {
		t.Errorf("corner pixel = %v, want background", got)
	}
	if d := r.Depth(20, 20); d == math.MaxFloat64 {
		t.Error("opaque surface should write depth")
	}
}

func TestDrawSurfaceBackFace(t *testing.T) {
	flipped := math3d.RotateY(math.Pi).Mul(math3d.ScaleUniform(4))

	t.Run("culled", func(t *testing.T) {
		r, fb := createTestRasterizer(40, 40)
		fb.Clear(ColorBlack)
		r.DrawSurface(newQuad(), flipped, unlit(ColorRed), DefaultLighting())
		if n := countNot(fb, ColorBlack); n != 0 {
			t.Errorf("back face drew %d pixels, want 0", n)
		}
	})

	t.Run("double sided", func(t *testing.T) {
		r, fb := createTestRasterizer(40, 40)
		fb.Clear(ColorBlack)
		mat := unlit(ColorRed)
		mat.DoubleSided = true
		r.DrawSurface(newQuad(), flipped, mat, DefaultLighting())
		if got := fb.GetPixel(20, 20); got != ColorRed {
			t.Errorf("center pixel = %v, want red", got)
		}
	})
}

func TestDrawSurfaceDepthTest(t *testing.T) {
	near := math3d.Translate(math3d.V3(0, 0, 1)).Mul(math3d.ScaleUniform(4))
	far := math3d.Translate(math3d.V3(0, 0, -1)).Mul(math3d.ScaleUniform(4))

	for _, order := range []string{"near first", "far first"} {
		t.Run(order, func(t *testing.T) {
			r, fb := createTestRasterizer(40, 40)
			fb.Clear(ColorBlack)
			if order == "near first" {
				r.DrawSurface(newQuad(), near, unlit(ColorRed), DefaultLighting())
				r.DrawSurface(newQuad(), far, unlit(ColorBlue), DefaultLighting())
			} else {
				r.DrawSurface(newQuad(), far, unlit(ColorBlue), DefaultLighting())
				r.DrawSurface(newQuad(), near, unlit(ColorRed), DefaultLighting())
			}
			if got := fb.GetPixel(20, 20); got != ColorRed {
				t.Errorf("center pixel = %v, want the nearer red quad", got)
			}
		})
	}
}

func TestDrawSurfaceMultiplyBlend(t *testing.T) {
	tests := []struct {
		name string
		src  Color
		want Color
	}{
		{"gray darkens", RGB(128, 128, 128), RGBA(100, 50, 25, 255)},
		{"white is neutral", ColorWhite, RGBA(200, 100, 50, 255)},
		{"black zeroes", ColorBlack, RGBA(0, 0, 0, 255)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(40, 40)
			fb.Clear(RGB(200, 100, 50))

			mat := unlit(tc.src)
			mat.Blend = BlendMultiply
			mat.DepthWrite = false
			r.DrawSurface(newQuad(), math3d.ScaleUniform(4), mat, DefaultLighting())

			if got := fb.GetPixel(20, 20); got != tc.want {
				t.Errorf("center pixel = %v, want %v", got, tc.want)
			}
			if d := r.Depth(20, 20); d != math.MaxFloat64 {
				t.Errorf("depth = %v, want untouched", d)
			}
		})
	}
}

// Pixels on the diagonal shared by the plane's two triangles must be
// blended exactly once, or multiply surfaces show a dark seam.
func TestDrawSurfaceSharedEdgeCoveredOnce(t *testing.T) {
	gray := RGB(128, 128, 128)
	mat := unlit(gray)
	mat.Blend = BlendMultiply
	mat.DepthWrite = false

	transforms := map[string]math3d.Mat4{
		"facing":  math3d.Identity(),
		"turned":  math3d.RotateZ(math.Pi / 4),
		"tilted":  math3d.RotateX(-math.Pi / 3).Mul(math3d.RotateZ(0.3)),
		"scaled":  math3d.ScaleUniform(1.7),
		"shifted": math3d.Translate(math3d.V3(0.13, -0.07, 0)),
	}

	for name, transform := range transforms {
		for _, size := range []int{16, 20, 31, 40, 41, 64} {
			for _, dist := range []float64{2, 3, 4, 5.5, 8} {
				fb := NewFramebuffer(size, size)
				fb.Clear(ColorWhite)
				cam := NewCamera()
				cam.SetAspectRatio(1)
				cam.SetFOV(math.Pi / 3)
				cam.SetClipPlanes(0.1, 100)
				cam.SetPosition(math3d.V3(0, 0, dist))
				cam.LookAt(math3d.Zero3())
				r := NewRasterizer(cam, fb)
				r.BeginFrame()

				r.DrawSurface(models.NewPlane(1, 1), transform, mat, DefaultLighting())

				covered := 0
				for i, p := range fb.Pixels {
					switch p.R {
					case 255:
					case 128:
						covered++
					default:
						t.Fatalf("%s size=%d dist=%v: pixel %d = %v, want 255 or 128", name, size, dist, i, p)
					}
				}
				if covered == 0 {
					t.Errorf("%s size=%d dist=%v: plane covered no pixels", name, size, dist)
				}
			}
		}
	}
}

func TestTopLeftRule(t *testing.T) {
	tests := []struct {
		name string
		A, B float64
		want bool
	}{
		{"left edge", 1, 0.5, true},
		{"right edge", -1, 0.5, false},
		{"top edge", 0, 1, true},
		{"bottom edge", 0, -1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := topLeft(tc.A, tc.B); got != tc.want {
				t.Errorf("topLeft(%v, %v) = %v, want %v", tc.A, tc.B, got, tc.want)
			}
			// The same edge walked the other way belongs to the neighbor.
			if topLeft(-tc.A, -tc.B) == topLeft(tc.A, tc.B) {
				t.Error("an edge and its reverse must not both own shared pixels")
			}
		})
	}
}

func TestDrawSurfaceWithoutDepthWriteDoesNotOcclude(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	fb.Clear(ColorWhite)

	overlay := unlit(RGB(128, 128, 128))
	overlay.Blend = BlendMultiply
	overlay.DepthWrite = false
	r.DrawSurface(newQuad(), math3d.Translate(math3d.V3(0, 0, 1)).Mul(math3d.ScaleUniform(4)), overlay, DefaultLighting())

	// A farther opaque quad still passes the depth test.
	r.DrawSurface(newQuad(), math3d.ScaleUniform(4), unlit(ColorGreen), DefaultLighting())
	if got := fb.GetPixel(20, 20); got != ColorGreen {
		t.Errorf("center pixel = %v, want green", got)
	}
}

func TestDrawSurfaceToneMappingOptOut(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	r.ToneMapper = NewToneMapper(ToneMappingReinhard, 1)

	mat := unlit(ColorWhite)
	r.DrawSurface(newQuad(), math3d.ScaleUniform(4), mat, DefaultLighting())
	if got := fb.GetPixel(20, 20); got != ColorWhite {
		t.Errorf("ToneMapped=false pixel = %v, want white", got)
	}

	r.BeginFrame()
	mat.ToneMapped = true
	r.DrawSurface(newQuad(), math3d.ScaleUniform(4), mat, DefaultLighting())
	if got := fb.GetPixel(20, 20); got.R >= 255 {
		t.Errorf("ToneMapped=true pixel = %v, want compressed below white", got)
	}
}

func TestDrawSurfaceLighting(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	mat := DefaultMaterial()
	mat.ToneMapped = false

	facing := Lighting{Direction: math3d.V3(0, 0, 1), Ambient: 0.2, Diffuse: 0.8}
	r.DrawSurface(newQuad(), math3d.ScaleUniform(4), mat, facing)
	lit := fb.GetPixel(20, 20)

	r.BeginFrame()
	away := Lighting{Direction: math3d.V3(0, 0, -1), Ambient: 0.2, Diffuse: 0.8}
	r.DrawSurface(newQuad(), math3d.ScaleUniform(4), mat, away)
	dark := fb.GetPixel(20, 20)

	if lit.R != 255 {
		t.Errorf("fully lit pixel = %v, want 255", lit)
	}
	if dark.R != 51 {
		t.Errorf("ambient only pixel = %v, want 51", dark)
	}
}

func TestDrawSurfaceTextured(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)

	// Left half red, right half blue.
	tex := NewTexture(2, 1)
	tex.Pixels[0] = ColorRed
	tex.Pixels[1] = ColorBlue
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp

	mat := unlit(ColorWhite)
	mat.Texture = tex
	r.DrawSurface(newQuad(), math3d.ScaleUniform(4), mat, DefaultLighting())

	if got := fb.GetPixel(14, 20); got != ColorRed {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := fb.GetPixel(26, 20); got != ColorBlue {
		t.Errorf("right pixel = %v, want blue", got)
	}
}

func TestDrawSurfaceFrustumCulling(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	fb.Clear(ColorBlack)

	r.DrawSurface(newQuad(), math3d.Translate(math3d.V3(100, 0, 0)), unlit(ColorRed), DefaultLighting())
	r.DrawSurface(newQuad(), math3d.Identity(), unlit(ColorRed), DefaultLighting())

	want := CullingStats{MeshesTested: 2, MeshesCulled: 1, MeshesDrawn: 1}
	if r.CullingStats != want {
		t.Errorf("stats = %+v, want %+v", r.CullingStats, want)
	}
}

func TestDrawMeshWireframe(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	fb.Clear(ColorBlack)

	r.DrawMeshWireframe(newQuad(), math3d.ScaleUniform(4), ColorGreen)

	if countNot(fb, ColorBlack) == 0 {
		t.Fatal("wireframe drew nothing")
	}
	// Edges only: the interior stays clear.
	if got := fb.GetPixel(15, 23); got != ColorBlack {
		t.Errorf("interior pixel = %v, want background", got)
	}
}

func TestRasterizerDepthBuffer(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	if d := r.Depth(5, 5); d != math.MaxFloat64 {
		t.Errorf("cleared depth = %v", d)
	}
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if d := r.Depth(p[0], p[1]); d != math.MaxFloat64 {
			t.Errorf("Depth(%d, %d) = %v, want MaxFloat64", p[0], p[1], d)
		}
	}
}

func TestLightingIntensity(t *testing.T) {
	l := Lighting{Direction: math3d.V3(0, 2, 0), Ambient: 0.3, Diffuse: 0.7}

	tests := []struct {
		name   string
		normal math3d.Vec3
		want   float64
	}{
		{"facing", math3d.V3(0, 1, 0), 1},
		{"grazing", math3d.V3(1, 0, 0), 0.3},
		{"away", math3d.V3(0, -1, 0), 0.3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.Intensity(tc.normal); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Intensity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBlendPixelAlpha(t *testing.T) {
	got := blendPixel(RGB(0, 0, 0), RGBA(255, 255, 255, 128), BlendAlpha)
	if got.R != 128 || got.A != 255 {
		t.Errorf("half alpha white over black = %v", got)
	}
	if got := blendPixel(ColorRed, ColorBlue, BlendOpaque); got != ColorBlue {
		t.Errorf("opaque = %v, want src", got)
	}
}

func BenchmarkDrawSurface(b *testing.B) {
	r, fb := createTestRasterizer(160, 90)
	quad := newQuad()
	mat := DefaultMaterial()
	light := DefaultLighting()

	for b.Loop() {
		fb.Clear(ColorBlack)
		r.BeginFrame()
		r.DrawSurface(quad, math3d.ScaleUniform(6), mat, light)
	}
}
