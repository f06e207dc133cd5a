package render

import (
	"math"

	"github.com/taigrr/plinth/pkg/math3d"
)

// MeshRenderer is the geometry DrawSurface consumes. models.Mesh
// satisfies it; render does not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a MeshRenderer that knows its local bounds, which
// enables frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// CullingStats counts frustum culling decisions for the current frame.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// Rasterizer draws triangles into a Framebuffer with a depth buffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64
	frustum Frustum

	// ToneMapper is applied to fragments of materials with ToneMapped set.
	// Nil leaves colors unchanged.
	ToneMapper   *ToneMapper
	CullingStats CullingStats
}

// NewRasterizer creates a rasterizer drawing into fb as seen from camera.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	return r
}

// Resize matches the depth buffer to the framebuffer. Call it after the
// framebuffer is resized.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// BeginFrame clears depth, resets the culling counters and captures the
// camera frustum. Call it once per frame before drawing.
func (r *Rasterizer) BeginFrame() {
	r.ClearDepth()
	r.CullingStats = CullingStats{}
	r.frustum = r.camera.Frustum()
}

// ClearDepth resets every depth sample to the far limit.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// Depth returns the stored depth at (x, y), MaxFloat64 when out of range
// or never written.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// IsVisible tests a world-space box against the frustum captured by
// BeginFrame.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.frustum.IntersectAABB(worldBounds)
}

// cull reports whether mesh can be skipped entirely.
func (r *Rasterizer) cull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	lo, hi := bounded.GetBounds()
	if !r.IsVisible(AABB{Min: lo, Max: hi}.Transform(transform)) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// DrawMeshWireframe draws every triangle edge of mesh.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.cull(mesh, transform) {
		return
	}

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)

		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		r.drawLine3D(v0, v1, color)
		r.drawLine3D(v1, v2, color)
		r.drawLine3D(v2, v0, color)
	}
}

// drawLine3D projects a segment and draws it. Segments with an end behind
// the camera are dropped rather than clipped.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()

	clipA := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	clipB := viewProj.MulVec4(math3d.V4FromV3(b, 1))
	if clipA.W <= 0 || clipB.W <= 0 {
		return
	}

	x0, y0 := r.toScreen(clipA.X/clipA.W, clipA.Y/clipA.W)
	x1, y1 := r.toScreen(clipB.X/clipB.W, clipB.Y/clipB.W)
	r.fb.DrawLine(int(x0), int(y0), int(x1), int(y1), color)
}

// toScreen maps NDC x, y to pixel coordinates with Y pointing down.
func (r *Rasterizer) toScreen(x, y float64) (float64, float64) {
	return (x + 1) * 0.5 * float64(r.Width()), (1 - y) * 0.5 * float64(r.Height())
}
