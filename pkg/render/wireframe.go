package render

import (
	"github.com/taigrr/plinth/pkg/math3d"
)

// Wireframe draws helper lines (grid, axes, boxes) straight into the
// framebuffer, without depth testing.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a line renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{camera: camera, fb: fb}
}

// DrawLine3D draws a world-space segment. It is skipped when either end is
// behind the camera.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	viewProj := w.camera.ViewProjectionMatrix()
	a := viewProj.MulVec4(math3d.V4FromV3(p1, 1))
	b := viewProj.MulVec4(math3d.V4FromV3(p2, 1))
	if a.W <= 0 || b.W <= 0 {
		return
	}

	fw, fh := float64(w.fb.Width), float64(w.fb.Height)
	x0 := (a.X/a.W + 1) * 0.5 * fw
	y0 := (1 - a.Y/a.W) * 0.5 * fh
	x1 := (b.X/b.W + 1) * 0.5 * fw
	y1 := (1 - b.Y/b.W) * 0.5 * fh
	w.fb.DrawLine(int(x0), int(y0), int(x1), int(y1), color)
}

// DrawGrid draws a size x size grid on the horizontal plane at height y,
// centered on the origin, with a line every step units.
func (w *Wireframe) DrawGrid(y, size, step float64, color Color) {
	if step <= 0 {
		return
	}
	half := size / 2
	for x := -half; x <= half+1e-9; x += step {
		w.DrawLine3D(math3d.V3(x, y, -half), math3d.V3(x, y, half), color)
	}
	for z := -half; z <= half+1e-9; z += step {
		w.DrawLine3D(math3d.V3(-half, y, z), math3d.V3(half, y, z), color)
	}
}

// DrawAxes draws X, Y and Z from origin in red, green and blue.
func (w *Wireframe) DrawAxes(origin math3d.Vec3, length float64) {
	w.DrawLine3D(origin, origin.Add(math3d.V3(length, 0, 0)), ColorRed)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, length, 0)), ColorGreen)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, 0, length)), ColorBlue)
}

// DrawBox draws the twelve edges of box.
func (w *Wireframe) DrawBox(box AABB, color Color) {
	var c [8]math3d.Vec3
	for i := range c {
		c[i] = math3d.V3(
			pick(i&1 != 0, box.Max.X, box.Min.X),
			pick(i&2 != 0, box.Max.Y, box.Min.Y),
			pick(i&4 != 0, box.Max.Z, box.Min.Z),
		)
	}
	// Corners differing in exactly one bit share an edge.
	for i := range c {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				w.DrawLine3D(c[i], c[i|bit], color)
			}
		}
	}
}
