package render

import (
	"math"

	"github.com/taigrr/plinth/pkg/math3d"
)

// Camera is a perspective camera with Euler orientation.
type Camera struct {
	Position math3d.Vec3

	// Orientation in radians.
	Pitch float64 // around X, look up/down
	Yaw   float64 // around Y, look left/right
	Roll  float64 // around Z

	FOV         float64 // vertical field of view in radians
	AspectRatio float64 // width / height
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCamera returns a 45 degree camera up and to the left of the origin,
// looking at it.
func NewCamera() *Camera {
	c := &Camera{
		Position:    math3d.V3(-1.8, 0.6, 2.7),
		FOV:         math.Pi / 4,
		AspectRatio: 16.0 / 9.0,
		Near:        0.25,
		Far:         20,
	}
	c.LookAt(math3d.Zero3())
	c.projDirty = true
	return c
}

func (c *Camera) touchView() {
	c.viewDirty = true
	c.viewProjDirty = true
}

func (c *Camera) touchProj() {
	c.projDirty = true
	c.viewProjDirty = true
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.touchView()
}

// SetRotation sets pitch, yaw and roll in radians.
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.Pitch = pitch
	c.Yaw = yaw
	c.Roll = roll
	c.touchView()
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.touchProj()
}

// SetAspectRatio sets width / height.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.touchProj()
}

// SetClipPlanes sets the near and far clipping distances.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.touchProj()
}

// Forward returns the viewing direction (-Z rotated by yaw and pitch).
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the camera's horizontal right vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// Up returns the camera's up vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the world to camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		rot := math3d.RotateZ(-c.Roll).Mul(
			math3d.RotateX(-c.Pitch)).Mul(
			math3d.RotateY(-c.Yaw))
		c.viewMatrix = rot.Mul(math3d.Translate(c.Position.Negate()))
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewProjDirty || c.viewDirty || c.projDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// LookAt turns the camera toward target. Roll is reset.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	if dir.LenSq() == 0 {
		return
	}

	c.Pitch = math.Asin(max(-1, min(1, dir.Y)))
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.Roll = 0
	c.touchView()
}

// WorldToScreen projects a world point to pixel coordinates. visible is
// false for points behind the camera or outside the clip volume.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight)
	return x, y, ndc.Z, true
}
