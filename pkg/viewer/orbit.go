package viewer

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/render"
)

const (
	minPolar = 0.01
	maxPolar = math.Pi - 0.01

	// restVelocity is the angular speed below which the orbit counts as stopped.
	restVelocity = 1e-5
)

// axis is one angular degree of freedom whose velocity springs back to 0.
type axis struct {
	Velocity float64
	accel    float64 // spring velocity of Velocity itself
	spring   harmonica.Spring
}

func newAxis(fps int, frequency float64) axis {
	// Damping 1.0 is critically damped: velocity decays without reversing.
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, 1.0)}
}

// step returns this frame's displacement and decays the velocity.
func (a *axis) step() float64 {
	d := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	if math.Abs(a.Velocity) < restVelocity {
		a.Velocity, a.accel = 0, 0
	}
	return d
}

func (a *axis) stop() {
	a.Velocity, a.accel = 0, 0
}

// OrbitControls keeps the camera on a sphere around Target.
// Polar is measured from +Y; azimuth 0 looks down -Z from +Z.
type OrbitControls struct {
	Target   math3d.Vec3
	Distance float64
	Azimuth  float64
	Polar    float64

	MinDistance float64
	MaxDistance float64
	RotateSpeed float64
	ZoomSpeed   float64

	azimuthVel axis
	polarVel   axis

	home orbitState
}

type orbitState struct {
	target                   math3d.Vec3
	distance, azimuth, polar float64
}

// NewOrbitControls derives the spherical state from a camera position and
// target and remembers it for Reset.
func NewOrbitControls(position, target math3d.Vec3, fps int, damping float64) *OrbitControls {
	o := &OrbitControls{
		MinDistance: 0.1,
		MaxDistance: math.Inf(1),
		RotateSpeed: 0.05,
		ZoomSpeed:   0.1,
		azimuthVel:  newAxis(fps, damping),
		polarVel:    newAxis(fps, damping),
	}
	o.SetView(position, target)
	return o
}

// SetView moves the orbit so the camera sits at position looking at target,
// and makes that the home view.
func (o *OrbitControls) SetView(position, target math3d.Vec3) {
	offset := position.Sub(target)
	o.Target = target
	o.Distance = offset.Len()
	if o.Distance > 0 {
		o.Polar = math.Acos(max(-1, min(1, offset.Y/o.Distance)))
		o.Azimuth = math.Atan2(offset.X, offset.Z)
	} else {
		o.Distance, o.Polar = 1, math.Pi/2
	}
	o.clamp()
	o.home = o.state()
}

func (o *OrbitControls) state() orbitState {
	return orbitState{o.Target, o.Distance, o.Azimuth, o.Polar}
}

// SetTarget moves the point the camera orbits, keeping angles and distance.
// The home view follows.
func (o *OrbitControls) SetTarget(target math3d.Vec3) {
	o.Target = target
	o.home.target = target
}

// Rotate turns the view by dx, dy input units and leaves the matching
// velocity behind so the motion coasts to a stop.
func (o *OrbitControls) Rotate(dx, dy float64) {
	da, dp := -dx*o.RotateSpeed, -dy*o.RotateSpeed
	o.Azimuth += da
	o.Polar += dp
	o.azimuthVel.Velocity = da
	o.polarVel.Velocity = dp
	o.clamp()
}

// Zoom scales the distance; positive delta moves closer.
func (o *OrbitControls) Zoom(delta float64) {
	o.Distance *= math.Pow(1-o.ZoomSpeed, delta)
	o.clamp()
}

// Pan slides the target across the view plane of cam.
func (o *OrbitControls) Pan(cam *render.Camera, dx, dy float64) {
	k := o.Distance * o.RotateSpeed * 0.2
	move := cam.Right().Scale(-dx * k).Add(cam.Up().Scale(dy * k))
	o.Target = o.Target.Add(move)
}

// Update advances the damping by one frame and reports whether the orbit
// is still moving.
func (o *OrbitControls) Update() bool {
	o.Azimuth += o.azimuthVel.step()
	o.Polar += o.polarVel.step()
	o.clamp()
	return o.Moving()
}

// Moving reports whether any velocity remains.
func (o *OrbitControls) Moving() bool {
	return o.azimuthVel.Velocity != 0 || o.polarVel.Velocity != 0
}

// Reset returns to the home view and stops all motion.
func (o *OrbitControls) Reset() {
	o.Target = o.home.target
	o.Distance = o.home.distance
	o.Azimuth = o.home.azimuth
	o.Polar = o.home.polar
	o.azimuthVel.stop()
	o.polarVel.stop()
}

// Position returns the camera position for the current state.
func (o *OrbitControls) Position() math3d.Vec3 {
	sp, cp := math.Sincos(o.Polar)
	sa, ca := math.Sincos(o.Azimuth)
	return o.Target.Add(math3d.V3(sp*sa, cp, sp*ca).Scale(o.Distance))
}

// Apply moves cam onto the sphere and points it at the target.
func (o *OrbitControls) Apply(cam *render.Camera) {
	cam.SetPosition(o.Position())
	cam.LookAt(o.Target)
}

func (o *OrbitControls) clamp() {
	if o.Polar < minPolar {
		o.Polar = minPolar
		o.polarVel.stop()
	} else if o.Polar > maxPolar {
		o.Polar = maxPolar
		o.polarVel.stop()
	}
	o.Distance = max(o.MinDistance, min(o.MaxDistance, o.Distance))
}
