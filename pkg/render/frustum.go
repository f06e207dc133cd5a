package render

import (
	"math"

	"github.com/taigrr/plinth/pkg/math3d"
)

// Plane is Ax + By + Cz + D = 0 with (A, B, C) stored as Normal.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane so Normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance to point; positive is the
// side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six inward facing planes of a view volume, ordered
// left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a view-projection matrix
// (Gribb/Hartmann). Row i, column j of the column-major m is m[i+j*4].
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row := func(i int) (float64, float64, float64, float64) {
		return m[i], m[i+4], m[i+8], m[i+12]
	}
	x0, x1, x2, x3 := row(0)
	y0, y1, y2, y3 := row(1)
	z0, z1, z2, z3 := row(2)
	w0, w1, w2, w3 := row(3)

	var f Frustum
	f.Planes[FrustumLeft] = Plane{Normal: math3d.V3(w0+x0, w1+x1, w2+x2), D: w3 + x3}
	f.Planes[FrustumRight] = Plane{Normal: math3d.V3(w0-x0, w1-x1, w2-x2), D: w3 - x3}
	f.Planes[FrustumBottom] = Plane{Normal: math3d.V3(w0+y0, w1+y1, w2+y2), D: w3 + y3}
	f.Planes[FrustumTop] = Plane{Normal: math3d.V3(w0-y0, w1-y1, w2-y2), D: w3 - y3}
	f.Planes[FrustumNear] = Plane{Normal: math3d.V3(w0+z0, w1+z1, w2+z2), D: w3 + z3}
	f.Planes[FrustumFar] = Plane{Normal: math3d.V3(w0-z0, w1-z1, w2-z2), D: w3 - z3}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectAABB reports whether any part of box is inside the frustum.
// Only the corner furthest along each plane normal is tested.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		p := math3d.V3(
			pick(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// AABB is an axis-aligned bounding box. The zero value is a point at the
// origin; use EmptyAABB to start an accumulation.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// EmptyAABB returns an inverted box that any Union replaces.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Center returns the midpoint of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the edge lengths of the box.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Union returns the smallest box holding both boxes.
func (b AABB) Union(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Transform returns the box that bounds all eight transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := EmptyAABB()
	for i := range 8 {
		corner := math3d.V3(
			pick(i&1 != 0, b.Max.X, b.Min.X),
			pick(i&2 != 0, b.Max.Y, b.Min.Y),
			pick(i&4 != 0, b.Max.Z, b.Min.Z),
		)
		p := m.MulVec3(corner)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint reports whether p lies inside the box, borders included.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
