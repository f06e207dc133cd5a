package models

import "github.com/taigrr/plinth/pkg/math3d"

// NewPlane builds a width x height rectangle in the XY plane, centered on
// the origin and facing +Z, with UVs spanning 0..1 (V up). Faces use the
// engine's clockwise front-face winding.
func NewPlane(width, height float64) *Mesh {
	hw, hh := width/2, height/2
	up := math3d.V3(0, 0, 1)

	m := NewMesh("plane")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(-hw, -hh, 0), Normal: up, UV: math3d.V2(0, 0)},
		{Position: math3d.V3(hw, -hh, 0), Normal: up, UV: math3d.V2(1, 0)},
		{Position: math3d.V3(hw, hh, 0), Normal: up, UV: math3d.V2(1, 1)},
		{Position: math3d.V3(-hw, hh, 0), Normal: up, UV: math3d.V2(0, 1)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 2, 1}, Material: -1},
		{V: [3]int{0, 3, 2}, Material: -1},
	}
	m.CalculateBounds()
	return m
}
