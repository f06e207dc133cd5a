// Package scene holds what the viewer draws: nodes carrying meshes and
// materials, plus the scene-wide background, light and tone mapping.
package scene

import (
	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/models"
	"github.com/taigrr/plinth/pkg/render"
)

// Surface is a mesh drawn with one material.
type Surface struct {
	Mesh     *models.Mesh
	Material render.Material
}

// Node places one or more surfaces in the world.
type Node struct {
	Name     string
	Surfaces []Surface

	Position math3d.Vec3
	Rotation math3d.Vec3 // Euler XYZ, radians
	Scale    math3d.Vec3

	Visible bool
	// Order sorts transparent surfaces; lower draws first.
	Order int
}

// NewNode returns a visible node at the origin with unit scale.
func NewNode(name string, surfaces ...Surface) *Node {
	return &Node{
		Name:     name,
		Surfaces: surfaces,
		Scale:    math3d.One3(),
		Visible:  true,
	}
}

// Matrix returns the local to world transform T * Rx * Ry * Rz * S.
func (n *Node) Matrix() math3d.Mat4 {
	return math3d.TRS(n.Position, n.Rotation, n.Scale)
}

// LocalBounds is the union of the surface bounds before the node transform.
func (n *Node) LocalBounds() render.AABB {
	box := render.EmptyAABB()
	for _, s := range n.Surfaces {
		if s.Mesh == nil || s.Mesh.VertexCount() == 0 {
			continue
		}
		lo, hi := s.Mesh.GetBounds()
		box = box.Union(render.AABB{Min: lo, Max: hi})
	}
	return box
}

// WorldBounds is LocalBounds after the node transform.
func (n *Node) WorldBounds() render.AABB {
	local := n.LocalBounds()
	if local.IsEmpty() {
		return local
	}
	return local.Transform(n.Matrix())
}

// Opaque reports whether the node has at least one opaque surface.
func (n *Node) Opaque() bool {
	for _, s := range n.Surfaces {
		if !s.Material.Transparent() {
			return true
		}
	}
	return false
}

// TriangleCount sums the triangles of every surface.
func (n *Node) TriangleCount() int {
	total := 0
	for _, s := range n.Surfaces {
		if s.Mesh != nil {
			total += s.Mesh.TriangleCount()
		}
	}
	return total
}

// untexturedGray is the color of faces without a material.
var untexturedGray = render.RGB(200, 200, 200)

// FromModel builds a node from a loaded mesh, one surface per material.
func FromModel(mesh *models.Mesh) *Node {
	var surfaces []Surface
	for _, g := range mesh.SplitByMaterial() {
		surfaces = append(surfaces, Surface{
			Mesh:     g.Mesh,
			Material: ConvertMaterial(mesh.GetMaterial(g.Material)),
		})
	}
	return NewNode(mesh.Name, surfaces...)
}

// ConvertMaterial maps a loaded PBR material onto a render material: base
// color factor, base color texture, double sidedness and alpha blending.
// Metallic and roughness have no counterpart in the Lambert shader. A nil
// material gives the untextured gray.
func ConvertMaterial(m *models.Material) render.Material {
	out := render.DefaultMaterial()
	if m == nil {
		out.Color = untexturedGray
		return out
	}

	out.Color = render.RGBA(unit8(m.BaseColor[0]), unit8(m.BaseColor[1]), unit8(m.BaseColor[2]), unit8(m.BaseColor[3]))
	out.DoubleSided = m.DoubleSided
	if m.Blend {
		out.Blend = render.BlendAlpha
	}
	if m.HasTexture && m.BaseMap != nil {
		tex := render.TextureFromImage(m.BaseMap)
		tex.FilterMode = render.FilterBilinear
		out.Texture = tex
	}
	return out
}

func unit8(v float64) uint8 {
	return uint8(max(0, min(1, v))*255 + 0.5)
}
