package scene

import (
	"slices"

	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/render"
)

// Scene is an ordered set of nodes and the environment they are lit in.
// It is not safe for concurrent use; the viewer serializes access.
type Scene struct {
	Background  render.Color
	Light       render.Lighting
	ToneMapping render.ToneMapping
	Exposure    float64

	nodes []*Node
}

// New returns an empty scene with a dark background and default lighting.
func New() *Scene {
	return &Scene{
		Background:  render.RGB(240, 240, 240),
		Light:       render.DefaultLighting(),
		ToneMapping: render.ToneMappingACESFilmic,
		Exposure:    1,
	}
}

// Add appends n. Adding a node twice is a no-op.
func (s *Scene) Add(n *Node) {
	if n == nil || slices.Contains(s.nodes, n) {
		return
	}
	s.nodes = append(s.nodes, n)
}

// Remove drops n and reports whether it was present.
func (s *Scene) Remove(n *Node) bool {
	i := slices.Index(s.nodes, n)
	if i < 0 {
		return false
	}
	s.nodes = slices.Delete(s.nodes, i, i+1)
	return true
}

// Nodes returns the nodes in insertion order.
func (s *Scene) Nodes() []*Node {
	return slices.Clone(s.nodes)
}

// Len returns the number of nodes.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// DrawItem is one surface ready to draw.
type DrawItem struct {
	Node      *Node
	Surface   *Surface
	Transform math3d.Mat4
}

// DrawList returns the visible surfaces in draw order: every opaque
// surface in insertion order, then transparent ones by node Order with
// insertion order breaking ties.
func (s *Scene) DrawList() []DrawItem {
	var opaque, transparent []DrawItem
	for _, n := range s.nodes {
		if !n.Visible {
			continue
		}
		m := n.Matrix()
		for i := range n.Surfaces {
			sf := &n.Surfaces[i]
			if sf.Mesh == nil {
				continue
			}
			item := DrawItem{Node: n, Surface: sf, Transform: m}
			if sf.Material.Transparent() {
				transparent = append(transparent, item)
			} else {
				opaque = append(opaque, item)
			}
		}
	}
	slices.SortStableFunc(transparent, func(a, b DrawItem) int {
		return a.Node.Order - b.Node.Order
	})
	return append(opaque, transparent...)
}

// Bounds is the world box of every visible node with an opaque surface.
// Overlays such as the contact shadow are left out. The result is empty
// when no such node exists.
func (s *Scene) Bounds() render.AABB {
	box := render.EmptyAABB()
	for _, n := range s.nodes {
		if n.Visible && n.Opaque() {
			box = box.Union(n.WorldBounds())
		}
	}
	return box
}
