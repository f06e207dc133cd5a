package models

import (
	"math"
	"testing"

	"github.com/taigrr/plinth/pkg/math3d"
)

func TestNewPlane(t *testing.T) {
	p := NewPlane(1, 1)

	size := p.Size()
	if size.X != 1 || size.Y != 1 || size.Z != 0 {
		t.Errorf("plane size = %v, want 1x1x0", size)
	}
	if c := p.Center(); c != math3d.Zero3() {
		t.Errorf("plane center = %v, want origin", c)
	}
	if p.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", p.TriangleCount())
	}
	for i := range p.Vertices {
		if p.Vertices[i].Normal != math3d.V3(0, 0, 1) {
			t.Errorf("vertex %d normal = %v", i, p.Vertices[i].Normal)
		}
	}
}

func TestNewPlaneRotatedFacesUp(t *testing.T) {
	p := NewPlane(1, 1)
	p.Transform(math3d.RotateX(-math.Pi / 2))

	_, n, _ := p.GetVertex(0)
	if !n.ApproxEqual(math3d.Up(), 1e-9) {
		t.Errorf("rotated normal = %v, want +Y", n)
	}
	size := p.Size()
	if math.Abs(size.X-1) > 1e-9 || math.Abs(size.Z-1) > 1e-9 || math.Abs(size.Y) > 1e-9 {
		t.Errorf("rotated footprint = %v, want 1 x 0 x 1", size)
	}
}

func TestGeneratedNormalsFaceFront(t *testing.T) {
	p := NewPlane(2, 2)
	for i := range p.Vertices {
		p.Vertices[i].Normal = math3d.Vec3{}
	}

	p.CalculateSmoothNormals()
	for i, v := range p.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
			t.Errorf("smooth normal %d = %v, want +Z", i, v.Normal)
		}
	}

	p.CalculateNormals()
	for i, v := range p.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
			t.Errorf("flat normal %d = %v, want +Z", i, v.Normal)
		}
	}
}

func TestSplitByMaterial(t *testing.T) {
	m := NewPlane(1, 1)
	m.Materials = []Material{DefaultMaterial("a")}
	m.Faces[1].Material = 0

	groups := m.SplitByMaterial()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Material != -1 || groups[1].Material != 0 {
		t.Errorf("group materials = %d, %d", groups[0].Material, groups[1].Material)
	}
	for i, g := range groups {
		if g.Mesh.TriangleCount() != 1 || g.Mesh.VertexCount() != 3 {
			t.Errorf("group %d has %d faces, %d vertices", i, g.Mesh.TriangleCount(), g.Mesh.VertexCount())
		}
	}
	// The diagonal triangle still spans the full quad.
	if size := groups[0].Mesh.Size(); size.X != 1 || size.Y != 1 {
		t.Errorf("group 0 size = %v", size)
	}
}
