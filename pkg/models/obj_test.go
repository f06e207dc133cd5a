package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl paint
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestReadOBJQuad(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if mesh.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
	if got := mesh.GetFace(0); got != [3]int{0, 2, 1} {
		t.Errorf("face 0 = %v, want [0 2 1]", got)
	}
	if got := mesh.GetFace(1); got != [3]int{0, 3, 2} {
		t.Errorf("face 1 = %v, want [0 3 2]", got)
	}
	if m := mesh.GetMaterial(mesh.GetFaceMaterial(0)); m == nil || m.Name != "paint" {
		t.Errorf("face material = %+v, want paint", m)
	}
	_, n, uv := mesh.GetVertex(2)
	if n.Z != 1 || uv.X != 1 || uv.Y != 1 {
		t.Errorf("vertex 2 normal=%v uv=%v", n, uv)
	}
}

func TestReadOBJNegativeIndicesAndSharing(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
f 1 2 3
`
	mesh, err := ReadOBJ(strings.NewReader(src), "tri")
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	// Identical corners are deduplicated.
	if mesh.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", mesh.VertexCount())
	}
	if mesh.GetFace(0) != mesh.GetFace(1) {
		t.Errorf("faces differ: %v vs %v", mesh.GetFace(0), mesh.GetFace(1))
	}
	if mesh.GetFaceMaterial(0) != -1 {
		t.Errorf("face without usemtl should have material -1")
	}
	if !mesh.HasNormals() {
		t.Errorf("normals should be generated")
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad number", "v 0 x 0\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadOBJ(strings.NewReader(tc.src), tc.name); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "Quad.OBJ")
	if err := os.WriteFile(objPath, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := Load(objPath)
	if err != nil {
		t.Fatalf("Load obj: %v", err)
	}
	if mesh.Name != "Quad.OBJ" {
		t.Errorf("mesh name = %q", mesh.Name)
	}

	for _, name := range []string{"building.ifc", "scene.fbx"} {
		_, err := Load(filepath.Join(dir, name))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Load(%s) err = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}
