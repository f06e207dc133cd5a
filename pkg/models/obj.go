package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/plinth/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return mesh, nil
}

// objCorner is one v/vt/vn reference of a face, already resolved to
// zero-based indices (-1 when absent).
type objCorner struct {
	v, vt, vn int
}

// ReadOBJ parses OBJ geometry: v, vt, vn, f (polygons are fan
// triangulated) and usemtl (each name becomes a white material).
// Everything else is ignored.
func ReadOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		texcoords []math3d.Vec2
		normals   []math3d.Vec3
	)

	mesh := NewMesh(name)
	vertexOf := make(map[objCorner]int)
	materialOf := make(map[string]int)
	material := -1

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math3d.V3(p[0], p[1], p[2]))
		case "vt":
			p, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texcoords = append(texcoords, math3d.V2(p[0], p[1]))
		case "vn":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math3d.V3(p[0], p[1], p[2]))
		case "usemtl":
			if len(fields) < 2 {
				continue
			}
			idx, ok := materialOf[fields[1]]
			if !ok {
				idx = len(mesh.Materials)
				mesh.Materials = append(mesh.Materials, DefaultMaterial(fields[1]))
				materialOf[fields[1]] = idx
			}
			material = idx
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			poly := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				c, err := parseCorner(ref, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx, ok := vertexOf[c]
				if !ok {
					idx = len(mesh.Vertices)
					v := MeshVertex{Position: positions[c.v]}
					if c.vt >= 0 {
						v.UV = texcoords[c.vt]
					}
					if c.vn >= 0 {
						v.Normal = normals[c.vn]
					}
					mesh.Vertices = append(mesh.Vertices, v)
					vertexOf[c] = idx
				}
				poly = append(poly, idx)
			}
			// Fan triangulation, reversed from OBJ's CCW to the engine's CW.
			for i := 1; i+1 < len(poly); i++ {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{poly[0], poly[i+1], poly[i]},
					Material: material,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("no faces")
	}

	if !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = f
	}
	return out, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". OBJ indices are
// 1-based; negative values count back from the latest element.
func parseCorner(ref string, nv, nvt, nvn int) (objCorner, error) {
	parts := strings.Split(ref, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}

	var err error
	if c.v, err = resolveIndex(parts[0], nv); err != nil || c.v < 0 {
		return c, fmt.Errorf("bad vertex reference %q", ref)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], nvt); err != nil || c.vt < 0 {
			return c, fmt.Errorf("bad texcoord reference %q", ref)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], nvn); err != nil || c.vn < 0 {
			return c, fmt.Errorf("bad normal reference %q", ref)
		}
	}
	return c, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return -1, nil
}
