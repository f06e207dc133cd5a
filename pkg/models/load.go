package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load for file types it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load reads a model, picking the loader from the file extension.
func Load(path string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".glb", ".gltf":
		return NewGLTFLoader().Load(path)
	case ".obj":
		return LoadOBJ(path)
	case ".ifc":
		return nil, fmt.Errorf("%w: %s (IFC building models need an external IFC toolkit; convert to .glb first)", ErrUnsupportedFormat, ext)
	default:
		return nil, fmt.Errorf("%w: %q (use .glb, .gltf or .obj)", ErrUnsupportedFormat, ext)
	}
}
