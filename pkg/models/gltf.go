package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/plinth/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	CalculateNormals bool // generate normals when the file has none
	SmoothNormals    bool // average generated normals across shared vertices
	Logger           *slog.Logger
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		Logger:           slog.Default(),
	}
}

// LoadGLB loads a binary GLTF (.glb) file with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh. The node tree of the
// default scene is flattened: every node that references a mesh adds a
// copy of it with the node's world transform baked in. Documents without
// scenes contribute each mesh once, untransformed.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = l.readMaterials(doc, filepath.Dir(path))

	if roots := sceneRoots(doc); len(roots) > 0 {
		for _, n := range roots {
			if err := l.processNode(doc, n, math3d.Identity(), mesh, 0); err != nil {
				return nil, err
			}
		}
	} else {
		for i, m := range doc.Meshes {
			if err := l.processMesh(doc, m, math3d.Identity(), mesh); err != nil {
				return nil, fmt.Errorf("process mesh %d %q: %w", i, m.Name, err)
			}
		}
	}

	if l.CalculateNormals && !mesh.HasNormals() {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()

	return mesh, nil
}

// maxNodeDepth bounds the node walk; glTF forbids cycles but files lie.
const maxNodeDepth = 64

// sceneRoots returns the root nodes of the default scene, or of the first
// scene when none is marked default.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	idx := 0
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		idx = *doc.Scene
	}
	return doc.Scenes[idx].Nodes
}

// processNode appends the mesh of node idx, transformed by its world
// matrix, then recurses into its children.
func (l *GLTFLoader) processNode(doc *gltf.Document, idx int, parent math3d.Mat4, mesh *Mesh, depth int) error {
	if depth > maxNodeDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}
	if idx < 0 || idx >= len(doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	node := doc.Nodes[idx]
	world := parent.Mul(nodeMatrix(node))

	if node.Mesh != nil {
		mi := *node.Mesh
		if mi < 0 || mi >= len(doc.Meshes) {
			return fmt.Errorf("node %d: mesh %d out of range", idx, mi)
		}
		m := doc.Meshes[mi]
		if err := l.processMesh(doc, m, world, mesh); err != nil {
			return fmt.Errorf("node %d mesh %q: %w", idx, m.Name, err)
		}
	}
	for _, child := range node.Children {
		if err := l.processNode(doc, child, world, mesh, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix returns the node's local transform: its matrix when one is
// given, otherwise T * R * S. Zero-valued rotation and scale, as left by
// documents built in code, count as their defaults.
func nodeMatrix(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != [16]float64{} && n.Matrix != gltf.DefaultMatrix {
		return math3d.Mat4(n.Matrix)
	}

	t := n.Translation
	r := n.Rotation
	s := n.Scale
	if s == [3]float64{} {
		s = [3]float64{1, 1, 1}
	}
	return math3d.Translate(math3d.V3(t[0], t[1], t[2])).
		Mul(math3d.RotateQuat(r[0], r[1], r[2], r[3])).
		Mul(math3d.Scale(math3d.V3(s[0], s[1], s[2])))
}

// accessor returns doc.Accessors[idx] or an error naming what it was for.
func accessor(doc *gltf.Document, idx int, what string) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%s accessor %d out of range", what, idx)
	}
	return doc.Accessors[idx], nil
}

// processMesh appends the triangle primitives of a GLTF mesh, transformed
// by world.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, world math3d.Mat4, mesh *Mesh) error {
	normalMat := world.NormalMatrix()
	// A mirroring transform turns the winding inside out.
	mirrored := world.Determinant() < 0

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// lines and points have no surface to shade
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		acc, err := accessor(doc, posIdx, "position")
		if err != nil {
			return err
		}
		positions, err := modeler.ReadPosition(doc, acc, nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if acc, err = accessor(doc, normIdx, "normal"); err != nil {
				return err
			}
			if normals, err = modeler.ReadNormal(doc, acc, nil); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if acc, err = accessor(doc, uvIdx, "texcoord"); err != nil {
				return err
			}
			if uvs, err = modeler.ReadTextureCoord(doc, acc, nil); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && int(*prim.Material) < len(mesh.Materials) {
			material = int(*prim.Material)
		}

		baseVertex := len(mesh.Vertices)

		for i, p := range positions {
			v := MeshVertex{
				Position: world.MulVec3(math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))),
			}
			if i < len(normals) {
				n := normals[i]
				v.Normal = normalMat.MulVec3Dir(math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))).Normalize()
			}
			if i < len(uvs) {
				// GLTF puts V=0 at the top of the image; the engine puts it at the bottom.
				v.UV = math3d.V2(float64(uvs[i][0]), 1.0-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			if acc, err = accessor(doc, *prim.Indices, "index"); err != nil {
				return err
			}
			if indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		// GLTF is CCW front-facing; the engine is CW because screen Y is
		// flipped, so swap the last two corners unless a mirror already did.
		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
			if a >= len(positions) || b >= len(positions) || c >= len(positions) {
				return fmt.Errorf("index out of range in triangle %d", i/3)
			}
			v := [3]int{baseVertex + a, baseVertex + c, baseVertex + b}
			if mirrored {
				v[1], v[2] = v[2], v[1]
			}
			mesh.Faces = append(mesh.Faces, Face{V: v, Material: material})
		}
	}

	return nil
}

// readMaterials converts the document's PBR materials. A base color
// texture that cannot be decoded is logged and skipped.
func (l *GLTFLoader) readMaterials(doc *gltf.Document, dir string) []Material {
	materials := make([]Material, 0, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial(gm.Name)
		if mat.Name == "" {
			mat.Name = fmt.Sprintf("material_%d", i)
		}
		mat.DoubleSided = gm.DoubleSided
		mat.Blend = gm.AlphaMode == gltf.AlphaBlend

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			mat.BaseColor = pbr.BaseColorFactorOrDefault()
			mat.Metallic = pbr.MetallicFactorOrDefault()
			mat.Roughness = pbr.RoughnessFactorOrDefault()

			if pbr.BaseColorTexture != nil {
				img, err := decodeTexture(doc, pbr.BaseColorTexture.Index, dir)
				if err != nil {
					l.logger().Warn("skipping base color texture",
						"material", mat.Name, "texture", pbr.BaseColorTexture.Index, "err", err)
				} else {
					mat.BaseMap = img
					mat.HasTexture = true
				}
			}
		}
		materials = append(materials, mat)
	}
	return materials
}

func (l *GLTFLoader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// decodeTexture resolves a texture index to its image, which is either
// embedded in a buffer view or stored next to the document.
func decodeTexture(doc *gltf.Document, texIdx int, dir string) (image.Image, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range", texIdx)
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d has no image source", texIdx)
	}
	data, err := imageBytes(doc, doc.Images[*tex.Source], dir)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) ([]byte, error) {
	if img.BufferView != nil {
		bvIdx := *img.BufferView
		if bvIdx < 0 || bvIdx >= len(doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", bvIdx)
		}
		bv := doc.BufferViews[bvIdx]
		if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, fmt.Errorf("buffer %d has no data", bv.Buffer)
		}
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			return nil, fmt.Errorf("buffer view %d overruns buffer", *img.BufferView)
		}
		return buf.Data[bv.ByteOffset:end], nil
	}
	if img.URI == "" {
		return nil, fmt.Errorf("image has neither buffer view nor uri")
	}
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	data, err := os.ReadFile(filepath.Join(dir, img.URI))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
