package render

import (
	"math"

	"github.com/taigrr/plinth/pkg/math3d"
)

// screenVertex is a vertex after projection.
type screenVertex struct {
	X, Y   float64 // pixels
	Z      float64 // NDC depth
	InvW   float64 // 1/clip W, for perspective-correct interpolation
	UV     math3d.Vec2
	Normal math3d.Vec3 // world space
	Light  float64
}

// edgeCoeffs returns A, B, C of edge(x, y) = A*x + B*y + C for the edge
// (x0, y0) -> (x1, y1). Stepping one pixel in x adds A; in y adds B.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// topLeft reports whether the edge with coefficients A, B is a left edge or
// a horizontal top edge. A pixel center lying exactly on an edge is covered
// only when the edge is top-left, so two triangles sharing the edge never
// both draw it. Reversing an edge negates A, B and C exactly, which keeps
// the two triangles' values at a shared pixel exact negatives.
func topLeft(A, B float64) bool {
	return A > 0 || (A == 0 && B > 0)
}

func inside(w float64, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

// DrawSurface draws mesh with the given model transform and material.
// Front faces wind clockwise on screen. Back faces are skipped unless the
// material is double sided, in which case they are lit from the flipped
// normal.
func (r *Rasterizer) DrawSurface(mesh MeshRenderer, transform math3d.Mat4, mat Material, light Lighting) {
	if r.fb == nil || r.cull(mesh, transform) {
		return
	}

	viewProj := r.camera.ViewProjectionMatrix()
	normalMat := transform.NormalMatrix()

	var tri [3]screenVertex
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		visible := true
		for k := range 3 {
			pos, n, uv := mesh.GetVertex(face[k])
			clip := viewProj.MulVec4(math3d.V4FromV3(transform.MulVec3(pos), 1))
			// No near plane clipping: a triangle crossing the camera plane
			// is dropped.
			if clip.W <= 1e-9 {
				visible = false
				break
			}
			invW := 1 / clip.W
			x, y := r.toScreen(clip.X*invW, clip.Y*invW)
			tri[k] = screenVertex{
				X:      x,
				Y:      y,
				Z:      clip.Z * invW,
				InvW:   invW,
				UV:     uv,
				Normal: normalMat.MulVec3Dir(n).Normalize(),
			}
		}
		if !visible {
			continue
		}
		r.rasterize(tri, mat, light)
	}
}

func (r *Rasterizer) rasterize(sv [3]screenVertex, mat Material, light Lighting) {
	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if cross == 0 {
		return
	}
	if cross < 0 {
		if !mat.DoubleSided {
			return
		}
		sv[1], sv[2] = sv[2], sv[1]
		cross = -cross
		for k := range sv {
			sv[k].Normal = sv[k].Normal.Negate()
		}
	}

	for k := range sv {
		if mat.Unlit {
			sv[k].Light = 1
		} else {
			sv[k].Light = light.Intensity(sv[k].Normal)
		}
	}

	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge k is opposite vertex k, so its value is vertex k's weight.
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	tl0, tl1, tl2 := topLeft(A0, B0), topLeft(A1, B1), topLeft(A2, B2)
	invArea := 1.0 / cross

	width := r.Width()
	tone := r.ToneMapper
	if !mat.ToneMapped {
		tone = nil
	}

	// Edge values are evaluated per pixel rather than stepped, so a shared
	// edge gives both triangles exactly opposite values at every pixel.
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		r0, r1, r2 := B0*py+C0, B1*py+C1, B2*py+C2
		row := y * width

		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0, w1, w2 := A0*px+r0, A1*px+r1, A2*px+r2
			if inside(w0, tl0) && inside(w1, tl1) && inside(w2, tl2) {
				b0, b1, b2 := w0*invArea, w1*invArea, w2*invArea
				z := b0*sv[0].Z + b1*sv[1].Z + b2*sv[2].Z

				idx := row + x
				if z < r.zbuffer[idx] {
					p0, p1, p2 := b0*sv[0].InvW, b1*sv[1].InvW, b2*sv[2].InvW
					norm := 1 / (p0 + p1 + p2)

					c := mat.Color
					if mat.Texture != nil {
						u := (p0*sv[0].UV.X + p1*sv[1].UV.X + p2*sv[2].UV.X) * norm
						v := (p0*sv[0].UV.Y + p1*sv[1].UV.Y + p2*sv[2].UV.Y) * norm
						c = ModulateColor(mat.Texture.Sample(u, v), c)
					}
					if !mat.Unlit {
						c = MultiplyColor(c, (p0*sv[0].Light+p1*sv[1].Light+p2*sv[2].Light)*norm)
					}
					c = tone.Apply(c)

					if mat.Blend == BlendOpaque {
						c.A = 255
					} else {
						c = blendPixel(r.fb.Pixels[idx], c, mat.Blend)
					}
					r.fb.Pixels[idx] = c
					if mat.DepthWrite {
						r.zbuffer[idx] = z
					}
				}
			}
		}
	}
}
