// Package viewer ties a scene, a camera and the rasterizer together behind
// orbit controls and a redraw notification, for the terminal, window and
// snapshot frontends to share.
package viewer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/taigrr/plinth/pkg/config"
	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/render"
	"github.com/taigrr/plinth/pkg/scene"
	"github.com/taigrr/plinth/pkg/shadow"
)

var (
	wireColor = render.RGB(0, 255, 128)
	gridColor = render.RGB(70, 70, 85)
)

// Context is everything a frame is drawn from.
type Context struct {
	Camera      *render.Camera
	Scene       *scene.Scene
	Rasterizer  *render.Rasterizer
	Framebuffer *render.Framebuffer
}

type observer struct {
	fn func()
}

// Viewer is safe for concurrent use. Redraw observers run on the goroutine
// that caused the redraw, outside the viewer lock, so they may call Render.
type Viewer struct {
	mu        sync.Mutex
	ctx       Context
	cfg       config.Config
	orbit     *OrbitControls
	wire      *render.Wireframe
	tone      *render.ToneMapper
	wireframe bool
	grid      bool

	model  *scene.Node
	shadow *scene.Node

	obsMu     sync.Mutex
	observers []*observer

	log *slog.Logger
}

// New builds a viewer rendering at width x height pixels. cfg is assumed
// valid.
func New(cfg config.Config, width, height int) *Viewer {
	width, height = max(width, 1), max(height, 1)

	cam := render.NewCamera()
	cam.SetFOV(cfg.FOVRadians())
	cam.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)
	cam.SetAspectRatio(float64(width) / float64(height))

	sc := scene.New()
	if bg, err := cfg.BackgroundColor(); err == nil {
		sc.Background = bg
	}
	if mode, err := cfg.ToneMappingMode(); err == nil {
		sc.ToneMapping = mode
	}
	sc.Exposure = cfg.Exposure
	sc.Light = cfg.Lighting()

	fb := render.NewFramebuffer(width, height)

	orbit := NewOrbitControls(cfg.CameraPosition(), math3d.Zero3(), cfg.FPS, cfg.Controls.Damping)
	orbit.MinDistance = cfg.Controls.MinDistance
	orbit.MaxDistance = cfg.Controls.MaxDistance
	orbit.RotateSpeed = cfg.Controls.RotateSpeed
	orbit.ZoomSpeed = cfg.Controls.ZoomSpeed
	orbit.Apply(cam)

	return &Viewer{
		ctx: Context{
			Camera:      cam,
			Scene:       sc,
			Rasterizer:  render.NewRasterizer(cam, fb),
			Framebuffer: fb,
		},
		cfg:   cfg,
		orbit: orbit,
		wire:  render.NewWireframe(cam, fb),
		grid:  cfg.Grid,
		log:   slog.Default().With("component", "viewer"),
	}
}

// Context returns the viewer's parts. Callers must not touch them while
// another goroutine drives the viewer.
func (v *Viewer) Context() Context {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ctx
}

// Size returns the framebuffer size in pixels.
func (v *Viewer) Size() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ctx.Framebuffer.Width, v.ctx.Framebuffer.Height
}

// OnNeedsRedraw registers fn to run whenever the picture is stale. The
// returned cancel removes it and may be called more than once. A nil fn
// registers nothing.
func (v *Viewer) OnNeedsRedraw(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	o := &observer{fn: fn}
	v.obsMu.Lock()
	v.observers = append(v.observers, o)
	v.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.obsMu.Lock()
			defer v.obsMu.Unlock()
			for i, cur := range v.observers {
				if cur == o {
					v.observers = append(v.observers[:i:i], v.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// RequestRedraw calls every observer in registration order.
func (v *Viewer) RequestRedraw() {
	v.obsMu.Lock()
	obs := make([]*observer, len(v.observers))
	copy(obs, v.observers)
	v.obsMu.Unlock()

	for _, o := range obs {
		o.fn()
	}
}

// Resize reallocates the color and depth buffers. Sizes below 1 are ignored.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.mu.Lock()
	v.ctx.Framebuffer.Resize(width, height)
	v.ctx.Rasterizer.Resize()
	v.ctx.Camera.SetAspectRatio(float64(width) / float64(height))
	v.mu.Unlock()

	v.RequestRedraw()
}

// CameraChanged moves the camera to the orbit state and requests a redraw.
func (v *Viewer) CameraChanged() {
	v.mu.Lock()
	v.orbit.Apply(v.ctx.Camera)
	v.mu.Unlock()

	v.RequestRedraw()
}

// Orbit rotates the camera around the target.
func (v *Viewer) Orbit(dx, dy float64) {
	v.mu.Lock()
	v.orbit.Rotate(dx, dy)
	v.mu.Unlock()
	v.CameraChanged()
}

// Zoom moves the camera toward (positive) or away from the target.
func (v *Viewer) Zoom(delta float64) {
	v.mu.Lock()
	v.orbit.Zoom(delta)
	v.mu.Unlock()
	v.CameraChanged()
}

// Pan slides the target across the view.
func (v *Viewer) Pan(dx, dy float64) {
	v.mu.Lock()
	v.orbit.Pan(v.ctx.Camera, dx, dy)
	v.mu.Unlock()
	v.CameraChanged()
}

// ResetView returns to the framed view.
func (v *Viewer) ResetView() {
	v.mu.Lock()
	v.orbit.Reset()
	v.mu.Unlock()
	v.CameraChanged()
}

// Tick advances damping by one frame. It returns true, after requesting a
// redraw, while the camera is still coasting.
func (v *Viewer) Tick() bool {
	v.mu.Lock()
	if !v.orbit.Moving() {
		v.mu.Unlock()
		return false
	}
	v.orbit.Update()
	v.mu.Unlock()

	v.CameraChanged()
	return true
}

// SetWireframe switches between shaded and wireframe drawing.
func (v *Viewer) SetWireframe(on bool) {
	v.mu.Lock()
	changed := v.wireframe != on
	v.wireframe = on
	v.mu.Unlock()
	if changed {
		v.RequestRedraw()
	}
}

// Wireframe reports whether wireframe drawing is on.
func (v *Viewer) Wireframe() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.wireframe
}

// SetGrid shows or hides the floor grid.
func (v *Viewer) SetGrid(on bool) {
	v.mu.Lock()
	changed := v.grid != on
	v.grid = on
	v.mu.Unlock()
	if changed {
		v.RequestRedraw()
	}
}

// Grid reports whether the floor grid is shown.
func (v *Viewer) Grid() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grid
}

// Stats describes what is on screen.
type Stats struct {
	Name      string
	Triangles int
	Culled    render.CullingStats
}

// Stats returns the loaded model and the culling results of the last frame.
func (v *Viewer) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	var s Stats
	if v.model != nil {
		s.Name = v.model.Name
		s.Triangles = v.model.TriangleCount()
	}
	s.Culled = v.ctx.Rasterizer.CullingStats
	return s
}

// Render draws a frame and returns the framebuffer. The framebuffer is
// reused by the next Render or Resize.
func (v *Viewer) Render() *render.Framebuffer {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.render()
	return v.ctx.Framebuffer
}

// Snapshot renders a frame and returns a copy scaled by scale.
func (v *Viewer) Snapshot(scale int) *image.RGBA {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.render()
	return v.ctx.Framebuffer.Scaled(scale)
}

func (v *Viewer) render() {
	c := &v.ctx
	c.Framebuffer.Clear(c.Scene.Background)
	c.Rasterizer.BeginFrame()

	if v.tone == nil || v.tone.Mode != c.Scene.ToneMapping || v.tone.Exposure != c.Scene.Exposure {
		v.tone = render.NewToneMapper(c.Scene.ToneMapping, c.Scene.Exposure)
	}
	c.Rasterizer.ToneMapper = v.tone

	if v.grid {
		floor := 0.0
		if b := c.Scene.Bounds(); !b.IsEmpty() {
			floor = b.Min.Y
		}
		v.wire.DrawGrid(floor, 2*v.cfg.ModelSize, v.cfg.ModelSize/8, gridColor)
	}

	for _, item := range c.Scene.DrawList() {
		sf := item.Surface
		if v.wireframe {
			if sf.Material.Transparent() {
				continue
			}
			c.Rasterizer.DrawMeshWireframe(sf.Mesh, item.Transform, wireColor)
			continue
		}
		c.Rasterizer.DrawSurface(sf.Mesh, item.Transform, sf.Material, c.Scene.Light)
	}
}

// Show waits for p, then puts the model in the scene: centered on the
// origin, scaled so its largest side is the configured model size, with a
// contact shadow under it and the orbit framed on it. A previously shown
// model is replaced. On error the scene is left as it was.
func (v *Viewer) Show(ctx context.Context, p *Pending) error {
	node, err := p.Wait(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", filepath.Base(p.Path), err)
	}

	v.mu.Lock()
	sc := v.ctx.Scene
	if v.model != nil {
		sc.Remove(v.model)
	}
	if v.shadow != nil {
		sc.Remove(v.shadow)
		v.shadow = nil
	}

	normalize(node, v.cfg.ModelSize)
	sc.Add(node)
	v.model = node

	bounds := node.WorldBounds()
	if v.cfg.Shadow.Enabled {
		sh := shadow.NewContactShadow()
		shadow.Place(sh, bounds, shadow.Options{Scale: v.cfg.Shadow.Scale, Offset: v.cfg.Shadow.Offset})
		sc.Add(sh)
		v.shadow = sh
	}

	if !bounds.IsEmpty() {
		v.orbit.SetTarget(bounds.Center())
	}
	v.orbit.Apply(v.ctx.Camera)
	v.log.Debug("model shown", "name", node.Name, "bounds_min", bounds.Min, "bounds_max", bounds.Max)
	v.mu.Unlock()

	v.RequestRedraw()
	return nil
}

// normalize centers n on the origin and scales its largest side to size.
func normalize(n *scene.Node, size float64) {
	local := n.LocalBounds()
	if local.IsEmpty() {
		return
	}
	s := 1.0
	if extent := local.Size().MaxComponent(); extent > 0 {
		s = size / extent
	}
	n.Rotation = math3d.Zero3()
	n.Scale = math3d.V3(s, s, s)
	n.Position = local.Center().Scale(-s)
}
