// Package window shows a viewer in a desktop window.
package window

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/taigrr/plinth/pkg/viewer"
)

// Options configures the window.
type Options struct {
	Title  string
	Width  int // window size in screen pixels
	Height int
	FPS    int
	// PixelScale is how many screen pixels one rendered pixel covers.
	// The software rasterizer is the bottleneck, so 2 is a good default.
	PixelScale int
}

// Game adapts a viewer to ebiten.Game.
type Game struct {
	ctx   context.Context
	v     *viewer.Viewer
	scale int

	img   *ebiten.Image
	dirty atomic.Bool

	dragging   bool
	panning    bool
	lastX      int
	lastY      int
	showHUD    bool
	cancelDraw func()
}

// NewGame wraps v. The game stops when ctx ends.
func NewGame(ctx context.Context, v *viewer.Viewer, pixelScale int) *Game {
	g := &Game{ctx: ctx, v: v, scale: max(pixelScale, 1)}
	g.cancelDraw = v.OnNeedsRedraw(func() { g.dirty.Store(true) })
	g.dirty.Store(true)
	return g
}

// Run opens the window and blocks until it is closed, Esc is pressed or
// ctx ends.
func Run(ctx context.Context, v *viewer.Viewer, opts Options) error {
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if opts.FPS > 0 {
		ebiten.SetTPS(opts.FPS)
	}

	g := NewGame(ctx, v, opts.PixelScale)
	defer g.cancelDraw()

	err := ebiten.RunGame(g)
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.v.ResetView()
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.v.SetWireframe(!g.v.Wireframe())
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.v.SetGrid(!g.v.Grid())
	case inpututil.IsKeyJustPressed(ebiten.KeySlash):
		g.showHUD = !g.showHUD
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.panning = true
		g.lastX, g.lastY = x, y
	}
	if g.dragging || g.panning {
		dx, dy := float64(x-g.lastX), float64(y-g.lastY)
		if dx != 0 || dy != 0 {
			if g.dragging {
				g.v.Orbit(dx/float64(g.scale), dy/float64(g.scale))
			} else {
				g.v.Pan(dx/float64(g.scale), dy/float64(g.scale))
			}
		}
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		g.panning = false
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.v.Zoom(wy)
	}

	g.v.Tick()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.dirty.Swap(false) || g.img == nil {
		fb := g.v.Render()
		if g.img == nil || g.img.Bounds().Dx() != fb.Width || g.img.Bounds().Dy() != fb.Height {
			g.img = ebiten.NewImage(fb.Width, fb.Height)
		}
		g.img.WritePixels(fb.ToImage().Pix)
	}
	screen.DrawImage(g.img, nil)

	if g.showHUD {
		s := g.v.Stats()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  %d tris  %.0f FPS\ndrag: orbit  right-drag: pan  wheel: zoom\nR reset  X wireframe  G grid  Esc quit",
			s.Name, s.Triangles, ebiten.ActualFPS()))
	}
}

// Layout renders at the window size divided by the pixel scale; ebiten
// stretches the result to fill the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth/g.scale, 1), max(outsideHeight/g.scale, 1)
	if cw, ch := g.v.Size(); cw != w || ch != h {
		g.v.Resize(w, h)
	}
	return w, h
}
