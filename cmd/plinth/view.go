package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/plinth/pkg/render"
	"github.com/taigrr/plinth/pkg/viewer"
)

// keyStep is the orbit input of one key press.
const keyStep = 4.0

func newViewCmd(opts *options) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "view <model>",
		Short: "View a model in the terminal",
		Long: `View a model in the terminal.

Controls:
  Mouse drag        orbit
  Right drag        pan
  Scroll, +/-       zoom
  W/A/S/D, arrows   orbit
  R                 reset view
  X                 toggle wireframe
  G                 toggle floor grid
  ?                 toggle HUD
  Esc               quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The alt screen owns stdout and stderr until we exit.
			var sink io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				sink = f
			}
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: logLevel(prev)})))
			defer slog.SetDefault(prev)

			return runTerminal(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the viewer runs")
	return cmd
}

func logLevel(l *slog.Logger) slog.Level {
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), lvl) {
			return lvl
		}
	}
	return slog.LevelError
}

// HUD renders an overlay with model info and controls
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	visible   bool
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS counts a frame; call once per drawn frame.
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD straight to the terminal, over the cells the
// renderer just flushed.
func (h *HUD) Render(w io.Writer, width, height int, wireframe, grid bool) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	if !h.visible {
		return
	}
	fmt.Fprint(w, moveTo(1, 1)+clearLine)
	fmt.Fprint(w, moveTo(height, 1)+clearLine)

	fmt.Fprintf(w, "%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Fprintf(w, "%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.filename, reset)

	polyCol := max(width-12, 1)
	fmt.Fprintf(w, "%s%s%s%s %d polys %s", moveTo(1, polyCol), bgBlack, fgCyan, bold, h.polyCount, reset)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	fmt.Fprintf(w, "%s%s%s %s X-Ray (wireframe)  %s Grid %s",
		moveTo(height, 1), bgBlack, fgWhite, check(wireframe), check(grid), reset)

	hintCol := max(width-22, 1)
	fmt.Fprintf(w, "%s%s%s%s R: reset  Esc: quit %s", moveTo(height, hintCol), bgBlack, dim, fgYellow, reset)
}

func runTerminal(parent context.Context, opts *options, modelPath string) error {
	// Start loading while the terminal comes up.
	pending := viewer.LoadAsset(modelPath)

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	termRenderer := render.NewTerminalRenderer(term, width, height)
	v := viewer.New(opts.cfg, width, height*2)

	var dirty atomic.Bool
	dirty.Store(true)
	cancelRedraw := v.OnNeedsRedraw(func() { dirty.Store(true) })
	defer cancelRedraw()

	if err := v.Show(parent, pending); err != nil {
		return err
	}
	stats := v.Stats()
	hud := NewHUD(filepath.Base(modelPath), stats.Triangles)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// resized carries new terminal sizes from the event goroutine to the
	// draw loop, which owns termRenderer.
	resized := make(chan [2]int, 1)
	var hudToggled atomic.Bool

	go func() {
		var dragging, panning bool
		var lastX, lastY int

		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case <-resized:
				default:
				}
				resized <- [2]int{ev.Width, ev.Height}

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
					return
				case ev.MatchString("r"):
					v.ResetView()
				case ev.MatchString("w", "up"):
					v.Orbit(0, -keyStep)
				case ev.MatchString("s", "down"):
					v.Orbit(0, keyStep)
				case ev.MatchString("a", "left"):
					v.Orbit(-keyStep, 0)
				case ev.MatchString("d", "right"):
					v.Orbit(keyStep, 0)
				case ev.MatchString("+", "="):
					v.Zoom(1)
				case ev.MatchString("-", "_"):
					v.Zoom(-1)
				case ev.MatchString("x"):
					v.SetWireframe(!v.Wireframe())
				case ev.MatchString("g"):
					v.SetGrid(!v.Grid())
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					hudToggled.Store(true)
					dirty.Store(true)
				}

			case uv.MouseClickEvent:
				switch ev.Button {
				case uv.MouseLeft:
					dragging = true
				case uv.MouseRight:
					panning = true
				}
				lastX, lastY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				dragging, panning = false, false

			case uv.MouseMotionEvent:
				if !dragging && !panning {
					continue
				}
				// A cell is one pixel wide and two tall.
				dx, dy := float64(ev.X-lastX), float64(ev.Y-lastY)*2
				if dragging {
					v.Orbit(dx, dy)
				} else {
					v.Pan(dx, dy)
				}
				lastX, lastY = ev.X, ev.Y

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					v.Zoom(1)
				case uv.MouseWheelDown:
					v.Zoom(-1)
				}
			}
		}
	}()

	targetDuration := time.Second / time.Duration(opts.cfg.FPS)

	for {
		select {
		case <-ctx.Done():
			return nil
		case size := <-resized:
			width, height = size[0], size[1]
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			v.Resize(termRenderer.FramebufferSize())
		default:
		}

		now := time.Now()
		v.Tick()

		if dirty.Swap(false) {
			if hudToggled.Swap(false) {
				hud.visible = !hud.visible
				term.Erase()
			}
			termRenderer.Render(v.Render())
			if err := termRenderer.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
			hud.UpdateFPS()
			hud.Render(os.Stdout, width, height, v.Wireframe(), v.Grid())
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
