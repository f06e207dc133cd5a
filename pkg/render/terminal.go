package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Color is the pixel type used throughout the renderer.
type Color = color.RGBA

var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA creates a color with alpha.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}

// Draw paints the framebuffer onto scr inside area. Each terminal row
// shows framebuffer rows 2*row and 2*row+1 as an upper half block with
// the top pixel in the foreground and the bottom pixel in the background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			scr.SetCell(col, row, fb.halfBlock(col, row))
		}
	}
}

func (fb *Framebuffer) halfBlock(col, row int) *uv.Cell {
	return &uv.Cell{
		Content: "▀",
		Width:   1,
		Style: uv.Style{
			Fg: cellColor(fb.GetPixel(col, row*2)),
			Bg: cellColor(fb.GetPixel(col, row*2+1)),
		},
	}
}

// cellColor maps transparent pixels to the terminal's default color.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Display is a screen that can push its cells to the real terminal.
// *uv.Terminal satisfies it.
type Display interface {
	uv.Screen
	Display() error
}

// TerminalRenderer presents framebuffers on a terminal of cols x rows cells.
type TerminalRenderer struct {
	screen Display
	cols   int
	rows   int
}

// NewTerminalRenderer creates a renderer for a cols x rows terminal.
func NewTerminalRenderer(screen Display, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{screen: screen, cols: max(cols, 1), rows: max(rows, 1)}
}

// FramebufferSize is the pixel size that fills the terminal: one pixel per
// column and two per row.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Render copies fb into the screen's cell buffer.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.screen, uv.Rect(0, 0, t.cols, t.rows))
}

// Flush sends changed cells to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.screen.Display()
}
