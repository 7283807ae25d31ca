package object

import (
	"time"

	"github.com/tomz197/dropcatch/internal/draw"
)

// popRise is how fast a pop floats upward, in logical units per second.
const popRise = 8.0

// Pop is floating score text such as "+1" shown where a drop was caught.
type Pop struct {
	X, Y      float64
	Text      string
	Style     string // ANSI style for the text
	Remaining time.Duration
}

// NewPop creates a pop lasting lifetime.
func NewPop(x, y float64, text, style string, lifetime time.Duration) *Pop {
	return &Pop{X: x, Y: y, Text: text, Style: style, Remaining: lifetime}
}

// Update floats the pop upward until its time runs out.
func (p *Pop) Update(ctx UpdateContext) (bool, error) {
	p.Remaining -= ctx.Delta
	if p.Remaining <= 0 {
		return true, nil
	}
	p.Y -= popRise * ctx.Delta.Seconds()
	return false, nil
}

// Draw is a no-op: pops are text and draw in DrawOverlay.
func (p *Pop) Draw(ctx DrawContext) error {
	return nil
}

// DrawOverlay writes the text centred on the pop's position and marks the
// cells so the canvas repaints them next frame.
func (p *Pop) DrawOverlay(ctx DrawContext) {
	if p.Text == "" || ctx.Writer == nil {
		return
	}
	col, row := ctx.Canvas.LogicalToTerminal(p.X, p.Y)
	col -= len(p.Text) / 2
	if row < 1 || row > ctx.Canvas.TerminalHeight() || col < 1 || col+len(p.Text)-1 > ctx.Canvas.TerminalWidth() {
		return
	}
	ctx.Writer.WriteStyledAt(col, row, p.Style, p.Text)
	ctx.Canvas.MarkTextDirty(col, row, len(p.Text))
}

var (
	_ Object  = (*Pop)(nil)
	_ Overlay = (*Pop)(nil)
	_ Object  = (*Drop)(nil)
	_ Object  = (*Bucket)(nil)
	_ Object  = (*Particle)(nil)
)

// GainStyle and LossStyle colour score pops.
var (
	GainStyle = draw.ColorBold + draw.ColorGreen
	LossStyle = draw.ColorBold + draw.ColorRed
)
