package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	c := Hex("#2E9DF7")
	r, g, b := c.RGB()
	assert.Equal(t, []uint8{0x2E, 0x9D, 0xF7}, []uint8{r, g, b})
	assert.True(t, c.IsSet())
	assert.False(t, Color(0).IsSet())
	assert.True(t, RGB(0, 0, 0).IsSet(), "black is still a drawn colour")

	assert.Panics(t, func() { Hex("#12") })
	assert.Panics(t, func() { Hex("zzzzzz") })
}

func TestConfettiPalette(t *testing.T) {
	require.Len(t, Confetti, 5)
	assert.Equal(t, Hex("#F5402C"), Confetti[4])
}

// newTestCanvas maps logical units 1:1 onto a 10x5 terminal (10x10 sub-pixels).
func newTestCanvas() *Canvas {
	return NewScaledCanvas(10, 5, 10, 10)
}

func TestRenderHalfBlocks(t *testing.T) {
	c := newTestCanvas()
	c.SetColor(RGB(1, 2, 3))
	c.SetFloat(0, 0) // top half of cell (1,1)
	c.SetFloat(2, 1) // bottom half of cell (3,1)
	c.SetFloat(4, 0)
	c.SetFloat(4, 1) // full cell (5,1)

	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()

	assert.Contains(t, out, "\033[1;1H\033[49;38;2;1;2;3m▀")
	assert.Contains(t, out, "\033[1;3H\033[49;38;2;1;2;3m▄")
	assert.Contains(t, out, "\033[1;5H\033[49;38;2;1;2;3m█")
	assert.True(t, strings.HasSuffix(out, ColorReset))
}

func TestRenderTwoColoursInOneCell(t *testing.T) {
	c := newTestCanvas()
	c.SetColor(RGB(255, 0, 0))
	c.SetFloat(0, 0)
	c.SetColor(RGB(0, 0, 255))
	c.SetFloat(0, 1)

	var buf bytes.Buffer
	c.Render(&buf)
	assert.Contains(t, buf.String(), "\033[38;2;255;0;0m\033[48;2;0;0;255m▀")
}

func TestRenderOnlyEmitsChanges(t *testing.T) {
	c := newTestCanvas()
	c.SetFloat(3, 3)

	var first bytes.Buffer
	c.Render(&first)
	require.NotEmpty(t, first.String())

	// Same frame again: nothing to do.
	c.Clear()
	c.SetFloat(3, 3)
	var second bytes.Buffer
	c.Render(&second)
	assert.Empty(t, second.String())

	// The pixel disappears: the cell is blanked.
	c.Clear()
	var third bytes.Buffer
	c.Render(&third)
	assert.Contains(t, third.String(), "\033[2;4H"+ColorReset+" ")

	// Forced redraws repaint drawn cells only.
	c.SetFloat(3, 3)
	c.ForceRedraw()
	var fourth bytes.Buffer
	c.Render(&fourth)
	assert.Equal(t, 1, strings.Count(fourth.String(), "H"))
}

func TestMarkTextDirty(t *testing.T) {
	c := newTestCanvas()
	var buf bytes.Buffer
	c.Render(&buf)

	c.MarkTextDirty(2, 3, 3)
	c.MarkTextDirty(0, 99, 3) // off canvas, ignored
	buf.Reset()
	c.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "\033[3;2H")
	assert.Contains(t, out, "\033[3;3H")
	assert.Contains(t, out, "\033[3;4H")
	assert.Equal(t, 3, strings.Count(out, "H"))
}

func TestOffsetAndCoordinateMapping(t *testing.T) {
	c := NewScaledCanvas(30, 10, 120, 80)
	c.SetOffset(5, 2)

	col, row := c.LogicalToTerminal(60, 40)
	assert.Equal(t, 16, col)
	assert.Equal(t, 6, row)

	x, y, ok := c.TerminalToLogical(col+5, row+2)
	require.True(t, ok)
	assert.InDelta(t, 62, x, 0.001)
	assert.InDelta(t, 44, y, 0.001)
	gotCol, gotRow := c.LogicalToTerminal(x, y)
	assert.Equal(t, col, gotCol)
	assert.Equal(t, row, gotRow)

	_, _, ok = c.TerminalToLogical(5, 5)
	assert.False(t, ok, "left of the canvas")
	_, _, ok = c.TerminalToLogical(10, 13)
	assert.False(t, ok, "below the canvas")
}

func TestShapes(t *testing.T) {
	c := newTestCanvas()
	c.SetColor(ColorClean)
	c.FillRect(2, 2, 3, 2)
	assert.Equal(t, ColorClean, c.At(2, 2))
	assert.Equal(t, ColorClean, c.At(4.5, 3.5))
	assert.False(t, c.At(5, 2).IsSet())

	c.Clear()
	c.FillCircle(5, 5, 2)
	assert.Equal(t, ColorClean, c.At(5, 5))
	assert.False(t, c.At(8, 8).IsSet())

	c.Clear()
	c.DrawPolygon([]Point{{1, 1}, {8, 1}, {8, 8}, {1, 8}}, true)
	assert.Equal(t, ColorClean, c.At(4, 4))
	c.DrawPolygon([]Point{{1, 1}, {2, 2}}, true) // degenerate, ignored
}

func TestRenderBorder(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	c.SetOffset(1, 1)
	var buf bytes.Buffer
	c.RenderBorder(&buf)
	out := buf.String()
	assert.Contains(t, out, "┌────┐")
	assert.Contains(t, out, "└────┘")
	assert.Equal(t, 4, strings.Count(out, "│"))

	buf.Reset()
	c.SetOffset(0, 0)
	c.RenderBorder(&buf)
	assert.Empty(t, buf.String())
}

func TestChunkWriter(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 3)
	cw.WriteAt(1, 1, "hi")
	cw.WriteStyledAt(4, 2, ColorBold, "x")
	assert.Positive(t, cw.Len())
	require.NoError(t, cw.Flush())

	assert.Equal(t, "\033[4;3Hhi\033[5;6H"+ColorBold+"x"+ColorReset, out.String())
	assert.Zero(t, cw.Len())

	out.Reset()
	cw.WriteString(strings.Repeat("a", 3*maxChunkSize+7))
	require.NoError(t, cw.Flush())
	assert.Equal(t, 3*maxChunkSize+7, out.Len())
}

func TestMouseHelpers(t *testing.T) {
	var buf bytes.Buffer
	EnableMouse(&buf)
	DisableMouse(&buf)
	assert.Equal(t, "\033[?1000h\033[?1006h\033[?1006l\033[?1000l", buf.String())
}
