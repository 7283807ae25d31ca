// Package draw renders to ANSI terminals: a colour half-block canvas, a
// chunked writer for text overlays and a handful of escape helpers.
package draw

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// ANSI text attributes used by overlays.
const (
	ColorReset      = "\033[0m"
	ColorBold       = "\033[1m"
	ColorDim        = "\033[2m"
	ColorBrightCyan = "\033[96m"
	ColorYellow     = "\033[93m"
	ColorRed        = "\033[91m"
	ColorGreen      = "\033[92m"
)

// Color is a 24-bit RGB colour. The zero value means "nothing drawn".
type Color uint32

const colorSet = 1 << 24

// RGB builds a drawable colour.
func RGB(r, g, b uint8) Color {
	return Color(colorSet | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Hex parses "#RRGGBB". It panics on malformed input and is meant for
// package-level palette definitions.
func Hex(s string) Color {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(s, "#")) != 6 {
		panic(fmt.Sprintf("draw: bad colour %q", s))
	}
	return Color(colorSet | uint32(v))
}

// RGB returns the colour components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// IsSet reports whether c is a real colour rather than the empty value.
func (c Color) IsSet() bool {
	return c&colorSet != 0
}

// Game palette.
var (
	ColorClean  = Hex("#2E9DF7")
	ColorDirty  = Hex("#8A6A3B")
	ColorBucket = Hex("#FFC907")
	ColorGround = Hex("#4FCB53")

	// Confetti is the celebration palette.
	Confetti = []Color{
		Hex("#2E9DF7"),
		Hex("#4FCB53"),
		Hex("#FFC907"),
		Hex("#FF902A"),
		Hex("#F5402C"),
	}
)

// ClearScreen clears the terminal and moves cursor to top-left.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}

// EnableMouse turns on click reporting in SGR encoding.
func EnableMouse(w io.Writer) {
	fmt.Fprint(w, "\033[?1000h\033[?1006h")
}

// DisableMouse turns click reporting off again.
func DisableMouse(w io.Writer) {
	fmt.Fprint(w, "\033[?1006l\033[?1000l")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
