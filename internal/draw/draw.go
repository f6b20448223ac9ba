package draw

import "strconv"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a canvas pixel color. The zero value is an unset pixel.
type Color uint8

// Canvas colors. Values map to the xterm 256-color palette.
const (
	ColorNone Color = iota
	ColorDarkBlue
	ColorLightBlue
	ColorBrown
	ColorWhite
	ColorGray
	ColorRed
	ColorGreen
	ColorYellow
	ColorMagenta
	ColorCyan
)

// ConfettiColors are the colors used for celebration particles.
var ConfettiColors = []Color{ColorRed, ColorGreen, ColorYellow, ColorMagenta, ColorCyan, ColorLightBlue}

var palette = [...]int{
	ColorNone:      0,
	ColorDarkBlue:  26,
	ColorLightBlue: 117,
	ColorBrown:     130,
	ColorWhite:     255,
	ColorGray:      244,
	ColorRed:       196,
	ColorGreen:     46,
	ColorYellow:    226,
	ColorMagenta:   201,
	ColorCyan:      51,
}

// ANSI text attributes.
const (
	ColorReset = "\033[0m"
	Bold       = "\033[1m"
)

// FG returns the escape sequence selecting c as foreground color.
func (c Color) FG() string {
	if int(c) >= len(palette) || c == ColorNone {
		return "\033[39m"
	}
	return "\033[38;5;" + strconv.Itoa(palette[c]) + "m"
}

// BG returns the escape sequence selecting c as background color.
func (c Color) BG() string {
	if int(c) >= len(palette) || c == ColorNone {
		return "\033[49m"
	}
	return "\033[48;5;" + strconv.Itoa(palette[c]) + "m"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
