package object

import (
	"github.com/tomz197/raindrops/internal/draw"
)

// popupLifetime is how long score pop-ups stay on screen.
const popupLifetime = 0.8 // Seconds

// popupRise is how far a pop-up floats up over its lifetime, in logical units.
const popupRise = 6.0

// Popup is floating text shown where a drop was clicked.
type Popup struct {
	X, Y     float64 // Logical position of the text center
	Value    string
	Color    draw.Color
	Lifetime float64
}

// NewPopup creates a pop-up centered on (x, y).
func NewPopup(x, y float64, value string, color draw.Color) *Popup {
	return &Popup{X: x, Y: y, Value: value, Color: color, Lifetime: popupLifetime}
}

// Update floats the text upwards until it expires.
func (t *Popup) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()
	t.Lifetime -= dt
	if t.Lifetime <= 0 {
		return true, nil
	}
	t.Y -= popupRise / popupLifetime * dt
	return false, nil
}

// Draw writes the text and marks its cells so the canvas repaints them next frame.
func (t *Popup) Draw(ctx DrawContext) error {
	if t.Value == "" {
		return nil
	}
	col, row := ctx.Canvas.LogicalToTerminal(t.X, t.Y)
	col -= len(t.Value) / 2
	if col < 1 {
		col = 1
	}
	if maxCol := ctx.Canvas.TerminalWidth() - len(t.Value) + 1; col > maxCol {
		col = maxCol
	}
	if row < 1 || row > ctx.Canvas.TerminalHeight() || col < 1 {
		return nil
	}
	ctx.Writer.WriteColorAt(col, row, t.Color, t.Value)
	ctx.Canvas.MarkTextDirty(col, row, len(t.Value))
	return nil
}
