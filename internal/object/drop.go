package object

import (
	"github.com/tomz197/raindrops/internal/draw"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/physics"
)

// Drop sprite dimensions in logical units.
const (
	DropWidth  = 6.0
	DropHeight = 8.0
)

// dropShape is a teardrop outline relative to the sprite's top-left corner.
var dropShape = [...]draw.Point{
	{X: 3, Y: 0},
	{X: 4, Y: 3},
	{X: 5.5, Y: 5},
	{X: 5, Y: 7},
	{X: 3, Y: 8},
	{X: 1, Y: 7},
	{X: 0.5, Y: 5},
	{X: 2, Y: 3},
}

// Drop is the falling sprite of a session drop. Its height follows the
// session clock so it lands exactly when the drop expires.
type Drop struct {
	game.Drop
	Y      float64
	landed bool
	points [len(dropShape)]draw.Point
}

// NewDrop creates a sprite at the top of the field, pulled inside it when
// the session's field is wider.
func NewDrop(d game.Drop, f Field) *Drop {
	d.X = physics.Clamp(d.X, 0, f.Width-DropWidth)
	return &Drop{Drop: d, Y: f.Top}
}

// Update moves the drop down. Returns true once it reaches the floor.
func (d *Drop) Update(ctx UpdateContext) (bool, error) {
	p := d.Progress(ctx.Now)
	d.Y = ctx.Field.Top + p*(ctx.Field.Bottom-ctx.Field.Top-DropHeight)
	if p >= 1 {
		d.landed = true
		return true, nil
	}
	return false, nil
}

// Landed reports whether the drop reached the floor.
func (d *Drop) Landed() bool {
	return d.landed
}

// Bounds returns the sprite's hit box.
func (d *Drop) Bounds() physics.Rect {
	return physics.Rect{X: d.X, Y: d.Y, W: DropWidth, H: DropHeight}
}

// Draw fills the teardrop in the drop kind's color.
func (d *Drop) Draw(ctx DrawContext) error {
	for i, p := range dropShape {
		d.points[i] = draw.Point{X: d.X + p.X, Y: d.Y + p.Y}
	}
	ctx.Canvas.DrawPolygon(d.points[:], KindColor(d.Kind), true)
	return nil
}

// KindColor returns the display color of a drop kind.
func KindColor(k game.DropKind) draw.Color {
	switch k {
	case game.DropBonus:
		return draw.ColorLightBlue
	case game.DropBad:
		return draw.ColorBrown
	default:
		return draw.ColorDarkBlue
	}
}
