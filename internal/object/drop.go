package object

import (
	"github.com/tomz197/dropcatch/internal/draw"
	"github.com/tomz197/dropcatch/internal/physics"
	"github.com/tomz197/dropcatch/internal/round"
)

// clickSlack widens the clickable area around a drop.
const clickSlack = 1.8

// Drop is a falling water drop. It crosses the play field in its fall
// duration and can be collected exactly once.
type Drop struct {
	X, Y      float64 // Centre of the round body
	Radius    float64
	Speed     float64 // Logical units per second
	Kind      round.DropKind
	collected bool
}

// NewDrop places a spawned drop above the field at its drawn column.
func NewDrop(d round.Drop, field Screen, radius, sideMargin float64) *Drop {
	w := float64(field.Width)
	span := max(w-2*sideMargin, 0)
	travel := float64(field.Height) + 2*radius

	speed := travel
	if secs := d.FallDuration.Seconds(); secs > 0 {
		speed = travel / secs
	}
	return &Drop{
		X:      sideMargin + d.Column*span,
		Y:      -radius,
		Radius: radius,
		Speed:  speed,
		Kind:   d.Kind,
	}
}

// Collect marks the drop as caught. It reports false if it already was.
func (d *Drop) Collect() bool {
	if d.collected {
		return false
	}
	d.collected = true
	return true
}

// Collected reports whether the drop was caught.
func (d *Drop) Collected() bool {
	return d.collected
}

// Hit reports whether a logical point, such as a click, lands on the drop.
func (d *Drop) Hit(x, y float64) bool {
	return physics.PointInCircle(x, y, d.X, d.Y-d.Radius*0.5, d.Radius*clickSlack)
}

// Update moves the drop down. Caught drops and drops that left the field
// are removed; a missed drop costs nothing.
func (d *Drop) Update(ctx UpdateContext) (bool, error) {
	if d.collected {
		return true, nil
	}
	d.Y += d.Speed * ctx.Delta.Seconds()
	return d.Y-d.Radius > float64(ctx.Field.Height), nil
}

// Color returns the drop's colour.
func (d *Drop) Color() draw.Color {
	if d.Kind == round.DropDirty {
		return draw.ColorDirty
	}
	return draw.ColorClean
}

// Draw renders a teardrop: a round body with a pointed tip above it.
func (d *Drop) Draw(ctx DrawContext) error {
	ctx.Canvas.SetColor(d.Color())
	ctx.Canvas.FillCircle(d.X, d.Y, d.Radius)

	tip := ctx.Canvas.BorrowPoints(3)
	tip[0] = draw.Point{X: d.X - d.Radius*0.85, Y: d.Y - d.Radius*0.2}
	tip[1] = draw.Point{X: d.X, Y: d.Y - d.Radius*2.4}
	tip[2] = draw.Point{X: d.X + d.Radius*0.85, Y: d.Y - d.Radius*0.2}
	ctx.Canvas.DrawPolygon(tip, true)
	return nil
}
