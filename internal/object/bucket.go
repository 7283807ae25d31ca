package object

import (
	"github.com/tomz197/dropcatch/internal/draw"
	"github.com/tomz197/dropcatch/internal/physics"
)

// Bucket is the player's catcher at the bottom of the field.
type Bucket struct {
	X, Y          float64 // Top-left corner
	Width, Height float64
	Speed         float64 // Logical units per second
}

// NewBucket centres a bucket on the bottom of the field.
func NewBucket(field Screen, width, height, margin, speed float64) *Bucket {
	return &Bucket{
		X:      (float64(field.Width) - width) / 2,
		Y:      float64(field.Height) - height - margin,
		Width:  width,
		Height: height,
		Speed:  speed,
	}
}

// Update moves the bucket with the held direction keys.
func (b *Bucket) Update(ctx UpdateContext) (bool, error) {
	dx := 0.0
	if ctx.Input.Left {
		dx -= b.Speed
	}
	if ctx.Input.Right {
		dx += b.Speed
	}
	b.X = physics.Clamp(b.X+dx*ctx.Delta.Seconds(), 0, float64(ctx.Field.Width)-b.Width)
	return false, nil
}

// Mouth returns the catching area: the upper half of the bucket.
func (b *Bucket) Mouth() physics.Rect {
	return physics.Rect{X: b.X, Y: b.Y, W: b.Width, H: b.Height / 2}
}

// Catches reports whether d is touching the bucket's mouth.
func (b *Bucket) Catches(d *Drop) bool {
	return physics.CircleIntersectsRect(d.X, d.Y, d.Radius, b.Mouth())
}

// CenterX returns the horizontal centre of the bucket.
func (b *Bucket) CenterX() float64 {
	return b.X + b.Width/2
}

// Draw renders a tapered pail.
func (b *Bucket) Draw(ctx DrawContext) error {
	taper := b.Width * 0.12
	pts := ctx.Canvas.BorrowPoints(4)
	pts[0] = draw.Point{X: b.X, Y: b.Y}
	pts[1] = draw.Point{X: b.X + b.Width, Y: b.Y}
	pts[2] = draw.Point{X: b.X + b.Width - taper, Y: b.Y + b.Height}
	pts[3] = draw.Point{X: b.X + taper, Y: b.Y + b.Height}
	ctx.Canvas.SetColor(draw.ColorBucket)
	ctx.Canvas.DrawPolygon(pts, true)
	return nil
}
