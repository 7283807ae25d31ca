package object

import (
	"math"
	"math/rand"
	"sync"

	"github.com/tomz197/dropcatch/internal/draw"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived coloured speck: a confetti piece or a splash droplet.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity
	Gravity     float64 // Downward acceleration
	Drag        float64 // Velocity decay (1.0 = no drag)
	Swing       float64 // Horizontal sway amplitude in units per second
	SwingRate   float64 // Sway frequency in radians per second
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
	Color       draw.Color
	Fade        bool // Whether to disappear in the last quarter of its life
	age         float64
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy, lifetime float64, color draw.Color) *Particle {
	p := particlePool.Get().(*Particle)
	*p = Particle{
		X:           x,
		Y:           y,
		VX:          vx,
		VY:          vy,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        1.0,
		Color:       color,
		Fade:        true,
	}
	return p
}

// Release returns the particle to the pool for reuse.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnConfetti showers count pieces from above the field. Pieces fall
// slowly and sway from side to side.
func SpawnConfetti(field Screen, count int, lifetime float64, spawner Spawner) {
	if spawner == nil {
		return
	}
	w := float64(field.Width)
	h := float64(field.Height)
	for i := 0; i < count; i++ {
		x := rand.Float64() * w
		y := -rand.Float64() * h * 0.4
		vx := (rand.Float64() - 0.5) * 6
		vy := 14 + rand.Float64()*16
		life := lifetime * (0.7 + rand.Float64()*0.3)

		p := NewParticle(x, y, vx, vy, life, draw.Confetti[rand.Intn(len(draw.Confetti))])
		p.Swing = 4 + rand.Float64()*8
		p.SwingRate = 3 + rand.Float64()*4
		p.age = rand.Float64() * 2 * math.Pi
		p.Fade = false
		spawner.Spawn(p)
	}
}

// SpawnSplash bursts count droplets upward from a caught drop.
func SpawnSplash(x, y float64, color draw.Color, count int, spawner Spawner) {
	if spawner == nil {
		return
	}
	for i := 0; i < count; i++ {
		// Upper half circle
		angle := math.Pi + rand.Float64()*math.Pi
		spd := 12 + rand.Float64()*14
		life := 0.35 + rand.Float64()*0.25

		p := NewParticle(x, y, math.Cos(angle)*spd, math.Sin(angle)*spd, life, color)
		p.Gravity = 60
		p.Drag = 0.95
		spawner.Spawn(p)
	}
}

// Update moves the particle and checks lifetime.
func (p *Particle) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()

	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true, nil
	}

	if p.Drag != 1.0 {
		dragFactor := math.Pow(p.Drag, dt*60) // Normalize drag to ~60fps
		p.VX *= dragFactor
		p.VY *= dragFactor
	}
	p.VY += p.Gravity * dt
	p.age += dt

	p.X += (p.VX + math.Sin(p.age*p.SwingRate)*p.Swing) * dt
	p.Y += p.VY * dt

	return p.Y > float64(ctx.Field.Height)+1, nil
}

// Draw renders the particle as a pixel on the canvas.
func (p *Particle) Draw(ctx DrawContext) error {
	if p.Fade && p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime < 0.25 {
		return nil
	}
	if p.Y < 0 {
		return nil
	}
	ctx.Canvas.SetColor(p.Color)
	ctx.Canvas.SetFloat(p.X, p.Y)
	return nil
}
