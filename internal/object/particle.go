package object

import (
	"math"
	"math/rand"
	"sync"

	"github.com/tomz197/raindrops/internal/draw"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Confetti tuning
const (
	confettiGravity  = 40.0 // Logical units per second squared
	confettiDrag     = 0.97
	confettiLifetime = 2.5 // Seconds
)

// Particle is a short-lived confetti piece.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
	Drag        float64 // Velocity decay (1.0 = no drag)
	Gravity     float64
	Color       draw.Color
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy, lifetime float64, color draw.Color) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.VX = vx
	p.VY = vy
	p.Lifetime = lifetime
	p.MaxLifetime = lifetime
	p.Drag = confettiDrag
	p.Gravity = confettiGravity
	p.Color = color
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnConfetti bursts count colored particles upwards from (x, y).
func SpawnConfetti(x, y float64, count int, rng *rand.Rand, spawner Spawner) {
	if spawner == nil {
		return
	}

	for i := 0; i < count; i++ {
		// Upward cone, +-60 degrees around straight up
		angle := -math.Pi/2 + (rng.Float64()-0.5)*2*math.Pi/3
		spd := 30 + rng.Float64()*50
		life := confettiLifetime * (0.6 + rng.Float64()*0.4)
		color := draw.ConfettiColors[rng.Intn(len(draw.ConfettiColors))]

		spawner.Spawn(NewParticle(x, y, math.Cos(angle)*spd, math.Sin(angle)*spd, life, color))
	}
}

// Update moves the particle and checks lifetime.
func (p *Particle) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()

	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true, nil
	}

	dragFactor := math.Pow(p.Drag, dt*60) // Normalize drag to ~60fps
	p.VX *= dragFactor
	p.VY = p.VY*dragFactor + p.Gravity*dt

	p.X += p.VX * dt
	p.Y += p.VY * dt

	// Gone once it falls through the floor or leaves the sides
	if p.Y > ctx.Field.Bottom || p.X < 0 || p.X > ctx.Field.Width {
		return true, nil
	}
	return false, nil
}

// Draw renders the particle as a pixel on the canvas.
func (p *Particle) Draw(ctx DrawContext) error {
	// Skip faded particles (< 15% lifetime)
	if p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime < 0.15 {
		return nil
	}
	ctx.Canvas.SetFloat(p.X, p.Y, p.Color)
	return nil
}
