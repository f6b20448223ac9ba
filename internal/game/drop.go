package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidWeights is returned by Weights.Validate.
var ErrInvalidWeights = errors.New("invalid spawn weights")

// DropKind is the variant assigned to a drop at spawn.
type DropKind int

const (
	DropRegular DropKind = iota // Good, 5 points
	DropBonus                   // Good, 10 points
	DropBad                     // Costs a life
)

// Points returns the score awarded for clicking a drop of this kind.
func (k DropKind) Points() int {
	switch k {
	case DropRegular:
		return 5
	case DropBonus:
		return 10
	default:
		return 0
	}
}

// IsGood reports whether clicking the drop scores points.
func (k DropKind) IsGood() bool {
	return k == DropRegular || k == DropBonus
}

func (k DropKind) String() string {
	switch k {
	case DropRegular:
		return "regular"
	case DropBonus:
		return "bonus"
	case DropBad:
		return "bad"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k DropKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Weights configures the weighted draw of drop kinds. Values are relative;
// they are normalised by their sum.
type Weights struct {
	Bad     float64
	Bonus   float64
	Regular float64
}

// DefaultWeights is 15% bad, 25% bonus, 60% regular.
var DefaultWeights = Weights{Bad: 0.15, Bonus: 0.25, Regular: 0.60}

// Validate rejects negative or non-finite weights and an all-zero table.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Bad, w.Bonus, w.Regular} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite weight in %+v", ErrInvalidWeights, w)
		}
	}
	if w.Bad < 0 || w.Bonus < 0 || w.Regular < 0 {
		return fmt.Errorf("%w: negative weight in %+v", ErrInvalidWeights, w)
	}
	sum := w.Bad + w.Bonus + w.Regular
	if sum <= 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}
	if math.IsInf(sum, 0) {
		return fmt.Errorf("%w: weights overflow", ErrInvalidWeights)
	}
	return nil
}

// Draw maps r, uniform in [0,1), to a kind: bad first, then bonus, then regular.
func (w Weights) Draw(r float64) DropKind {
	total := w.Bad + w.Bonus + w.Regular
	if w.Validate() != nil {
		w, total = DefaultWeights, 1
	}
	switch {
	case r < w.Bad/total:
		return DropBad
	case r < (w.Bad+w.Bonus)/total:
		return DropBonus
	default:
		return DropRegular
	}
}

// DropID identifies a drop within a session.
type DropID uint64

// Drop is a clickable object falling through the field.
type Drop struct {
	ID           DropID        `json:"id"`
	Kind         DropKind      `json:"kind"`
	X            float64       `json:"x"`
	SpawnedAt    time.Duration `json:"-"`
	FallDuration time.Duration `json:"-"`
}

// Progress returns how far the drop has fallen at time now, from 0 to 1.
func (d Drop) Progress(now time.Duration) float64 {
	if d.FallDuration <= 0 {
		return 1
	}
	p := float64(now-d.SpawnedAt) / float64(d.FallDuration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Field is the container drops fall through, in presentation units.
type Field struct {
	Width     float64
	DropWidth float64
}

// DefaultField matches a 600px browser container with 50px drops.
var DefaultField = Field{Width: 600, DropWidth: 50}

// MaxX returns the largest horizontal offset a drop may take.
func (f Field) MaxX() float64 {
	if f.Width <= f.DropWidth {
		return 0
	}
	return f.Width - f.DropWidth
}
