package sensor

import (
	"math"
	"math/rand/v2"
	"time"
)

// Spread is the half-width of the uniform perturbation applied per step.
const Spread = 5.0

// Generator produces synthetic readings as a bounded random walk.
type Generator struct {
	perturb func() float64
}

// NewGenerator returns a generator drawing perturbations from U(-Spread, Spread).
// A nil rng uses a time-seeded PCG source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32|1))
	}
	return &Generator{perturb: func() float64 {
		return (rng.Float64()*2 - 1) * Spread
	}}
}

// FixedGenerator returns a generator whose perturbation comes from fn.
func FixedGenerator(fn func() float64) *Generator {
	return &Generator{perturb: fn}
}

// Next returns the next value of the walk starting at prev.
func (g *Generator) Next(prev, min, max float64) float64 {
	return Step(prev, g.perturb(), min, max)
}

// Step applies delta to prev, clamps to [min, max] and rounds to one decimal.
func Step(prev, delta, min, max float64) float64 {
	return Round1(Clamp(prev+delta, min, max))
}

// Clamp limits v to [min, max].
func Clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
