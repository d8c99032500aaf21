// Package fairvalue implements the univariate fair-value random walk
// that agents read to anchor limit prices away from the live book
// (spec §4.6): v ← v + σ·Z, one step per FairValueUpdateEvent.
package fairvalue

import "math/rand"

// Process is a scalar Brownian random walk seeded once at
// construction. It is not locked to simulation time — callers decide
// when to Step it, typically from a recurring engine event.
type Process struct {
	value float64
	sigma float64
	rng   *rand.Rand
}

// New creates a fair-value process starting at initial with volatility
// sigma, using a private RNG seeded from seed (spec §9 RNG discipline:
// fair value must not share the agent-decision or latency RNGs).
func New(initial, sigma float64, seed int64) *Process {
	return &Process{
		value: initial,
		sigma: sigma,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Step advances the process by one σ·N(0,1) draw and returns the new
// value.
func (p *Process) Step() float64 {
	p.value += p.sigma * p.rng.NormFloat64()
	return p.value
}

// Get returns the current value without advancing the walk.
func (p *Process) Get() float64 {
	return p.value
}
