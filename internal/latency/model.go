// Package latency draws the per-message arrival delay applied between
// an agent's decision and the order's arrival at the book: a single
// Exp(1/mean_latency) draw per submitted order (spec §4.4, §9).
package latency

import "math/rand"

// Model draws exponential latencies with a private RNG, kept separate
// from the agent-decision and fair-value RNGs per spec §9's "separate
// RNGs per concern" discipline.
type Model struct {
	MeanLatency float64
	rng         *rand.Rand
}

// NewModel creates a latency model with the given mean and seed.
func NewModel(meanLatency float64, seed int64) *Model {
	return &Model{
		MeanLatency: meanLatency,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Draw returns one sample from Exp(1/MeanLatency), i.e. a delay whose
// mean is MeanLatency.
func (m *Model) Draw() float64 {
	if m.MeanLatency <= 0 {
		return 0
	}
	return m.rng.ExpFloat64() * m.MeanLatency
}
