// Package scenario builds the initial book, the agent population, and
// the named background-flow presets (calm/thin/spike) a run starts
// from. Generalized from the original's 50-noise/10-MM/10-momentum
// fixed population into configurable per-kind counts.
package scenario

import (
	"fmt"
	"math/rand"

	"github.com/fairbook/lobsim/internal/agent"
	"github.com/fairbook/lobsim/internal/config"
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/fairvalue"
	"github.com/shopspring/decimal"
)

// BuildPopulation instantiates one agent per configured count, each
// with its own RNG stream (spec §9 RNG discipline). Agent seeds are
// assigned sequentially from the run seed across kinds, so changing one
// kind's count shifts the seeds of the kinds after it; only the
// background agent, seeded from JitterSeed, is independent of the counts.
func BuildPopulation(cfg *config.Config, fv *fairvalue.Process) []agent.Agent {
	var agents []agent.Agent
	seed := cfg.Seed

	for i := 0; i < cfg.Population.RandomAgents; i++ {
		seed++
		agents = append(agents, agent.NewRandomAgent(fmt.Sprintf("random-%d", i), 1.0, seed))
	}
	for i := 0; i < cfg.Population.MarketMakers; i++ {
		seed++
		agents = append(agents, agent.NewMarketMakerAgent(fmt.Sprintf("mm-%d", i), 1.0, 1.0, 0.1, 20, 100_000, seed))
	}
	for i := 0; i < cfg.Population.NoiseTraders; i++ {
		seed++
		agents = append(agents, agent.NewNoiseTraderAgent(fmt.Sprintf("noise-%d", i), 1.0, fv, 5, 10_000, seed))
	}
	for i := 0; i < cfg.Population.MomentumAgents; i++ {
		seed++
		agents = append(agents, agent.NewMomentumAgent(fmt.Sprintf("momentum-%d", i), 1.0, 50, 5, 10_000, seed))
	}

	jitter := JitterSeed(cfg)
	agents = append(agents, agent.NewBackgroundAgent("background", 0.5, cfg.CancelProb, jitter.Int63()))

	return agents
}

// InitialBook returns resting limit orders seeding both sides of the
// book around the configured initial fair value, so the first agent
// arrivals see a populated book rather than an empty one.
func InitialBook(cfg *config.Config, levels, depthPerLevel int, nextID func() uint64) []*domain.Order {
	mid := decimal.NewFromFloat(cfg.InitialFairValue)
	tick := decimal.NewFromFloat(cfg.TickSize)
	halfSpread := tick.Mul(decimal.NewFromInt(2))

	var orders []*domain.Order
	for lvl := 0; lvl < levels; lvl++ {
		bidPrice := mid.Sub(halfSpread).Sub(tick.Mul(decimal.NewFromInt(int64(lvl))))
		askPrice := mid.Add(halfSpread).Add(tick.Mul(decimal.NewFromInt(int64(lvl))))

		for i := 0; i < depthPerLevel; i++ {
			orders = append(orders,
				&domain.Order{
					ID:            nextID(),
					OwningAgentID: "background",
					Side:          domain.Buy,
					Type:          domain.LimitOrder,
					Price:         copyPrice(bidPrice),
					Qty:           cfg.LotSize,
					RemainingQty:  cfg.LotSize,
				},
				&domain.Order{
					ID:            nextID(),
					OwningAgentID: "background",
					Side:          domain.Sell,
					Type:          domain.LimitOrder,
					Price:         copyPrice(askPrice),
					Qty:           cfg.LotSize,
					RemainingQty:  cfg.LotSize,
				},
			)
		}
	}
	return orders
}

func copyPrice(p decimal.Decimal) *domain.Price {
	cp := p
	return &cp
}

// Preset names the three documented background-flow presets.
type Preset string

const (
	Calm  Preset = "calm"
	Thin  Preset = "thin"
	Spike Preset = "spike"
)

// ForName resolves a preset's initial-book seeding shape: how many
// price levels and how deep each level is (spec's scenario.md analogue,
// grounded on teacher's DefaultCalm/DefaultThin/DefaultSpike triplet).
// The background agent's cancel probability is config.Config.CancelProb,
// not a preset-derived constant, since it is viper-overridable per run.
func ForName(name Preset) (levels, depthPerLevel int) {
	switch name {
	case Thin:
		return 3, 2
	case Spike:
		return 5, 10
	default:
		return 5, 5
	}
}

// JitterSeed derives a population-independent RNG for scenario-level
// randomness (background cancels, order-flow shaping) separate from
// any individual agent's RNG.
func JitterSeed(cfg *config.Config) *rand.Rand {
	return rand.New(rand.NewSource(cfg.Seed ^ 0x5bd1e995))
}
