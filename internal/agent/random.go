package agent

import (
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/shopspring/decimal"
)

// RandomAgent is the zero-intelligence baseline: coin-flip side, 50/50
// market-vs-limit, limit price a small random offset from mid (spec
// §4.5 RandomAgent). It never updates balance or inventory on fill —
// matching the original's unmodified base on_trade.
type RandomAgent struct {
	Base
}

// NewRandomAgent builds a RandomAgent with its own RNG stream.
func NewRandomAgent(id string, arrivalRate float64, seed int64) *RandomAgent {
	return &RandomAgent{Base: NewBase(id, arrivalRate, 0, 0, seed)}
}

var randomOffsets = []int64{-2, -1, 1, 2}

func (a *RandomAgent) GetAction(state MarketState) []Action {
	side := domain.Buy
	if a.Rng.Intn(2) == 1 {
		side = domain.Sell
	}

	if a.Rng.Float64() < 0.5 {
		qty := int64(a.Rng.Intn(5) + 1)
		return []Action{{Kind: ActionPlaceMarket, Side: side, Qty: qty}}
	}

	ref := decimal.NewFromInt(100)
	if state.Mid != nil {
		ref = *state.Mid
	}
	offset := randomOffsets[a.Rng.Intn(len(randomOffsets))]
	price := ref.Add(decimal.NewFromInt(offset))
	qty := int64(a.Rng.Intn(5) + 1)

	return []Action{{Kind: ActionPlaceLimit, Side: side, Price: price, Qty: qty}}
}
