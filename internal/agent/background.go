package agent

import (
	"sort"

	"github.com/fairbook/lobsim/internal/domain"
	"github.com/shopspring/decimal"
)

// BackgroundAgent is the recurring low-priority background trader
// that keeps the book maintained between the "real" agents' arrivals
// (spec §4.4's `cancel_prob`, SPEC_FULL.md §4): each arrival it either
// cancels one of its own resting quotes with probability CancelProb,
// or replenishes the book with a small resting limit order near mid.
type BackgroundAgent struct {
	Base
	CancelProb float64
}

// NewBackgroundAgent builds the background maintenance trader. seed
// should come from a population-independent source (scenario.JitterSeed)
// so its draws never perturb any "real" agent's RNG stream.
func NewBackgroundAgent(id string, arrivalRate, cancelProb float64, seed int64) *BackgroundAgent {
	return &BackgroundAgent{
		Base:       NewBase(id, arrivalRate, 0, 0, seed),
		CancelProb: cancelProb,
	}
}

func (a *BackgroundAgent) GetAction(state MarketState) []Action {
	if len(a.Active) > 0 && a.Rng.Float64() < a.CancelProb {
		if id, ok := a.pickActive(); ok {
			return []Action{{Kind: ActionCancel, CancelOrderID: id}}
		}
	}

	side := domain.Buy
	if a.Rng.Intn(2) == 1 {
		side = domain.Sell
	}

	ref := decimal.NewFromInt(100)
	if state.Mid != nil {
		ref = *state.Mid
	}
	offset := decimal.NewFromInt(int64(a.Rng.Intn(5) + 1))
	var price decimal.Decimal
	if side == domain.Buy {
		price = ref.Sub(offset)
	} else {
		price = ref.Add(offset)
	}
	qty := int64(a.Rng.Intn(3) + 1)

	return []Action{{Kind: ActionPlaceLimit, Side: side, Price: price, Qty: qty}}
}

// pickActive deterministically selects one of this agent's resting
// order ids to cancel: active ids are sorted before the RNG draw so
// the choice never depends on Go's randomized map iteration order.
func (a *BackgroundAgent) pickActive() (uint64, bool) {
	if len(a.Active) == 0 {
		return 0, false
	}
	ids := make([]uint64, 0, len(a.Active))
	for id := range a.Active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[a.Rng.Intn(len(ids))], true
}
