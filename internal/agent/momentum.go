package agent

import (
	"github.com/fairbook/lobsim/internal/domain"
)

// MomentumAgent trend-follows an SMA crossover of observed mid prices:
// buy when mid is above its trailing average, sell when it is at or
// below it, aggressing with a market order once it has enough history
// and the cash or inventory for the trade; otherwise it does nothing
// (spec §4.5 MomentumAgent).
type MomentumAgent struct {
	Base
	Window int
	prices []float64
	MaxQty int64
}

// NewMomentumAgent builds a MomentumAgent with the given SMA window;
// defaults mirror the documented window=50, max_qty=5, cash=10000.
func NewMomentumAgent(id string, arrivalRate float64, window int, maxQty int64, cash float64, seed int64) *MomentumAgent {
	return &MomentumAgent{
		Base:   NewBase(id, arrivalRate, cash, 0, seed),
		Window: window,
		MaxQty: maxQty,
	}
}

func (a *MomentumAgent) GetAction(state MarketState) []Action {
	if state.Mid == nil {
		return nil
	}
	mid := state.Mid.InexactFloat64()

	a.prices = append(a.prices, mid)
	if len(a.prices) > a.Window {
		a.prices = a.prices[len(a.prices)-a.Window:]
	}
	if len(a.prices) < a.Window {
		return nil // not enough history
	}

	var sum float64
	for _, p := range a.prices {
		sum += p
	}
	sma := sum / float64(a.Window)

	side := domain.Sell
	if mid > sma {
		side = domain.Buy
	}
	qty := int64(a.Rng.Intn(int(a.MaxQty)) + 1)

	if side == domain.Buy && a.BalanceAmt < mid*float64(qty) {
		return nil
	}
	if side == domain.Sell && a.InventoryQty < qty {
		return nil
	}

	return []Action{{Kind: ActionPlaceMarket, Side: side, Qty: qty}}
}

func (a *MomentumAgent) OnTrade(trade domain.Trade, side domain.Side) {
	a.applyFill(trade, side)
}
