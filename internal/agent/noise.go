package agent

import (
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/fairvalue"
	"github.com/shopspring/decimal"
)

// NoiseTraderAgent is a zero-intelligence trader anchored to the fair
// value process rather than the book: mostly market orders, budget-
// and inventory-constrained, with an occasional aggressive limit near
// fair value (spec §4.5 NoiseTraderAgent).
type NoiseTraderAgent struct {
	Base
	fv     *fairvalue.Process
	MaxQty int64
}

// NewNoiseTraderAgent builds a NoiseTraderAgent reading a shared fair
// value process; defaults mirror the documented max_qty=5, cash=10000,
// starting inventory=10.
func NewNoiseTraderAgent(id string, arrivalRate float64, fv *fairvalue.Process, maxQty int64, cash float64, seed int64) *NoiseTraderAgent {
	return &NoiseTraderAgent{
		Base:   NewBase(id, arrivalRate, cash, 10, seed),
		fv:     fv,
		MaxQty: maxQty,
	}
}

func (a *NoiseTraderAgent) GetAction(state MarketState) []Action {
	side := domain.Buy
	if a.Rng.Intn(2) == 1 {
		side = domain.Sell
	}
	qty := int64(a.Rng.Intn(int(a.MaxQty)) + 1)

	fv := decimal.NewFromFloat(a.fv.Get())

	if side == domain.Buy && a.BalanceAmt < fv.InexactFloat64()*float64(qty) {
		return nil
	}
	if side == domain.Sell && a.InventoryQty < qty {
		return nil
	}

	// 70% market, 30% aggressive limit near fair value.
	if a.Rng.Float64() < 0.7 {
		return []Action{{Kind: ActionPlaceMarket, Side: side, Qty: qty}}
	}

	offset := int64(a.Rng.Intn(9) - 4) // [-4, 4]
	price := fv.Add(decimal.NewFromInt(offset))
	return []Action{{Kind: ActionPlaceLimit, Side: side, Price: price, Qty: qty}}
}

func (a *NoiseTraderAgent) OnTrade(trade domain.Trade, side domain.Side) {
	a.applyFill(trade, side)
}
