package agent

import (
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/shopspring/decimal"
)

// MarketMakerAgent quotes both sides around mid, skewed by its current
// inventory, cancelling and replacing its whole quote every arrival
// (spec §4.5 MarketMakerAgent). It is the strategy the testable
// property "mean spread narrows with an active MM" (spec §8) is
// measured against.
type MarketMakerAgent struct {
	Base
	BaseSpread    decimal.Decimal
	InventorySkew decimal.Decimal
	MaxInventory  int64
}

// NewMarketMakerAgent builds a MarketMakerAgent with the documented
// defaults (base_spread=1, inventory_skew=0.1, max_inventory=20,
// cash=100000) overridable by the caller.
func NewMarketMakerAgent(id string, arrivalRate, baseSpread, inventorySkew float64, maxInventory int64, cash float64, seed int64) *MarketMakerAgent {
	return &MarketMakerAgent{
		Base:          NewBase(id, arrivalRate, cash, 0, seed),
		BaseSpread:    decimal.NewFromFloat(baseSpread),
		InventorySkew: decimal.NewFromFloat(inventorySkew),
		MaxInventory:  maxInventory,
	}
}

func (a *MarketMakerAgent) GetAction(state MarketState) []Action {
	mid := decimal.NewFromInt(100)
	if state.Mid != nil {
		mid = *state.Mid
	}

	skew := a.InventorySkew.Mul(decimal.NewFromInt(a.InventoryQty))
	halfSpread := a.BaseSpread.Div(decimal.NewFromInt(2))

	var bid, ask decimal.Decimal
	var crossed bool
	if state.BestBid != nil && state.BestAsk != nil {
		floorBid := state.BestBid.Add(decimal.NewFromInt(1))
		wantBid := mid.Sub(halfSpread).Sub(skew)
		bid = decimal.Max(floorBid, wantBid)

		capAsk := state.BestAsk.Sub(decimal.NewFromInt(1))
		wantAsk := mid.Add(halfSpread).Add(skew)
		ask = decimal.Min(capAsk, wantAsk)

		crossed = bid.GreaterThanOrEqual(ask)
	} else {
		bid = mid.Sub(halfSpread).Sub(skew)
		ask = mid.Add(halfSpread).Add(skew)
	}

	// Cancel every prior resting quote unconditionally, even when the
	// computed quotes would cross (spec §4.5): only the new-quote
	// posting below is gated on crossed, never the cancellation.
	var actions []Action
	for oid := range a.Active {
		actions = append(actions, Action{Kind: ActionCancel, CancelOrderID: oid})
		delete(a.Active, oid)
	}

	if crossed {
		return actions
	}

	const qty = 1
	if a.InventoryQty < a.MaxInventory {
		actions = append(actions, Action{Kind: ActionPlaceLimit, Side: domain.Buy, Price: bid, Qty: qty})
	}
	if a.InventoryQty > -a.MaxInventory {
		actions = append(actions, Action{Kind: ActionPlaceLimit, Side: domain.Sell, Price: ask, Qty: qty})
	}

	return actions
}

func (a *MarketMakerAgent) OnTrade(trade domain.Trade, side domain.Side) {
	a.applyFill(trade, side)
}
