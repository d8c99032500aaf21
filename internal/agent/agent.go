// Package agent implements the trading-agent capability set and the
// four documented strategies (spec §4.5): a polymorphic interface over
// next-arrival timing, action selection, and trade notification,
// avoiding dynamic attribute lookup by giving every concrete agent
// explicit fields for balance, inventory, and active orders (spec §9).
package agent

import (
	"math/rand"

	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/snapshot"
)

// MarketState is what an agent observes at arrival time (spec §4.4
// get_market_state): best bid/ask, mid when both exist, and the full
// L2 snapshot.
type MarketState struct {
	BestBid *domain.Price
	BestAsk *domain.Price
	Mid     *domain.Price
	Book    *snapshot.Book
}

// ActionKind tags the Action sum type.
type ActionKind int8

const (
	ActionPlaceLimit ActionKind = iota
	ActionPlaceMarket
	ActionCancel
)

// Action is a tagged struct standing in for the PlaceLimit / PlaceMarket
// / Cancel variants (spec §4.4, §9 "model Action ... as tagged sum
// types"). Price is pre-quantization; the environment applies
// direction-aware tick rounding.
type Action struct {
	Kind          ActionKind
	Side          domain.Side
	Price         domain.Price // PlaceLimit only
	Qty           int64        // PlaceLimit / PlaceMarket only
	CancelOrderID uint64       // Cancel only
}

// Agent is the narrow capability set the engine and environment call
// into. Every method is cheap and synchronous — nothing here suspends.
type Agent interface {
	ID() string
	NextEventTime(current float64) float64
	GetAction(state MarketState) []Action
	OnTrade(trade domain.Trade, side domain.Side)

	RegisterActive(orderID uint64, qty int64)
	DecrementActive(orderID uint64, qty int64)
	ClearActive(orderID uint64)
	ActiveOrders() map[uint64]int64

	Balance() float64
	Inventory() int64
}

// Base supplies the fields and bookkeeping every concrete agent shares:
// identity, arrival rate, balance/inventory, the active-order ledger,
// and a private RNG (spec §9 RNG discipline — one RNG per agent, never
// shared with the latency or fair-value processes).
type Base struct {
	AgentID      string
	ArrivalRate  float64
	BalanceAmt   float64
	InventoryQty int64
	Active       map[uint64]int64
	Rng          *rand.Rand
}

// NewBase constructs the shared agent state.
func NewBase(id string, arrivalRate, startingBalance float64, startingInventory int64, seed int64) Base {
	return Base{
		AgentID:      id,
		ArrivalRate:  arrivalRate,
		BalanceAmt:   startingBalance,
		InventoryQty: startingInventory,
		Active:       make(map[uint64]int64),
		Rng:          rand.New(rand.NewSource(seed)),
	}
}

func (b *Base) ID() string { return b.AgentID }

// NextEventTime draws the default Exp(λ) inter-arrival time: mean 1/λ
// (spec §4.5 default next_event_time).
func (b *Base) NextEventTime(current float64) float64 {
	if b.ArrivalRate <= 0 {
		return current
	}
	return current + b.Rng.ExpFloat64()/b.ArrivalRate
}

func (b *Base) OnTrade(trade domain.Trade, side domain.Side) {}

func (b *Base) RegisterActive(orderID uint64, qty int64) { b.Active[orderID] = qty }

func (b *Base) DecrementActive(orderID uint64, qty int64) {
	remaining, ok := b.Active[orderID]
	if !ok {
		return
	}
	remaining -= qty
	if remaining <= 0 {
		delete(b.Active, orderID)
		return
	}
	b.Active[orderID] = remaining
}

func (b *Base) ClearActive(orderID uint64) { delete(b.Active, orderID) }

func (b *Base) ActiveOrders() map[uint64]int64 { return b.Active }

func (b *Base) Balance() float64 { return b.BalanceAmt }

func (b *Base) Inventory() int64 { return b.InventoryQty }

// applyFill updates balance/inventory symmetrically for a fill on the
// given side — the shared update shape of MarketMakerAgent,
// NoiseTraderAgent, and MomentumAgent's on_trade (grounded in
// Week 2/Day 10 agents.py; RandomAgent intentionally does not call
// this, matching the original's no-op base on_trade).
func (b *Base) applyFill(trade domain.Trade, side domain.Side) {
	price, _ := trade.Price.Float64()
	qty := float64(trade.Qty)
	if side == domain.Buy {
		b.InventoryQty += trade.Qty
		b.BalanceAmt -= price * qty
	} else {
		b.InventoryQty -= trade.Qty
		b.BalanceAmt += price * qty
	}
}
