// Package environment translates an agent's symbolic Action into a
// concrete domain.Order and the scheduling events that carry it to the
// matching engine, applying exchange-side rules the agent never sees:
// tick quantization, lot-size clamping, and per-message latency (spec
// §4.4).
package environment

import (
	"fmt"

	"github.com/fairbook/lobsim/internal/agent"
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/latency"
	"github.com/fairbook/lobsim/internal/orderbook"
	"github.com/shopspring/decimal"
)

// Config holds the exchange-side parameters every translated order is
// subject to.
type Config struct {
	TickSize decimal.Decimal
	LotSize  int64
}

// Environment is the read/translate boundary between agents and the
// book + engine. It owns the agent-order id sequence: ids are assigned
// here, counting up from 1, once, at translation time, and never reused.
type Environment struct {
	book      *orderbook.Book
	latency   *latency.Model
	cfg       Config
	nextOrder uint64
}

// New builds an Environment wired to a live book and a latency model.
func New(book *orderbook.Book, lat *latency.Model, cfg Config) *Environment {
	return &Environment{book: book, latency: lat, cfg: cfg}
}

// GetMarketState reports the current best bid/ask, mid (when both
// sides are populated), and the full L2 snapshot (spec §4.4
// get_market_state).
func (e *Environment) GetMarketState() agent.MarketState {
	snap := e.book.CurrentSnapshot()
	state := agent.MarketState{Book: snap}

	bestBid, okBid := snap.BestBid()
	bestAsk, okAsk := snap.BestAsk()
	if okBid {
		state.BestBid = &bestBid
	}
	if okAsk {
		state.BestAsk = &bestAsk
	}
	if okBid && okAsk {
		mid := bestBid.Add(bestAsk).Div(decimal.NewFromInt(2))
		state.Mid = &mid
	}
	return state
}

// quantize rounds a limit price to the tick grid, direction-aware:
// buys floor (never overpay past the grid), sells ceil (never
// underquote past the grid) — spec §4.4, §9 Open Question 2.
func (e *Environment) quantize(side domain.Side, price decimal.Decimal) decimal.Decimal {
	if e.cfg.TickSize.IsZero() {
		return price
	}
	ticks := price.Div(e.cfg.TickSize)
	if side == domain.Buy {
		ticks = ticks.Floor()
	} else {
		ticks = ticks.Ceil()
	}
	return ticks.Mul(e.cfg.TickSize)
}

func (e *Environment) clampQty(qty int64) int64 {
	if qty < e.cfg.LotSize {
		return e.cfg.LotSize
	}
	return qty
}

// ApplyAction translates one Action into book mutations and scheduling
// side effects. Cancel is applied immediately against the book and
// bypasses the latency model entirely; PlaceLimit/PlaceMarket build an
// Order and return it wrapped in an EventOrderSubmission scheduled
// latency.Draw() in the future, matching spec §4.4's "one latency draw
// per submitted order, cancels are not delayed".
func (e *Environment) ApplyAction(currentTime float64, ag agent.Agent, action agent.Action) *domain.Event {
	switch action.Kind {
	case agent.ActionCancel:
		e.book.Cancel(action.CancelOrderID)
		ag.ClearActive(action.CancelOrderID)
		return nil

	case agent.ActionPlaceLimit:
		price := e.quantize(action.Side, action.Price)
		qty := e.clampQty(action.Qty)
		e.nextOrder++
		order := &domain.Order{
			ID:            e.nextOrder,
			OwningAgentID: ag.ID(),
			Side:          action.Side,
			Type:          domain.LimitOrder,
			Price:         &price,
			Qty:           qty,
			RemainingQty:  qty,
		}
		ag.RegisterActive(order.ID, qty)
		return e.scheduleSubmission(currentTime, order)

	case agent.ActionPlaceMarket:
		qty := e.clampQty(action.Qty)
		e.nextOrder++
		order := &domain.Order{
			ID:            e.nextOrder,
			OwningAgentID: ag.ID(),
			Side:          action.Side,
			Type:          domain.MarketOrder,
			Qty:           qty,
			RemainingQty:  qty,
		}
		return e.scheduleSubmission(currentTime, order)

	default:
		panic(fmt.Sprintf("environment: unknown action kind %v", action.Kind))
	}
}

func (e *Environment) scheduleSubmission(currentTime float64, order *domain.Order) *domain.Event {
	delay := e.latency.Draw()
	order.Timestamp = currentTime + delay
	return &domain.Event{
		Time:    order.Timestamp,
		Type:    domain.EventOrderSubmission,
		AgentID: order.OwningAgentID,
		Order:   order,
	}
}
