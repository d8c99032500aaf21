package environment

import (
	"testing"

	"github.com/fairbook/lobsim/internal/agent"
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/latency"
	"github.com/fairbook/lobsim/internal/orderbook"
	"github.com/shopspring/decimal"
)

func newEnv(tick string, lot int64, meanLatency float64) *Environment {
	book := orderbook.New()
	lat := latency.NewModel(meanLatency, 1)
	cfg := Config{TickSize: decimal.RequireFromString(tick), LotSize: lot}
	return New(book, lat, cfg)
}

func TestQuantizeBuyFloorsSellCeils(t *testing.T) {
	e := newEnv("0.5", 1, 0)

	buyOrderEvt := e.ApplyAction(0, testAgent("buyer"), agent.Action{
		Kind: agent.ActionPlaceLimit, Side: domain.Buy, Price: decimal.RequireFromString("10.30"), Qty: 1,
	})
	if got := buyOrderEvt.Order.Price.String(); got != "10" {
		t.Fatalf("expected buy to floor to 10, got %s", got)
	}

	sellOrderEvt := e.ApplyAction(0, testAgent("seller"), agent.Action{
		Kind: agent.ActionPlaceLimit, Side: domain.Sell, Price: decimal.RequireFromString("10.30"), Qty: 1,
	})
	if got := sellOrderEvt.Order.Price.String(); got != "10.5" {
		t.Fatalf("expected sell to ceil to 10.5, got %s", got)
	}
}

func TestClampQtyToLotSize(t *testing.T) {
	e := newEnv("0.5", 5, 0)
	evt := e.ApplyAction(0, testAgent("a"), agent.Action{
		Kind: agent.ActionPlaceMarket, Side: domain.Buy, Qty: 1,
	})
	if evt.Order.Qty != 5 {
		t.Fatalf("expected qty clamped to lot size 5, got %d", evt.Order.Qty)
	}
}

func TestCancelBypassesLatencyAndReturnsNoEvent(t *testing.T) {
	e := newEnv("0.5", 1, 1000) // huge mean latency would push a submission far out
	ag := testAgent("a")
	ag.RegisterActive(99, 1)

	evt := e.ApplyAction(5, ag, agent.Action{Kind: agent.ActionCancel, CancelOrderID: 99})
	if evt != nil {
		t.Fatalf("expected Cancel to return no schedulable event, got %+v", evt)
	}
	if _, ok := ag.ActiveOrders()[99]; ok {
		t.Fatal("expected cancel to clear the agent's active-order ledger")
	}
}

func TestLimitOrderRegistersActiveOrder(t *testing.T) {
	e := newEnv("1", 1, 0)
	ag := testAgent("a")
	evt := e.ApplyAction(0, ag, agent.Action{Kind: agent.ActionPlaceLimit, Side: domain.Buy, Price: decimal.NewFromInt(100), Qty: 3})
	if _, ok := ag.ActiveOrders()[evt.Order.ID]; !ok {
		t.Fatal("expected limit order to register as active")
	}
}

func TestMarketOrderHasNoPrice(t *testing.T) {
	e := newEnv("1", 1, 0)
	evt := e.ApplyAction(0, testAgent("a"), agent.Action{Kind: agent.ActionPlaceMarket, Side: domain.Sell, Qty: 2})
	if evt.Order.Price != nil {
		t.Fatal("expected market order to carry no price")
	}
}

func TestMarketStateReportsMidOnlyWhenBothSidesPresent(t *testing.T) {
	book := orderbook.New()
	lat := latency.NewModel(0, 1)
	e := New(book, lat, Config{TickSize: decimal.NewFromInt(1), LotSize: 1})

	state := e.GetMarketState()
	if state.Mid != nil {
		t.Fatal("expected nil mid on empty book")
	}

	price := decimal.NewFromInt(100)
	book.Submit(&domain.Order{ID: 1, Side: domain.Buy, Type: domain.LimitOrder, Price: &price, Qty: 1, RemainingQty: 1})
	state = e.GetMarketState()
	if state.Mid != nil {
		t.Fatal("expected nil mid with only one side populated")
	}

	askPrice := decimal.NewFromInt(102)
	book.Submit(&domain.Order{ID: 2, Side: domain.Sell, Type: domain.LimitOrder, Price: &askPrice, Qty: 1, RemainingQty: 1})
	state = e.GetMarketState()
	if state.Mid == nil {
		t.Fatal("expected mid once both sides are populated")
	}
	if got := state.Mid.String(); got != "101" {
		t.Fatalf("expected mid 101, got %s", got)
	}
}

func testAgent(id string) *agent.RandomAgent {
	return agent.NewRandomAgent(id, 1.0, 1)
}
