// Package domain defines the core value types shared by the order
// book, engine, environment, and agents: sides, order kinds, orders,
// trades, and the event payload carried through the scheduler.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a real-valued price on the tick grid. A nil *Price denotes
// an unspecified (market) price.
type Price = decimal.Decimal

// Side is the direction of an order.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Side) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "BUY":
		*s = Buy
	case "SELL":
		*s = Sell
	default:
		return fmt.Errorf("unknown side: %s", data)
	}
	return nil
}

// OrderType distinguishes limit, market, and cancel instructions.
type OrderType int8

const (
	LimitOrder OrderType = iota
	MarketOrder
	CancelOrder
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "LIMIT"
	case MarketOrder:
		return "MARKET"
	case CancelOrder:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// Order is a limit, market, or cancel instruction. Price is nil for a
// market order and for cancels. OwningAgentID is the canonical
// attribution field (spec §9); ExternalID renders the "<agent>-<time>"
// string form of an order's identity.
type Order struct {
	ID            uint64
	OwningAgentID string
	Side          Side
	Type          OrderType
	Price         *Price
	Qty           int64
	RemainingQty  int64
	Timestamp     float64 // simulation arrival time, set by the submission event
	Seq           int64   // insertion sequence, assigned by the book on rest
	CancelTarget  uint64  // for CancelOrder: the order id to remove
	QueuePos      int     // 1-based FIFO position at the moment of resting
}

// ExternalID renders the "<agent_id>-<time>" convention (spec §6).
// Nothing in this module parses it back: attribution and the event log
// use OwningAgentID and the numeric ids, and agent ids such as "mm-0"
// themselves contain '-'.
func (o *Order) ExternalID() string {
	return fmt.Sprintf("%s-%v", o.OwningAgentID, o.Timestamp)
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.RemainingQty <= 0
}

// Trade is a single match between a resting (maker) order and an
// incoming (taker) order, frozen at emission: price, qty, and the two
// order ids never change after creation.
type Trade struct {
	Price        Price
	Qty          int64
	BuyOrderID   uint64
	SellOrderID  uint64
	BuyAgentID   string
	SellAgentID  string
	Timestamp    float64
	MakerOrderID uint64 // the resting order that set the price
	TakerOrderID uint64
	QueuePos     int // resting order's FIFO position at fill time
}

// EventType tags the payload union carried by Event.
type EventType int8

const (
	EventAgentArrival EventType = iota
	EventOrderSubmission
	EventSnapshot
	EventFairValueUpdate
	EventMarketClose
)

func (e EventType) String() string {
	switch e {
	case EventAgentArrival:
		return "AGENT_ARRIVAL"
	case EventOrderSubmission:
		return "ORDER_SUBMISSION"
	case EventSnapshot:
		return "SNAPSHOT"
	case EventFairValueUpdate:
		return "FAIR_VALUE_UPDATE"
	case EventMarketClose:
		return "MARKET_CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Event is the unit dispatched by the scheduler. Exactly one of the
// typed payload fields is populated, selected by Type — a tagged sum
// type rather than an interface hierarchy, per the "no dynamic
// attribute lookup" design note.
type Event struct {
	Time    float64
	Seq     int64
	Type    EventType
	AgentID string // set for EventAgentArrival
	Order   *Order // set for EventOrderSubmission
	Depth   int    // set for EventSnapshot
}
