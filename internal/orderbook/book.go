// Package orderbook implements a single-instrument limit order book
// with price-time priority matching: submit, cancel, aggregated
// snapshots, and deterministic trade emission (spec §4.1).
package orderbook

import (
	"container/list"
	"errors"
	"fmt"

	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/snapshot"
)

// ErrUnknownOrder is returned by BookAfter for an id that was never
// processed — a programmer error per spec §7, distinct from the
// silent no-op of cancelling an absent id.
var ErrUnknownOrder = errors.New("orderbook: unknown order id")

// PriceLevel holds all resting orders at one price, in FIFO order.
type PriceLevel struct {
	Price  domain.Price
	Orders *list.List // of *domain.Order
}

func (pl *PriceLevel) totalQty() int64 {
	var total int64
	for e := pl.Orders.Front(); e != nil; e = e.Next() {
		total += e.Value.(*domain.Order).RemainingQty
	}
	return total
}

type orderLoc struct {
	side  domain.Side
	price domain.Price
	elem  *list.Element
}

// Book is a single-instrument limit order book.
type Book struct {
	bids *ladder // keyed by price; best = highest
	asks *ladder // keyed by price; best = lowest

	orderIndex map[uint64]*orderLoc
	snapshots  map[uint64]*snapshot.Book
	nextSeq    int64
}

// New creates an empty order book.
func New() *Book {
	return &Book{
		bids:       newLadder(),
		asks:       newLadder(),
		orderIndex: make(map[uint64]*orderLoc),
		snapshots:  make(map[uint64]*snapshot.Book),
	}
}

// Submit matches a limit or market order against the opposite side,
// then rests any residual limit quantity. The caller is responsible
// for having set order.Timestamp to the current engine time before
// calling (spec §9 open question: timestamp provenance is the
// submission event's concern, never the book's).
func (b *Book) Submit(order *domain.Order) []domain.Trade {
	order.RemainingQty = order.Qty

	trades := b.match(order)

	if order.Type == domain.LimitOrder && order.RemainingQty > 0 {
		b.insert(order)
	}
	// Market orders never rest; any residual is implicitly canceled.

	b.recordSnapshot(order.ID)
	return trades
}

// Cancel removes all resting orders with the given id from either
// side. A no-op, idempotently, if the id is absent or already filled.
func (b *Book) Cancel(orderID uint64) {
	loc, ok := b.orderIndex[orderID]
	if !ok {
		return
	}
	side := b.sideLadder(loc.side)
	if lvl, ok := side.get(loc.price); ok {
		lvl.Orders.Remove(loc.elem)
		if lvl.Orders.Len() == 0 {
			side.remove(loc.price)
		}
	}
	delete(b.orderIndex, orderID)
}

func (b *Book) sideLadder(side domain.Side) *ladder {
	if side == domain.Buy {
		return b.bids
	}
	return b.asks
}

// match walks the opposite side, filling the incoming order until it
// is exhausted, the book empties, or price no longer crosses.
func (b *Book) match(incoming *domain.Order) []domain.Trade {
	var trades []domain.Trade
	opposite := b.sideLadder(incoming.Side.Opposite())

	for incoming.RemainingQty > 0 {
		var top *PriceLevel
		var ok bool
		if incoming.Side == domain.Buy {
			top, ok = opposite.lowest()
		} else {
			top, ok = opposite.highest()
		}
		if !ok {
			break
		}

		if incoming.Type == domain.LimitOrder && incoming.Price != nil {
			if incoming.Side == domain.Buy && top.Price.GreaterThan(*incoming.Price) {
				break
			}
			if incoming.Side == domain.Sell && top.Price.LessThan(*incoming.Price) {
				break
			}
		}

		elem := top.Orders.Front()
		pos := 1
		for elem != nil && incoming.RemainingQty > 0 {
			resting := elem.Value.(*domain.Order)
			tradeQty := min64(incoming.RemainingQty, resting.RemainingQty)

			incoming.RemainingQty -= tradeQty
			resting.RemainingQty -= tradeQty

			trade := domain.Trade{
				Price:        top.Price,
				Qty:          tradeQty,
				Timestamp:    incoming.Timestamp,
				MakerOrderID: resting.ID,
				TakerOrderID: incoming.ID,
				QueuePos:     pos,
			}
			if incoming.Side == domain.Buy {
				trade.BuyOrderID, trade.SellOrderID = incoming.ID, resting.ID
				trade.BuyAgentID, trade.SellAgentID = incoming.OwningAgentID, resting.OwningAgentID
			} else {
				trade.SellOrderID, trade.BuyOrderID = incoming.ID, resting.ID
				trade.SellAgentID, trade.BuyAgentID = incoming.OwningAgentID, resting.OwningAgentID
			}
			trades = append(trades, trade)

			next := elem.Next()
			if resting.RemainingQty <= 0 {
				top.Orders.Remove(elem)
				delete(b.orderIndex, resting.ID)
			}
			elem = next
			pos++
		}

		if top.Orders.Len() == 0 {
			opposite.remove(top.Price)
		}
	}

	return trades
}

// insert places a resting limit order into its side's ladder.
func (b *Book) insert(order *domain.Order) {
	side := b.sideLadder(order.Side)
	lvl, ok := side.get(*order.Price)
	if !ok {
		lvl = &PriceLevel{Price: *order.Price, Orders: list.New()}
		side.put(*order.Price, lvl)
	}
	elem := lvl.Orders.PushBack(order)

	b.nextSeq++
	order.Seq = b.nextSeq
	order.QueuePos = lvl.Orders.Len()

	b.orderIndex[order.ID] = &orderLoc{side: order.Side, price: *order.Price, elem: elem}
}

// QueuePosition returns the 1-based FIFO position of a resting order,
// or 0 if it is not currently resting.
func (b *Book) QueuePosition(orderID uint64) int {
	loc, ok := b.orderIndex[orderID]
	if !ok {
		return 0
	}
	side := b.sideLadder(loc.side)
	lvl, ok := side.get(loc.price)
	if !ok {
		return 0
	}
	i := 1
	for e := lvl.Orders.Front(); e != nil; e = e.Next() {
		if e == loc.elem {
			return i
		}
		i++
	}
	return 0
}

// CurrentSnapshot returns an aggregated, immutable view of present
// book state.
func (b *Book) CurrentSnapshot() *snapshot.Book {
	return snapshot.New(b.bidLevels(), b.askLevels())
}

func (b *Book) bidLevels() []snapshot.Level {
	asc := b.bids.ascending()
	levels := make([]snapshot.Level, len(asc))
	for i, lvl := range asc {
		levels[len(asc)-1-i] = snapshot.Level{Price: lvl.Price, Qty: lvl.totalQty()}
	}
	return levels
}

func (b *Book) askLevels() []snapshot.Level {
	asc := b.asks.ascending()
	levels := make([]snapshot.Level, len(asc))
	for i, lvl := range asc {
		levels[i] = snapshot.Level{Price: lvl.Price, Qty: lvl.totalQty()}
	}
	return levels
}

func (b *Book) recordSnapshot(orderID uint64) {
	b.snapshots[orderID] = b.CurrentSnapshot()
}

// BookAfter returns the snapshot recorded immediately after orderID
// was processed by Submit.
func (b *Book) BookAfter(orderID uint64) (*snapshot.Book, error) {
	snap, ok := b.snapshots[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOrder, orderID)
	}
	return snap, nil
}

// AssertInvariants panics if any book invariant (spec §8) is
// violated. Intended for test and debug builds, not hot paths.
func (b *Book) AssertInvariants() {
	bidLvls := b.bids.ascending()
	for i := 1; i < len(bidLvls); i++ {
		if !bidLvls[i].Price.GreaterThan(bidLvls[i-1].Price) {
			panic("orderbook: bid ladder not strictly ascending internally")
		}
	}
	askLvls := b.asks.ascending()
	for i := 1; i < len(askLvls); i++ {
		if !askLvls[i].Price.GreaterThan(askLvls[i-1].Price) {
			panic("orderbook: ask ladder not strictly ascending")
		}
	}

	bestBid, hasBid := b.bids.highest()
	bestAsk, hasAsk := b.asks.lowest()
	if hasBid && hasAsk && !bestBid.Price.LessThan(bestAsk.Price) {
		panic(fmt.Sprintf("orderbook: crossed book: bid %s >= ask %s", bestBid.Price, bestAsk.Price))
	}

	count := 0
	for _, lvl := range bidLvls {
		if lvl.Orders.Len() == 0 {
			panic("orderbook: empty bid level left in ladder")
		}
		count += lvl.Orders.Len()
	}
	for _, lvl := range askLvls {
		if lvl.Orders.Len() == 0 {
			panic("orderbook: empty ask level left in ladder")
		}
		count += lvl.Orders.Len()
	}
	if count != len(b.orderIndex) {
		panic(fmt.Sprintf("orderbook: orderIndex size %d != resting order count %d", len(b.orderIndex), count))
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
