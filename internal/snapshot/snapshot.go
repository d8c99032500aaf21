// Package snapshot implements the immutable aggregated depth view over
// an order book: per-price-level quantity, best bid/ask, and a
// human-readable rendering.
package snapshot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairbook/lobsim/internal/domain"
)

// Level is a single aggregated price level.
type Level struct {
	Price domain.Price
	Qty   int64
}

// Book is a point-in-time, immutable view of resting liquidity. Bids
// are ordered descending by price, asks ascending; it does not alias
// the live book it was built from.
type Book struct {
	Bids []Level
	Asks []Level
}

// New builds a snapshot from already price-ordered level slices (bids
// descending, asks ascending — the orderbook package hands these over
// pre-sorted since it maintains that order internally).
func New(bids, asks []Level) *Book {
	b := &Book{
		Bids: make([]Level, len(bids)),
		Asks: make([]Level, len(asks)),
	}
	copy(b.Bids, bids)
	copy(b.Asks, asks)
	return b
}

// BestBid returns the highest resting bid price, if any.
func (b *Book) BestBid() (domain.Price, bool) {
	if len(b.Bids) == 0 {
		return decimal.Zero, false
	}
	return b.Bids[0].Price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *Book) BestAsk() (domain.Price, bool) {
	if len(b.Asks) == 0 {
		return decimal.Zero, false
	}
	return b.Asks[0].Price, true
}

// Mid returns the arithmetic mean of best bid and best ask, if both
// sides are non-empty.
func (b *Book) Mid() (domain.Price, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return decimal.Zero, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return decimal.Zero, false
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)), true
}

// Spread returns best ask minus best bid, if both sides are non-empty.
func (b *Book) Spread() (domain.Price, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return decimal.Zero, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return decimal.Zero, false
	}
	return ask.Sub(bid), true
}

// Pretty renders the book as "BIDS:" then up to depth lines
// "  <price:>6> → <qty>", then "ASKS:" similarly (spec §6 egress
// contract — exact format is load-bearing for downstream consumers).
func (b *Book) Pretty(depth int) string {
	var sb strings.Builder
	sb.WriteString("BIDS:\n")
	for i, lvl := range b.Bids {
		if i >= depth {
			break
		}
		fmt.Fprintf(&sb, "  %6s → %d\n", lvl.Price.String(), lvl.Qty)
	}
	sb.WriteString("ASKS:\n")
	for i, lvl := range b.Asks {
		if i >= depth {
			break
		}
		fmt.Fprintf(&sb, "  %6s → %d\n", lvl.Price.String(), lvl.Qty)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// TopN returns up to n levels per side, for L2 logging.
func (b *Book) TopN(n int) (bids, asks []Level) {
	bc := n
	if bc > len(b.Bids) {
		bc = len(b.Bids)
	}
	bids = append(bids, b.Bids[:bc]...)

	ac := n
	if ac > len(b.Asks) {
		ac = len(b.Asks)
	}
	asks = append(asks, b.Asks[:ac]...)
	return bids, asks
}
