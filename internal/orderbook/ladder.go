package orderbook

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/shopspring/decimal"
)

// tickKey maps a decimal price onto a sortable int64 so the price
// ladder can use a plain integer-keyed tree rather than requiring a
// decimal comparator. Eight fractional digits comfortably covers the
// tick sizes this simulator deals with.
func tickKey(p decimal.Decimal) int64 {
	return p.Shift(8).Round(0).IntPart()
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ladder is an ordered map from price (via tickKey) to the PriceLevel
// resting at that price, giving O(log L) best-level access and O(1)
// lookup/removal once a level is found — the §9 design note's
// "price-level ladders ... with side-specific ordered containers"
// rewrite of the reference heap-of-triples.
type ladder struct {
	tree *rbt.Tree[int64, *PriceLevel]
}

func newLadder() *ladder {
	return &ladder{tree: rbt.NewWith[int64, *PriceLevel](cmpInt64)}
}

func (l *ladder) get(price decimal.Decimal) (*PriceLevel, bool) {
	return l.tree.Get(tickKey(price))
}

func (l *ladder) put(price decimal.Decimal, lvl *PriceLevel) {
	l.tree.Put(tickKey(price), lvl)
}

func (l *ladder) remove(price decimal.Decimal) {
	l.tree.Remove(tickKey(price))
}

func (l *ladder) size() int {
	return l.tree.Size()
}

// lowest returns the level with the lowest key (lowest price).
func (l *ladder) lowest() (*PriceLevel, bool) {
	node := l.tree.Left()
	if node == nil {
		return nil, false
	}
	return node.Value, true
}

// highest returns the level with the highest key (highest price).
func (l *ladder) highest() (*PriceLevel, bool) {
	node := l.tree.Right()
	if node == nil {
		return nil, false
	}
	return node.Value, true
}

// ascending returns all resting levels ordered from lowest to highest
// price — used to build ask-side snapshots and to walk the book.
func (l *ladder) ascending() []*PriceLevel {
	return l.tree.Values()
}
