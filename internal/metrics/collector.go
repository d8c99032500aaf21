// Package metrics collects per-agent execution-quality metrics from
// order submissions, fills, and cancels: fill rate, slippage against
// the mid at decision time, and time-to-fill. internal/report aggregates
// them per agent kind when comparing runs with and without a market
// maker.
package metrics

import (
	"sort"

	"github.com/fairbook/lobsim/internal/domain"
)

// AgentMetrics holds the computed metrics for a single agent.
type AgentMetrics struct {
	AgentID string `json:"agent_id"`

	OrdersSent   int `json:"orders_sent"`
	LimitOrders  int `json:"limit_orders"`
	MarketOrders int `json:"market_orders"`
	CancelsSent  int `json:"cancels_sent"`

	TotalFills     int     `json:"total_fills"`
	TotalQtyFilled int64   `json:"total_qty_filled"`
	FillRate       float64 `json:"fill_rate"`

	CanceledBeforeFill int `json:"canceled_before_fill"`

	AvgExecPrice float64 `json:"avg_exec_price"`
	AvgSlippage  float64 `json:"avg_slippage"`
	SlippageBps  float64 `json:"slippage_bps"`

	AvgTimeToFillSec float64   `json:"avg_time_to_fill_sec"`
	TimeToFillDist   []float64 `json:"time_to_fill_dist"`
}

type orderInfo struct {
	placedAt      float64
	side          domain.Side
	orderType     domain.OrderType
	midAtDecision float64
}

type fillInfo struct {
	execPrice     float64
	qty           int64
	placedAt      float64
	fillAt        float64
	midAtDecision float64
	side          domain.Side
}

type accum struct {
	ordersSent, limitOrders, marketOrders, cancelsSent int
	orderTimes    map[uint64]orderInfo
	filled        map[uint64]bool
	cancelTargets []uint64
	fills         []fillInfo
}

// Collector accumulates per-agent execution metrics across a run.
type Collector struct {
	agents map[string]*accum
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{agents: make(map[string]*accum)}
}

func (c *Collector) get(agentID string) *accum {
	a, ok := c.agents[agentID]
	if !ok {
		a = &accum{
			orderTimes: make(map[uint64]orderInfo),
			filled:     make(map[uint64]bool),
		}
		c.agents[agentID] = a
	}
	return a
}

// RecordOrder logs a submitted order, remembering the mid price at
// decision time for later slippage computation. Background flow
// (agentID "background") is tracked but excluded from Compute.
func (c *Collector) RecordOrder(agentID string, order *domain.Order, midAtDecision float64, placedAt float64) {
	a := c.get(agentID)
	a.ordersSent++
	switch order.Type {
	case domain.LimitOrder:
		a.limitOrders++
	case domain.MarketOrder:
		a.marketOrders++
	}
	a.orderTimes[order.ID] = orderInfo{
		placedAt:      placedAt,
		side:          order.Side,
		orderType:     order.Type,
		midAtDecision: midAtDecision,
	}
}

// RecordCancel logs a cancel request against a previously placed order.
func (c *Collector) RecordCancel(agentID string, targetOrderID uint64) {
	a := c.get(agentID)
	a.cancelsSent++
	a.cancelTargets = append(a.cancelTargets, targetOrderID)
}

// RecordFill logs a fill on one side of a trade.
func (c *Collector) RecordFill(agentID string, orderID uint64, side domain.Side, trade domain.Trade, fillAt float64) {
	a := c.get(agentID)
	a.filled[orderID] = true

	info := a.orderTimes[orderID]
	execPrice, _ := trade.Price.Float64()

	a.fills = append(a.fills, fillInfo{
		execPrice:     execPrice,
		qty:           trade.Qty,
		placedAt:      info.placedAt,
		fillAt:        fillAt,
		midAtDecision: info.midAtDecision,
		side:          side,
	})
}

// Compute finalizes AgentMetrics for every tracked agent except
// "background".
func (c *Collector) Compute() map[string]*AgentMetrics {
	result := make(map[string]*AgentMetrics)

	for agentID, a := range c.agents {
		if agentID == "background" {
			continue
		}

		m := &AgentMetrics{
			AgentID:      agentID,
			OrdersSent:   a.ordersSent,
			LimitOrders:  a.limitOrders,
			MarketOrders: a.marketOrders,
			CancelsSent:  a.cancelsSent,
			TotalFills:   len(a.fills),
		}

		if total := len(a.orderTimes); total > 0 {
			filled := 0
			for oid := range a.orderTimes {
				if a.filled[oid] {
					filled++
				}
			}
			m.FillRate = float64(filled) / float64(total)
		}

		var totalNotional, totalSlippage, totalTimeToFill float64
		var totalQty int64

		for _, f := range a.fills {
			totalQty += f.qty
			totalNotional += f.execPrice * float64(f.qty)

			if f.midAtDecision > 0 {
				var slip float64
				if f.side == domain.Buy {
					slip = f.execPrice - f.midAtDecision
				} else {
					slip = f.midAtDecision - f.execPrice
				}
				totalSlippage += slip * float64(f.qty)
			}

			if f.placedAt > 0 {
				ttf := f.fillAt - f.placedAt
				totalTimeToFill += ttf
				m.TimeToFillDist = append(m.TimeToFillDist, ttf)
			}
		}

		m.TotalQtyFilled = totalQty
		if totalQty > 0 {
			m.AvgExecPrice = totalNotional / float64(totalQty)
			m.AvgSlippage = totalSlippage / float64(totalQty)
			if m.AvgExecPrice > 0 {
				m.SlippageBps = (m.AvgSlippage / m.AvgExecPrice) * 10_000
			}
		}
		if len(a.fills) > 0 {
			m.AvgTimeToFillSec = totalTimeToFill / float64(len(a.fills))
		}

		for _, targetID := range a.cancelTargets {
			if !a.filled[targetID] {
				m.CanceledBeforeFill++
			}
		}

		sort.Float64s(m.TimeToFillDist)
		result[agentID] = m
	}

	return result
}
