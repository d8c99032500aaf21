package metrics

import (
	"testing"

	"github.com/fairbook/lobsim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExcludesBackground(t *testing.T) {
	c := NewCollector()
	c.RecordOrder("background", &domain.Order{ID: 1, Type: domain.LimitOrder}, 100, 0)
	result := c.Compute()
	_, ok := result["background"]
	assert.False(t, ok, "expected background orders excluded from Compute")
}

func TestFillRateAndQtyAccumulate(t *testing.T) {
	c := NewCollector()
	c.RecordOrder("mm-0", &domain.Order{ID: 1, Side: domain.Buy, Type: domain.LimitOrder}, 100, 0)
	c.RecordOrder("mm-0", &domain.Order{ID: 2, Side: domain.Sell, Type: domain.LimitOrder}, 100, 0)

	trade := domain.Trade{Price: decimal.NewFromInt(101), Qty: 4}
	c.RecordFill("mm-0", 1, domain.Buy, trade, 1.0)

	m := c.Compute()["mm-0"]
	require.NotNil(t, m)
	assert.Equal(t, 1, m.TotalFills)
	assert.Equal(t, int64(4), m.TotalQtyFilled)
	assert.Equal(t, 0.5, m.FillRate, "expected fill rate 0.5 (1 of 2 orders filled)")
}

func TestSlippageSignIsWorseForBuyerAboveMid(t *testing.T) {
	c := NewCollector()
	c.RecordOrder("noise-0", &domain.Order{ID: 1, Side: domain.Buy, Type: domain.MarketOrder}, 100, 0)
	trade := domain.Trade{Price: decimal.NewFromInt(102), Qty: 1}
	c.RecordFill("noise-0", 1, domain.Buy, trade, 0.01)

	m := c.Compute()["noise-0"]
	require.NotNil(t, m)
	assert.Greater(t, m.AvgSlippage, 0.0, "expected positive (worse) slippage for a buy filled above mid")
}

func TestCanceledBeforeFillCountsUnfilledTargets(t *testing.T) {
	c := NewCollector()
	c.RecordOrder("mm-0", &domain.Order{ID: 1, Side: domain.Buy, Type: domain.LimitOrder}, 100, 0)
	c.RecordCancel("mm-0", 1)

	m := c.Compute()["mm-0"]
	require.NotNil(t, m)
	assert.Equal(t, 1, m.CanceledBeforeFill)
}

func TestPrometheusObserveSpreadAndDepth(t *testing.T) {
	p := NewPrometheus()
	p.ObserveSpread(99.5, 100.5)
	p.ObserveDepth(10, 7)
	assert.NotNil(t, p.Handler())
}
