package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus exposes live simulation-health gauges/counters for a
// running simulation: event throughput, book depth, and spread. It is
// a separate sink from Collector — Collector computes end-of-run
// per-agent reports, Prometheus tracks the engine's pulse while it
// runs, grounded on the pack's plain client_golang usage (no OTel
// wrapper — this module carries no otel dependency).
type Prometheus struct {
	registry *prometheus.Registry

	EventsProcessed prometheus.Counter
	TradesExecuted  prometheus.Counter
	BestBid         prometheus.Gauge
	BestAsk         prometheus.Gauge
	Spread          prometheus.Gauge
	BookDepth       *prometheus.GaugeVec
}

// NewPrometheus registers a fresh set of collectors on a private
// registry, so multiple simulation runs in the same process don't
// collide on global registration.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()

	p := &Prometheus{
		registry: reg,
		EventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim",
			Name:      "events_processed_total",
			Help:      "Total number of events dispatched by the engine.",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim",
			Name:      "trades_executed_total",
			Help:      "Total number of trades matched.",
		}),
		BestBid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lobsim",
			Name:      "best_bid",
			Help:      "Current best bid price.",
		}),
		BestAsk: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lobsim",
			Name:      "best_ask",
			Help:      "Current best ask price.",
		}),
		Spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lobsim",
			Name:      "spread",
			Help:      "Current best-ask minus best-bid.",
		}),
		BookDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lobsim",
			Name:      "book_depth",
			Help:      "Resting quantity per side of the book.",
		}, []string{"side"}),
	}

	reg.MustRegister(p.EventsProcessed, p.TradesExecuted, p.BestBid, p.BestAsk, p.Spread, p.BookDepth)
	return p
}

// Handler returns the HTTP handler that serves this Prometheus
// instance's registry at /metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// ObserveSpread updates the BestBid/BestAsk/Spread gauges together.
func (p *Prometheus) ObserveSpread(bid, ask float64) {
	p.BestBid.Set(bid)
	p.BestAsk.Set(ask)
	p.Spread.Set(ask - bid)
}

// ObserveDepth updates the per-side resting quantity gauges.
func (p *Prometheus) ObserveDepth(bidQty, askQty int64) {
	p.BookDepth.WithLabelValues("bid").Set(float64(bidQty))
	p.BookDepth.WithLabelValues("ask").Set(float64(askQty))
}
