// Package sim wires the order book, event scheduler, environment, fair
// value process, agent population, event log, and metrics collector
// into one complete simulation run.
package sim

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fairbook/lobsim/internal/agent"
	"github.com/fairbook/lobsim/internal/config"
	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/engine"
	"github.com/fairbook/lobsim/internal/environment"
	"github.com/fairbook/lobsim/internal/eventlog"
	"github.com/fairbook/lobsim/internal/fairvalue"
	"github.com/fairbook/lobsim/internal/latency"
	"github.com/fairbook/lobsim/internal/metrics"
	"github.com/fairbook/lobsim/internal/orderbook"
	"github.com/fairbook/lobsim/internal/scenario"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunResult holds the output of a single simulation run.
type RunResult struct {
	RunID      string                           `json:"run_id"`
	ScenarioID string                           `json:"scenario"`
	EventCount uint64                           `json:"event_count"`
	TradeCount int                              `json:"trade_count"`
	Duration   time.Duration                    `json:"wall_duration"`
	LogPath    string                           `json:"log_path"`
	LogHash    string                           `json:"log_hash"`
	OutputDir  string                           `json:"output_dir"`
	MeanSpread float64                          `json:"mean_spread"`
	Metrics    map[string]*metrics.AgentMetrics `json:"metrics"`
}

// Runner executes one configured simulation to completion.
type Runner struct {
	cfg  *config.Config
	book *orderbook.Book
	eng  *engine.Engine
	env  *environment.Environment
	fv   *fairvalue.Process

	agents   []agent.Agent
	byID     map[string]agent.Agent
	logger   eventlog.Logger
	metricsC *metrics.Collector
	prom     *metrics.Prometheus

	trades    []domain.Trade
	spreadSum float64
	spreadObs int
	outputDir string
}

// NewRunner builds a Runner writing its event log under baseOutputDir.
func NewRunner(cfg *config.Config, baseOutputDir string) (*Runner, error) {
	runID := fmt.Sprintf("%s_seed%d", cfg.Name, cfg.Seed)
	outputDir := filepath.Join(baseOutputDir, runID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	logPath := filepath.Join(outputDir, "events.jsonl")
	writer, err := eventlog.NewWriter(logPath)
	if err != nil {
		return nil, fmt.Errorf("create event log: %w", err)
	}

	book := orderbook.New()
	lat := latency.NewModel(cfg.MeanLatency, cfg.Seed+1)
	env := environment.New(book, lat, environment.Config{
		TickSize: decimal.NewFromFloat(cfg.TickSize),
		LotSize:  cfg.LotSize,
	})
	fv := fairvalue.New(cfg.InitialFairValue, cfg.FairValueSigma, cfg.Seed+2)

	agents := scenario.BuildPopulation(cfg, fv)
	byID := make(map[string]agent.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID()] = a
	}

	r := &Runner{
		cfg:       cfg,
		book:      book,
		env:       env,
		fv:        fv,
		agents:    agents,
		byID:      byID,
		logger:    writer,
		metricsC:  metrics.NewCollector(),
		outputDir: outputDir,
	}
	r.eng = engine.New(r.dispatch)
	return r, nil
}

// AddLogger fans an additional Logger sink alongside the primary
// event-log writer, e.g. a live WSBroadcaster for spectation.
func (r *Runner) AddLogger(l eventlog.Logger) {
	r.logger = eventlog.NewMultiLogger(r.logger, l)
}

// Prometheus wires p's gauges to be updated from every snapshot taken
// during Run, for live scraping while the simulation is in progress.
func (r *Runner) Prometheus(p *metrics.Prometheus) {
	r.prom = p
}

// Run seeds the book, schedules every agent's first arrival plus the
// recurring fair-value and snapshot events, runs the engine to
// completion, and writes the run's artifacts to disk.
func (r *Runner) Run() (*RunResult, error) {
	start := time.Now()

	// Seed orders take ids from the top half of the id space so they never
	// collide with the agent-order ids the environment counts up from 1.
	nextID := uint64(1) << 63
	levels, depth := scenario.ForName(scenario.Preset(r.cfg.Name))
	for _, order := range scenario.InitialBook(r.cfg, levels, depth, func() uint64 { nextID++; return nextID }) {
		r.book.Submit(order)
	}

	for _, a := range r.agents {
		r.eng.Schedule(&domain.Event{
			Time:    a.NextEventTime(0),
			Type:    domain.EventAgentArrival,
			AgentID: a.ID(),
		})
	}

	if r.cfg.DurationSeconds > fvInterval {
		r.eng.Schedule(&domain.Event{Time: fvInterval, Type: domain.EventFairValueUpdate})
	}
	if r.cfg.DurationSeconds > r.cfg.SnapshotInterval {
		r.eng.Schedule(&domain.Event{Time: r.cfg.SnapshotInterval, Type: domain.EventSnapshot})
	}
	r.eng.Schedule(&domain.Event{Time: r.cfg.DurationSeconds, Type: domain.EventMarketClose})

	r.eng.Run()

	if err := r.logger.Close(); err != nil {
		return nil, fmt.Errorf("close event log: %w", err)
	}

	logPath := filepath.Join(r.outputDir, "events.jsonl")
	hash, err := hashFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("hash log: %w", err)
	}

	cfgData, _ := json.MarshalIndent(r.cfg, "", "  ")
	_ = os.WriteFile(filepath.Join(r.outputDir, "config.json"), cfgData, 0o644)

	tradesData, _ := json.MarshalIndent(r.trades, "", "  ")
	_ = os.WriteFile(filepath.Join(r.outputDir, "trades.json"), tradesData, 0o644)

	return &RunResult{
		RunID:      uuid.NewString(),
		ScenarioID: r.cfg.Name,
		EventCount: r.eng.EventsProcessed,
		TradeCount: len(r.trades),
		Duration:   time.Since(start),
		LogPath:    logPath,
		LogHash:    hash,
		OutputDir:  r.outputDir,
		MeanSpread: r.MeanSpread(),
		Metrics:    r.metricsC.Compute(),
	}, nil
}

// fvInterval is the spacing, in simulation seconds, between successive
// EventFairValueUpdate ticks.
const fvInterval = 1.0

// dispatch is the engine's central event handler.
func (r *Runner) dispatch(event *domain.Event) []*domain.Event {
	if r.prom != nil {
		r.prom.EventsProcessed.Inc()
	}
	switch event.Type {
	case domain.EventAgentArrival:
		return r.handleArrival(event)
	case domain.EventOrderSubmission:
		return r.handleSubmission(event)
	case domain.EventFairValueUpdate:
		r.fv.Step()
		if !r.eng.Running() {
			return nil
		}
		return []*domain.Event{{Time: event.Time + fvInterval, Type: domain.EventFairValueUpdate}}
	case domain.EventSnapshot:
		r.handleSnapshot(event)
		if !r.eng.Running() {
			return nil
		}
		return []*domain.Event{{Time: event.Time + r.cfg.SnapshotInterval, Type: domain.EventSnapshot}}
	default:
		return nil
	}
}

func (r *Runner) handleArrival(event *domain.Event) []*domain.Event {
	a, ok := r.byID[event.AgentID]
	if !ok {
		return nil
	}

	state := r.env.GetMarketState()
	actions := a.GetAction(state)

	var midAtDecision float64
	if state.Mid != nil {
		midAtDecision, _ = state.Mid.Float64()
	}

	var newEvents []*domain.Event
	for _, act := range actions {
		if act.Kind == agent.ActionCancel {
			r.metricsC.RecordCancel(a.ID(), act.CancelOrderID)
		}
		evt := r.env.ApplyAction(event.Time, a, act)
		if evt == nil {
			continue
		}
		r.metricsC.RecordOrder(a.ID(), evt.Order, midAtDecision, event.Time)
		newEvents = append(newEvents, evt)
	}

	newEvents = append(newEvents, &domain.Event{
		Time:    a.NextEventTime(event.Time),
		Type:    domain.EventAgentArrival,
		AgentID: a.ID(),
	})
	return newEvents
}

func (r *Runner) handleSubmission(event *domain.Event) []*domain.Event {
	order := event.Order
	if order == nil {
		return nil
	}
	order.Timestamp = event.Time

	trades := r.book.Submit(order)
	r.book.AssertInvariants()

	if order.Type == domain.LimitOrder && order.RemainingQty > 0 {
		order.QueuePos = r.book.QueuePosition(order.ID)
	}

	for i := range trades {
		trade := trades[i]
		r.trades = append(r.trades, trade)
		r.logger.RecordTrade(trade)
		if r.prom != nil {
			r.prom.TradesExecuted.Inc()
		}

		if buyer, ok := r.byID[trade.BuyAgentID]; ok {
			buyer.OnTrade(trade, domain.Buy)
			buyer.DecrementActive(trade.BuyOrderID, trade.Qty)
			r.metricsC.RecordFill(trade.BuyAgentID, trade.BuyOrderID, domain.Buy, trade, event.Time)
		}
		if seller, ok := r.byID[trade.SellAgentID]; ok {
			seller.OnTrade(trade, domain.Sell)
			seller.DecrementActive(trade.SellOrderID, trade.Qty)
			r.metricsC.RecordFill(trade.SellAgentID, trade.SellOrderID, domain.Sell, trade, event.Time)
		}
	}

	snap := r.book.CurrentSnapshot()
	bestBid, okBid := snap.BestBid()
	bestAsk, okAsk := snap.BestAsk()
	if okBid || okAsk {
		var bidP, askP *domain.Price
		if okBid {
			bidP = &bestBid
		}
		if okAsk {
			askP = &bestAsk
		}
		r.logger.RecordL1(event.Time, bidP, askP)
	}

	return nil
}

func (r *Runner) handleSnapshot(event *domain.Event) {
	snap := r.book.CurrentSnapshot()
	bids, asks := snap.TopN(10)
	r.logger.RecordL2(event.Time, bids, asks)

	if spread, ok := snap.Spread(); ok {
		s, _ := spread.Float64()
		r.spreadSum += s
		r.spreadObs++
	}

	for _, a := range r.agents {
		r.logger.RecordInventory(event.Time, a.ID(), a.Inventory())
	}

	if r.prom != nil {
		if bestBid, ok := snap.BestBid(); ok {
			if bestAsk, ok2 := snap.BestAsk(); ok2 {
				bidF, _ := bestBid.Float64()
				askF, _ := bestAsk.Float64()
				r.prom.ObserveSpread(bidF, askF)
			}
		}
		var bidQty, askQty int64
		for _, l := range bids {
			bidQty += l.Qty
		}
		for _, l := range asks {
			askQty += l.Qty
		}
		r.prom.ObserveDepth(bidQty, askQty)
	}
}

// MeanSpread returns the average best-ask-minus-best-bid spread
// observed across every recorded snapshot, 0 if none were taken.
func (r *Runner) MeanSpread() float64 {
	if r.spreadObs == 0 {
		return 0
	}
	return r.spreadSum / float64(r.spreadObs)
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h), nil
}
