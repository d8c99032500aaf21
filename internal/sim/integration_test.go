package sim

import (
	"testing"

	"github.com/fairbook/lobsim/internal/config"
	"github.com/fairbook/lobsim/internal/eventlog"
	"github.com/fairbook/lobsim/internal/metrics"
)

func smallConfig() *config.Config {
	cfg := config.DefaultCalm()
	cfg.DurationSeconds = 20
	cfg.Population = config.PopulationConfig{
		RandomAgents:   2,
		MarketMakers:   1,
		NoiseTraders:   2,
		MomentumAgents: 1,
	}
	return cfg
}

func TestRunProducesEventLogAndMetrics(t *testing.T) {
	cfg := smallConfig()
	r, err := NewRunner(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	result, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.EventCount == 0 {
		t.Fatal("expected at least one event processed")
	}
	if result.LogHash == "" {
		t.Fatal("expected a non-empty log hash")
	}
	if len(result.Metrics) == 0 {
		t.Fatal("expected per-agent metrics for at least one agent")
	}
}

func TestRunWithPrometheusDoesNotFail(t *testing.T) {
	cfg := smallConfig()
	r, err := NewRunner(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	prom := metrics.NewPrometheus()
	r.Prometheus(prom)

	if _, err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if prom.Handler() == nil {
		t.Fatal("expected a non-nil metrics handler after wiring Prometheus")
	}
}

func TestAddLoggerFansOutToBroadcaster(t *testing.T) {
	cfg := smallConfig()
	r, err := NewRunner(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ws := eventlog.NewWSBroadcaster()
	r.AddLogger(ws)

	result, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.EventCount == 0 {
		t.Fatal("expected at least one event processed with a fanned-out logger")
	}
}

func TestRunRespectsMarketClose(t *testing.T) {
	cfg := smallConfig()
	r, err := NewRunner(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.eng.Running() {
		t.Fatal("expected engine to have stopped at market close")
	}
}
