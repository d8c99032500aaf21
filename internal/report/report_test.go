package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fairbook/lobsim/internal/metrics"
	"github.com/fairbook/lobsim/internal/sim"
)

func TestGenerateWritesArtifacts(t *testing.T) {
	withMM := &sim.RunResult{
		MeanSpread: 0.5,
		Metrics: map[string]*metrics.AgentMetrics{
			"mm-0":    {AgentID: "mm-0", FillRate: 0.8, SlippageBps: 1.0},
			"noise-0": {AgentID: "noise-0", FillRate: 0.6, SlippageBps: 2.0},
		},
	}
	withoutMM := &sim.RunResult{
		MeanSpread: 1.2,
		Metrics: map[string]*metrics.AgentMetrics{
			"noise-0": {AgentID: "noise-0", FillRate: 0.5, SlippageBps: 3.0},
		},
	}

	outDir := t.TempDir()
	r := New("calm", withMM, withoutMM, outDir)
	if err := r.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, name := range []string{"report.md", "metrics.json", "plots.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRenderMarkdownReportsNarrowing(t *testing.T) {
	withMM := &sim.RunResult{MeanSpread: 0.3, Metrics: map[string]*metrics.AgentMetrics{}}
	withoutMM := &sim.RunResult{MeanSpread: 0.9, Metrics: map[string]*metrics.AgentMetrics{}}

	r := New("calm", withMM, withoutMM, t.TempDir())
	md := r.renderMarkdown()
	if !strings.Contains(md, "Narrowed with a market maker present: true") {
		t.Fatalf("expected markdown to report narrowing, got:\n%s", md)
	}
}

func TestAggregateByKindSkipsOtherPrefixes(t *testing.T) {
	m := map[string]*metrics.AgentMetrics{
		"mm-0":     {FillRate: 1.0},
		"mm-1":     {FillRate: 0.5},
		"noise-0":  {FillRate: 0.2},
		"momentum": {FillRate: 0.9},
	}
	agg := aggregateByKind(m, "mm")
	if agg == nil || agg.n != 2 {
		t.Fatalf("expected 2 mm agents aggregated, got %+v", agg)
	}
	if agg.fillRate != 0.75 {
		t.Fatalf("expected mean fill rate 0.75, got %v", agg.fillRate)
	}
}

func TestAggregateByKindNoMatchReturnsNil(t *testing.T) {
	m := map[string]*metrics.AgentMetrics{"noise-0": {FillRate: 0.2}}
	if agg := aggregateByKind(m, "mm"); agg != nil {
		t.Fatalf("expected nil aggregate for unmatched kind, got %+v", agg)
	}
}

func TestAsciiHistogramHandlesConstantValues(t *testing.T) {
	out := asciiHistogram([]float64{2.0, 2.0, 2.0}, 10)
	if !strings.Contains(out, "all values = 2.0000") {
		t.Fatalf("expected constant-value message, got: %s", out)
	}
}

func TestAsciiHistogramHandlesEmpty(t *testing.T) {
	out := asciiHistogram(nil, 10)
	if !strings.Contains(out, "no data") {
		t.Fatalf("expected no-data message, got: %s", out)
	}
}

func TestPercentileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if p := percentile(sorted, 0.5); p != 3 {
		t.Fatalf("expected median 3, got %v", p)
	}
	if p := percentile(sorted, 0); p != 1 {
		t.Fatalf("expected min 1, got %v", p)
	}
	if p := percentile(sorted, 1); p != 5 {
		t.Fatalf("expected max 5, got %v", p)
	}
}
