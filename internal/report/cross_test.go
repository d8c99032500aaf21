package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fairbook/lobsim/internal/metrics"
	"github.com/fairbook/lobsim/internal/sim"
)

func makeScenarioResult(preset string, meanSpread float64, fillRate float64) ScenarioResult {
	return ScenarioResult{
		Preset: preset,
		Result: &sim.RunResult{
			MeanSpread: meanSpread,
			TradeCount: 10,
			EventCount: 100,
			Metrics: map[string]*metrics.AgentMetrics{
				"mm-0": {FillRate: fillRate, SlippageBps: 1.5},
			},
		},
	}
}

func TestCrossReportGenerateWritesArtifacts(t *testing.T) {
	results := []ScenarioResult{
		makeScenarioResult("calm", 0.3, 0.8),
		makeScenarioResult("thin", 0.9, 0.5),
		makeScenarioResult("spike", 1.4, 0.4),
	}

	outDir := t.TempDir()
	cr := NewCrossReport(results, outDir)
	if err := cr.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, name := range []string{"cross-scenario-report.md", "cross-scenario-metrics.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestGenerateCrossAnalysisIdentifiesWidestAndNarrowest(t *testing.T) {
	results := []ScenarioResult{
		makeScenarioResult("calm", 0.3, 0.8),
		makeScenarioResult("spike", 1.4, 0.4),
	}
	cr := NewCrossReport(results, t.TempDir())
	analysis := cr.generateCrossAnalysis()

	if !strings.Contains(analysis, "spike") || !strings.Contains(analysis, "calm") {
		t.Fatalf("expected analysis to name both scenarios, got:\n%s", analysis)
	}
}

func TestGenerateCrossAnalysisHandlesEmpty(t *testing.T) {
	cr := NewCrossReport(nil, t.TempDir())
	if got := cr.generateCrossAnalysis(); got != "No scenario data available for comparison.\n" {
		t.Fatalf("expected no-data message, got: %q", got)
	}
}
