// Package report renders the market-maker spread comparison: spec.md
// §8's testable property that mean spread narrows when a market maker
// is active versus a population with none.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairbook/lobsim/internal/metrics"
	"github.com/fairbook/lobsim/internal/sim"
)

// Report compares two runs of the same scenario, one with market
// makers in the population and one without.
type Report struct {
	ScenarioName string
	WithMM       *sim.RunResult
	WithoutMM    *sim.RunResult
	outDir       string
}

// New creates a Report writing its artifacts under outDir.
func New(scenarioName string, withMM, withoutMM *sim.RunResult, outDir string) *Report {
	return &Report{ScenarioName: scenarioName, WithMM: withMM, WithoutMM: withoutMM, outDir: outDir}
}

// Generate writes report.md, metrics.json, and plots.txt.
func (r *Report) Generate() error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	metricsData, _ := json.MarshalIndent(map[string]any{
		"with_mm":    r.WithMM.Metrics,
		"without_mm": r.WithoutMM.Metrics,
	}, "", "  ")
	if err := os.WriteFile(filepath.Join(r.outDir, "metrics.json"), metricsData, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	if err := os.WriteFile(filepath.Join(r.outDir, "report.md"), []byte(r.renderMarkdown()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := os.WriteFile(filepath.Join(r.outDir, "plots.txt"), []byte(r.renderPlots()), 0o644); err != nil {
		return fmt.Errorf("write plots: %w", err)
	}

	return nil
}

func (r *Report) renderMarkdown() string {
	var sb strings.Builder

	sb.WriteString("# Market Maker Spread Report\n\n")
	sb.WriteString(fmt.Sprintf("**Scenario:** %s\n\n", r.ScenarioName))

	sb.WriteString("## Mean Spread\n\n")
	sb.WriteString("| Population | Mean Spread |\n")
	sb.WriteString("|------------|-------------|\n")
	sb.WriteString(fmt.Sprintf("| with market maker | %.4f |\n", r.WithMM.MeanSpread))
	sb.WriteString(fmt.Sprintf("| without market maker | %.4f |\n\n", r.WithoutMM.MeanSpread))

	narrowed := r.WithMM.MeanSpread < r.WithoutMM.MeanSpread
	sb.WriteString(fmt.Sprintf("**Narrowed with a market maker present: %v**\n\n", narrowed))

	sb.WriteString("## Per-Agent-Kind Execution Metrics\n\n")
	sb.WriteString("| Kind | Run | Fill Rate | Avg Slippage (bps) | Avg TTF (s) |\n")
	sb.WriteString("|------|-----|-----------|---------------------|-------------|\n")
	for _, kind := range []string{"mm", "noise", "momentum", "random"} {
		withAgg := aggregateByKind(r.WithMM.Metrics, kind)
		withoutAgg := aggregateByKind(r.WithoutMM.Metrics, kind)
		if withAgg == nil && withoutAgg == nil {
			continue
		}
		sb.WriteString(renderAggRow(kind, "with MM", withAgg))
		sb.WriteString(renderAggRow(kind, "without MM", withoutAgg))
	}
	sb.WriteString("\n")

	sb.WriteString("## Analysis\n\n")
	if narrowed {
		sb.WriteString("The market maker's presence narrowed the mean spread relative to the population without ")
		sb.WriteString("one, consistent with its continuous two-sided quoting absorbing the gap between the best ")
		sb.WriteString("resting bid and ask left by the rest of the population.\n")
	} else {
		sb.WriteString("The mean spread did not narrow with the market maker present in this run; inventory-skew ")
		sb.WriteString("widening or insufficient arrival rate may have offset its quoting.\n")
	}

	return sb.String()
}

type aggMetrics struct {
	n           int
	fillRate    float64
	slippageBps float64
	avgTTF      float64
}

func aggregateByKind(m map[string]*metrics.AgentMetrics, kind string) *aggMetrics {
	agg := &aggMetrics{}
	for id, am := range m {
		if !strings.HasPrefix(id, kind+"-") {
			continue
		}
		agg.n++
		agg.fillRate += am.FillRate
		agg.slippageBps += am.SlippageBps
		agg.avgTTF += am.AvgTimeToFillSec
	}
	if agg.n == 0 {
		return nil
	}
	agg.fillRate /= float64(agg.n)
	agg.slippageBps /= float64(agg.n)
	agg.avgTTF /= float64(agg.n)
	return agg
}

func renderAggRow(kind, label string, agg *aggMetrics) string {
	if agg == nil {
		return fmt.Sprintf("| %s | %s | N/A | N/A | N/A |\n", kind, label)
	}
	return fmt.Sprintf("| %s | %s | %.2f%% | %.2f | %.4f |\n",
		kind, label, agg.fillRate*100, agg.slippageBps, agg.avgTTF)
}

func (r *Report) renderPlots() string {
	var sb strings.Builder
	sb.WriteString("=== Slippage Distribution (with MM) ===\n\n")
	sb.WriteString(asciiHistogram(collectSlippage(r.WithMM.Metrics), 20))
	sb.WriteString("\n=== Slippage Distribution (without MM) ===\n\n")
	sb.WriteString(asciiHistogram(collectSlippage(r.WithoutMM.Metrics), 20))
	return sb.String()
}

func collectSlippage(m map[string]*metrics.AgentMetrics) []float64 {
	var out []float64
	for _, am := range m {
		out = append(out, am.AvgSlippage)
	}
	return out
}

func asciiHistogram(values []float64, bins int) string {
	if len(values) == 0 {
		return "  (no data)\n"
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if minV == maxV {
		return fmt.Sprintf("  all values = %.4f\n", minV)
	}

	binWidth := (maxV - minV) / float64(bins)
	counts := make([]int, bins)
	maxCount := 0
	for _, v := range values {
		idx := int((v - minV) / binWidth)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
		if counts[idx] > maxCount {
			maxCount = counts[idx]
		}
	}

	var sb strings.Builder
	const barMax = 40
	for i, c := range counts {
		lo := minV + float64(i)*binWidth
		hi := lo + binWidth
		barLen := 0
		if maxCount > 0 {
			barLen = c * barMax / maxCount
		}
		sb.WriteString(fmt.Sprintf("  %+8.4f to %+8.4f | %s (%d)\n", lo, hi, strings.Repeat("#", barLen), c))
	}
	return sb.String()
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
