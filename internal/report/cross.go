package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairbook/lobsim/internal/sim"
)

// ScenarioResult pairs a preset name with the RunResult it produced.
type ScenarioResult struct {
	Preset string
	Result *sim.RunResult
}

// CrossReport compares mean spread and execution quality across
// multiple scenario presets (calm/thin/spike), each run with a market
// maker in its population.
type CrossReport struct {
	results []ScenarioResult
	outDir  string
}

// NewCrossReport creates a cross-scenario report.
func NewCrossReport(results []ScenarioResult, outDir string) *CrossReport {
	return &CrossReport{results: results, outDir: outDir}
}

// Generate writes the consolidated cross-scenario report.
func (cr *CrossReport) Generate() error {
	if err := os.MkdirAll(cr.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	content := cr.renderMarkdown()
	reportPath := filepath.Join(cr.outDir, "cross-scenario-report.md")
	if err := os.WriteFile(reportPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write cross report: %w", err)
	}

	dataPath := filepath.Join(cr.outDir, "cross-scenario-metrics.json")
	data, _ := json.MarshalIndent(cr.buildSummary(), "", "  ")
	return os.WriteFile(dataPath, data, 0o644)
}

type scenarioSummary struct {
	Preset     string  `json:"preset"`
	MeanSpread float64 `json:"mean_spread"`
	TradeCount int     `json:"trade_count"`
	EventCount uint64  `json:"event_count"`
}

func (cr *CrossReport) buildSummary() []scenarioSummary {
	var summaries []scenarioSummary
	for _, r := range cr.results {
		summaries = append(summaries, scenarioSummary{
			Preset:     r.Preset,
			MeanSpread: r.Result.MeanSpread,
			TradeCount: r.Result.TradeCount,
			EventCount: r.Result.EventCount,
		})
	}
	return summaries
}

func (cr *CrossReport) renderMarkdown() string {
	var sb strings.Builder

	sb.WriteString("# Cross-Scenario Spread Comparison\n\n")
	sb.WriteString("This report consolidates results across market regimes (calm, thin, spike) to show how ")
	sb.WriteString("the market maker's effect on spread and execution quality varies with market conditions.\n\n")

	sb.WriteString("## Summary Table\n\n")
	sb.WriteString("| Preset | Mean Spread | Trades | Events | Avg Fill Rate | Avg Slippage (bps) |\n")
	sb.WriteString("|--------|-------------|--------|--------|---------------|---------------------|\n")
	for _, r := range cr.results {
		avgFill, avgSlip := avgAcrossAgents(r.Result)
		sb.WriteString(fmt.Sprintf("| %s | %.4f | %d | %d | %.2f%% | %.2f |\n",
			r.Preset, r.Result.MeanSpread, r.Result.TradeCount, r.Result.EventCount, avgFill*100, avgSlip))
	}
	sb.WriteString("\n")

	sb.WriteString("## Analysis\n\n")
	sb.WriteString(cr.generateCrossAnalysis())

	return sb.String()
}

func avgAcrossAgents(r *sim.RunResult) (fillRate, slippageBps float64) {
	if len(r.Metrics) == 0 {
		return 0, 0
	}
	for _, m := range r.Metrics {
		fillRate += m.FillRate
		slippageBps += m.SlippageBps
	}
	n := float64(len(r.Metrics))
	return fillRate / n, slippageBps / n
}

func (cr *CrossReport) generateCrossAnalysis() string {
	if len(cr.results) == 0 {
		return "No scenario data available for comparison.\n"
	}

	var sb strings.Builder

	widest := cr.results[0]
	for _, r := range cr.results[1:] {
		if r.Result.MeanSpread > widest.Result.MeanSpread {
			widest = r
		}
	}
	narrowest := cr.results[0]
	for _, r := range cr.results[1:] {
		if r.Result.MeanSpread < narrowest.Result.MeanSpread {
			narrowest = r
		}
	}

	sb.WriteString(fmt.Sprintf("- **Widest spread**: the **%s** preset averaged %.4f, consistent with thinner or ",
		widest.Preset, widest.Result.MeanSpread))
	sb.WriteString("more volatile liquidity giving the market maker less to work with.\n")
	sb.WriteString(fmt.Sprintf("- **Narrowest spread**: the **%s** preset averaged %.4f, where calmer order flow ",
		narrowest.Preset, narrowest.Result.MeanSpread))
	sb.WriteString("let continuous two-sided quoting hold a tighter book.\n\n")

	sb.WriteString("### Key Takeaways\n\n")
	sb.WriteString("1. Spread tracks the balance between order flow intensity and the market maker's requote rate.\n")
	sb.WriteString("2. Thin or spiking regimes widen the realized spread even with a market maker present, since ")
	sb.WriteString("inventory-skew caps and cancel/requote latency limit how tightly it can track the top of book.\n")
	sb.WriteString("3. Comparing against a population with no market maker (see the per-scenario report) isolates ")
	sb.WriteString("how much of the narrowing is attributable to its quoting rather than to the regime itself.\n")

	return sb.String()
}

// PrintCrossSummary prints a condensed cross-scenario summary to stdout.
func PrintCrossSummary(results []ScenarioResult) {
	fmt.Println("\n=== Cross-Scenario Comparison ===")
	fmt.Println()
	fmt.Printf("  %-10s %14s %10s %10s\n", "Preset", "Mean Spread", "Trades", "Events")
	fmt.Printf("  %-10s %14s %10s %10s\n", strings.Repeat("-", 10), strings.Repeat("-", 14), strings.Repeat("-", 10), strings.Repeat("-", 10))
	for _, r := range results {
		fmt.Printf("  %-10s %14.4f %10d %10d\n", r.Preset, r.Result.MeanSpread, r.Result.TradeCount, r.Result.EventCount)
	}
}
