// Command fairsim runs and reports on limit-order-book market
// simulations: a configured agent population trading against a
// matching engine under a fair-value process and latency model.
package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fairbook/lobsim/internal/config"
	"github.com/fairbook/lobsim/internal/eventlog"
	"github.com/fairbook/lobsim/internal/metrics"
	"github.com/fairbook/lobsim/internal/report"
	"github.com/fairbook/lobsim/internal/sim"
)

const defaultRunsDir = "runs"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "demo":
		cmdDemo(os.Args[2:])
	case "report":
		cmdReport(os.Args[2:])
	case "replay":
		cmdReplay(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: fairsim <command> [options]

Commands:
  run      Run a single scenario
  demo     Run calm/thin/spike and generate a cross-scenario report
  report   Run a scenario with and without a market maker and compare spread
  replay   Verify a run's event log against a deterministic re-run
  serve    Run a scenario while streaming live state over WebSocket + /metrics

Run options:
  --scenario <name>   Scenario preset: calm, thin, spike (default: calm)
  --seed <n>           Random seed (default: 1)
  --config <path>      Optional YAML config overlay

Report options:
  --scenario <name>   Scenario preset: calm, thin, spike (default: calm)
  --seed <n>           Random seed (default: 1)

Replay options:
  --run-dir <path>    Path to a specific run directory (required)

Serve options:
  --scenario <name>   Scenario preset: calm, thin, spike (default: calm)
  --seed <n>           Random seed (default: 1)
  --addr <host:port>   Listen address (default: :8081)`)
}

func parseSeed(args []string, i int, def int64) int64 {
	var seed int64
	if _, err := fmt.Sscanf(args[i], "%d", &seed); err != nil {
		return def
	}
	return seed
}

func loadScenario(args []string) (*config.Config, error) {
	scenarioName := "calm"
	seed := int64(1)
	configPath := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--scenario":
			i++
			if i < len(args) {
				scenarioName = args[i]
			}
		case "--seed":
			i++
			if i < len(args) {
				seed = parseSeed(args, i, seed)
			}
		case "--config":
			i++
			if i < len(args) {
				configPath = args[i]
			}
		}
	}

	cfg, err := config.Load(configPath, scenarioName)
	if err != nil {
		return nil, err
	}
	cfg.Seed = seed
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func cmdRun(args []string) {
	cfg, err := loadScenario(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Running scenario: %s (seed=%d)\n", cfg.Name, cfg.Seed)

	runner, err := sim.NewRunner(cfg, defaultRunsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	result, err := runner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Simulation complete.\n")
	fmt.Printf("  Events processed: %d\n", result.EventCount)
	fmt.Printf("  Trades executed:  %d\n", result.TradeCount)
	fmt.Printf("  Mean spread:      %.4f\n", result.MeanSpread)
	fmt.Printf("  Wall time:        %v\n", result.Duration)
	fmt.Printf("  Log hash:         %s...\n", result.LogHash[:16])
	fmt.Printf("  Output:           %s\n", result.OutputDir)
}

func cmdReport(args []string) {
	cfg, err := loadScenario(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	withCfg := *cfg
	fmt.Printf("Running %s with a market maker (seed=%d)...\n", withCfg.Name, withCfg.Seed)
	withRunner, err := sim.NewRunner(&withCfg, defaultRunsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}
	withResult, err := withRunner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running: %v\n", err)
		os.Exit(1)
	}

	withoutCfg := *cfg
	withoutCfg.Name = cfg.Name + "_no_mm"
	withoutCfg.Population.MarketMakers = 0
	fmt.Printf("Running %s without a market maker (seed=%d)...\n", withoutCfg.Name, withoutCfg.Seed)
	withoutRunner, err := sim.NewRunner(&withoutCfg, defaultRunsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}
	withoutResult, err := withoutRunner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running: %v\n", err)
		os.Exit(1)
	}

	outDir := filepath.Join(defaultRunsDir, cfg.Name+"_report")
	rep := report.New(cfg.Name, withResult, withoutResult, outDir)
	if err := rep.Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nMean spread with MM:    %.4f\n", withResult.MeanSpread)
	fmt.Printf("Mean spread without MM: %.4f\n", withoutResult.MeanSpread)
	fmt.Printf("\nReport written to: %s/report.md\n", outDir)
}

func cmdDemo(args []string) {
	seed := int64(1)
	for i := 0; i < len(args); i++ {
		if args[i] == "--seed" {
			i++
			if i < len(args) {
				seed = parseSeed(args, i, seed)
			}
		}
	}

	presets := []string{"calm", "thin", "spike"}
	var results []report.ScenarioResult

	for _, name := range presets {
		cfg, err := config.Load("", name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", name, err)
			os.Exit(1)
		}
		cfg.Seed = seed

		fmt.Printf("Running scenario: %s (seed=%d)...\n", name, seed)
		runner, err := sim.NewRunner(cfg, defaultRunsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing %s: %v\n", name, err)
			os.Exit(1)
		}

		result, err := runner.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running %s: %v\n", name, err)
			os.Exit(1)
		}

		fmt.Printf("  %s: %d events, %d trades, mean spread %.4f, %v\n",
			name, result.EventCount, result.TradeCount, result.MeanSpread, result.Duration)

		results = append(results, report.ScenarioResult{Preset: name, Result: result})
	}

	report.PrintCrossSummary(results)

	crossReport := report.NewCrossReport(results, defaultRunsDir)
	if err := crossReport.Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cross-scenario report failed: %v\n", err)
	} else {
		fmt.Printf("\nCross-scenario report: %s/cross-scenario-report.md\n", defaultRunsDir)
	}
}

func cmdReplay(args []string) {
	if err := runReplay(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runReplay(args []string) error {
	runDir := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "--run-dir" {
			i++
			if i < len(args) {
				runDir = args[i]
			}
		}
	}
	if runDir == "" {
		return fmt.Errorf("--run-dir is required")
	}

	logPath := filepath.Join(runDir, "events.jsonl")
	configPath := filepath.Join(runDir, "config.json")

	reader, err := eventlog.NewReader(logPath)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	records, err := reader.ReadAll()
	reader.Close()
	if err != nil {
		return fmt.Errorf("read event log: %w", err)
	}
	fmt.Printf("Event log %s: %d records\n", logPath, len(records))

	cfgFile, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer cfgFile.Close()

	var cfg config.Config
	if err := decodeJSON(cfgFile, &cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "fairsim-replay-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	targetHash, err := hashFile(logPath)
	if err != nil {
		return fmt.Errorf("hash target log: %w", err)
	}

	runner, err := sim.NewRunner(&cfg, tmpDir)
	if err != nil {
		return fmt.Errorf("initialize replay runner: %w", err)
	}
	result, err := runner.Run()
	if err != nil {
		return fmt.Errorf("run replay: %w", err)
	}

	fmt.Printf("Deterministic replay log: %s\n", result.LogPath)
	if targetHash == result.LogHash {
		fmt.Printf("Event log hash matches deterministic replay: %s...\n", targetHash[:16])
	} else {
		fmt.Printf("Event log hash MISMATCH!\nTarget: %s...\nReplay: %s...\n", targetHash[:16], result.LogHash[:16])
	}
	return nil
}

func cmdServe(args []string) {
	cfg, err := loadScenario(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	addr := ":8081"
	for i := 0; i < len(args); i++ {
		if args[i] == "--addr" {
			i++
			if i < len(args) {
				addr = args[i]
			}
		}
	}

	runner, err := sim.NewRunner(cfg, defaultRunsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	ws := eventlog.NewWSBroadcaster()
	runner.AddLogger(ws)

	prom := metrics.NewPrometheus()
	runner.Prometheus(prom)

	mux := http.NewServeMux()
	mux.Handle("/stream", ws)
	mux.Handle("/metrics", prom.Handler())

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		fmt.Printf("Spectator feed: ws://%s/stream\n", addr)
		fmt.Printf("Prometheus:      http://%s/metrics\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		}
	}()

	fmt.Printf("Running scenario: %s (seed=%d)\n", cfg.Name, cfg.Seed)
	result, err := runner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Simulation complete: %d events, %d trades, mean spread %.4f\n",
		result.EventCount, result.TradeCount, result.MeanSpread)
	fmt.Println("Server still serving historical /metrics; press Ctrl-C to exit.")
	select {}
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h), nil
}
