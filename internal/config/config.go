// Package config loads simulation-run parameters from a YAML file with
// LOBSIM_*-prefixed environment overrides, overlaying one of a handful
// of built-in presets (spec.md §4.4 lists config as an external
// surface: tick_size, lot_size, mean_latency, snapshot_interval,
// cancel_prob, population sizes, seed, duration).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// PopulationConfig sets how many of each agent kind to spawn.
type PopulationConfig struct {
	RandomAgents   int `mapstructure:"random_agents"`
	MarketMakers   int `mapstructure:"market_makers"`
	NoiseTraders   int `mapstructure:"noise_traders"`
	MomentumAgents int `mapstructure:"momentum_agents"`
}

// Config is the top-level simulation configuration.
type Config struct {
	Name             string           `mapstructure:"name"`
	Seed             int64            `mapstructure:"seed"`
	DurationSeconds  float64          `mapstructure:"duration_seconds"`
	TickSize         float64          `mapstructure:"tick_size"`
	LotSize          int64            `mapstructure:"lot_size"`
	MeanLatency      float64          `mapstructure:"mean_latency"`
	SnapshotInterval float64          `mapstructure:"snapshot_interval"`
	CancelProb       float64          `mapstructure:"cancel_prob"`
	FairValueSigma   float64          `mapstructure:"fair_value_sigma"`
	InitialFairValue float64          `mapstructure:"initial_fair_value"`
	Population       PopulationConfig `mapstructure:"population"`
}

// Load reads a YAML config file, overlaying LOBSIM_* environment
// variables (dots replaced with underscores, per viper convention),
// onto a named preset.
func Load(path, preset string) (*Config, error) {
	cfg := presetFor(preset)

	v := viper.New()
	v.SetEnvPrefix("LOBSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows, so bind every key
	// explicitly; otherwise env overrides apply only to keys in the file.
	for _, key := range []string{
		"name", "seed", "duration_seconds", "tick_size", "lot_size",
		"mean_latency", "snapshot_interval", "cancel_prob",
		"fair_value_sigma", "initial_fair_value",
		"population.random_agents", "population.market_makers",
		"population.noise_traders", "population.momentum_agents",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.TickSize <= 0 {
		return fmt.Errorf("tick_size must be > 0")
	}
	if c.LotSize <= 0 {
		return fmt.Errorf("lot_size must be > 0")
	}
	if c.MeanLatency < 0 {
		return fmt.Errorf("mean_latency must be >= 0")
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be > 0")
	}
	if c.CancelProb < 0 || c.CancelProb > 1 {
		return fmt.Errorf("cancel_prob must be within [0, 1]")
	}
	if c.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be > 0")
	}
	return nil
}

func presetFor(name string) *Config {
	switch name {
	case "thin":
		return DefaultThin()
	case "spike":
		return DefaultSpike()
	default:
		return DefaultCalm()
	}
}

// DefaultCalm is a balanced population in a steady, liquid book.
func DefaultCalm() *Config {
	return &Config{
		Name:             "calm",
		Seed:             1,
		DurationSeconds:  3600,
		TickSize:         0.01,
		LotSize:          1,
		MeanLatency:      0.05,
		SnapshotInterval: 1.0,
		CancelProb:       0.1,
		FairValueSigma:   0.05,
		InitialFairValue: 100.0,
		Population: PopulationConfig{
			RandomAgents:   10,
			MarketMakers:   2,
			NoiseTraders:   10,
			MomentumAgents: 3,
		},
	}
}

// DefaultThin is a sparsely-populated book, stress-testing queue depth.
func DefaultThin() *Config {
	cfg := DefaultCalm()
	cfg.Name = "thin"
	cfg.Population = PopulationConfig{
		RandomAgents:   3,
		MarketMakers:   1,
		NoiseTraders:   3,
		MomentumAgents: 1,
	}
	return cfg
}

// DefaultSpike is a heavier, noisier population with a volatile fair
// value process, stress-testing the matching engine under load.
func DefaultSpike() *Config {
	cfg := DefaultCalm()
	cfg.Name = "spike"
	cfg.MeanLatency = 0.2
	cfg.FairValueSigma = 0.3
	cfg.CancelProb = 0.3
	cfg.Population = PopulationConfig{
		RandomAgents:   20,
		MarketMakers:   3,
		NoiseTraders:   25,
		MomentumAgents: 8,
	}
	return cfg
}
