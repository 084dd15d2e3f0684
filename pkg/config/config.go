package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// RunConfig is the full configuration of one backtest invocation. Values
// come from a JSON file, flag overrides, or both.
type RunConfig struct {
	Symbol   string `json:"symbol"`
	DataFile string `json:"data_file"`
	DataDir  string `json:"data_dir"`

	Strategy       string  `json:"strategy"`
	InitialCapital float64 `json:"initial_capital"`

	MaxPositionRatio float64 `json:"max_position_ratio"`
	StopLossPct      float64 `json:"stop_loss_pct"`
	WarmupBars       int     `json:"warmup_bars"`

	LearningMode bool   `json:"learning_mode"`
	ModelsDir    string `json:"models_dir"`

	ResultsDir   string `json:"results_dir"`
	OutputFormat string `json:"output_format"` // console | json | excel
	LogDir       string `json:"log_dir"`
	MetricsAddr  string `json:"metrics_addr"`
}

// Default returns the standard configuration.
func Default() *RunConfig {
	return &RunConfig{
		Strategy:         "macd_cross",
		InitialCapital:   100000,
		MaxPositionRatio: 0.2,
		StopLossPct:      0.05,
		WarmupBars:       60,
		ModelsDir:        "ml_models",
		ResultsDir:       "results",
		OutputFormat:     "console",
	}
}

// LoadFile reads a JSON config, layered over the defaults.
func LoadFile(path string) (*RunConfig, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *RunConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %.2f", c.InitialCapital)
	}
	if c.DataFile == "" && c.DataDir == "" {
		return fmt.Errorf("either data_file or data_dir must be set")
	}
	if c.MaxPositionRatio <= 0 || c.MaxPositionRatio > 1 {
		return fmt.Errorf("max_position_ratio must be in (0,1], got %.2f", c.MaxPositionRatio)
	}
	if c.StopLossPct <= 0 || c.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss_pct must be in (0,1), got %.2f", c.StopLossPct)
	}
	if c.WarmupBars < 0 {
		return fmt.Errorf("warmup_bars must not be negative, got %d", c.WarmupBars)
	}
	switch c.OutputFormat {
	case "", "console", "json", "excel":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	return nil
}
