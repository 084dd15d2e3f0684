package main

import "flag"

// Flags holds all command line flag pointers.
type Flags struct {
	ConfigFile *string
	DataFile   *string
	DataDir    *string
	Symbol     *string

	Strategy       *string
	InitialCapital *float64
	MaxPosition    *float64
	StopLoss       *float64
	Warmup         *int

	Learning  *bool
	ModelsDir *string

	Output      *string
	ResultsDir  *string
	LogDir      *string
	MetricsAddr *string
	EnvFile     *string
	Verbose     *bool

	ShowVersion *bool
}

// NewFlags creates and registers all command line flags.
func NewFlags() *Flags {
	return &Flags{
		ConfigFile: flag.String("config", "", "JSON run configuration file"),
		DataFile:   flag.String("data", "", "CSV price file for one symbol"),
		DataDir:    flag.String("data-dir", "", "Directory of CSV price files"),
		Symbol:     flag.String("symbol", "", "Symbol override (defaults to the file name)"),

		Strategy:       flag.String("strategy", "", "Rule trigger: macd_cross, kdj_cross, ma_cross"),
		InitialCapital: flag.Float64("capital", 0, "Initial capital"),
		MaxPosition:    flag.Float64("max-position", 0, "Maximum position ratio (0-1)"),
		StopLoss:       flag.Float64("stop-loss", 0, "Stop loss fraction below entry (0-1)"),
		Warmup:         flag.Int("warmup", 0, "Warm-up bars before trading"),

		Learning:  flag.Bool("learning", false, "Train models from the data before simulating"),
		ModelsDir: flag.String("models-dir", "", "Model artifact directory"),

		Output:      flag.String("output", "", "Output format: console, json, excel"),
		ResultsDir:  flag.String("results-dir", "", "Directory for result files"),
		LogDir:      flag.String("log-dir", "", "Directory for run logs (default stderr)"),
		MetricsAddr: flag.String("metrics-addr", "", "Expose Prometheus metrics on this address"),
		EnvFile:     flag.String("env", ".env", "Environment file"),
		Verbose:     flag.Bool("verbose", false, "Print per-trade detail"),

		ShowVersion: flag.Bool("version", false, "Show version"),
	}
}
