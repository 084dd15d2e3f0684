package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/evoquant/stock-backtester/internal/backtest"
	"github.com/evoquant/stock-backtester/internal/logger"
	"github.com/evoquant/stock-backtester/internal/models"
	"github.com/evoquant/stock-backtester/internal/monitoring"
	"github.com/evoquant/stock-backtester/internal/strategy"
	"github.com/evoquant/stock-backtester/pkg/config"
	"github.com/evoquant/stock-backtester/pkg/data"
	"github.com/evoquant/stock-backtester/pkg/reporting"
)

const (
	AppName    = "Stock Backtester"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	loadEnvironment(*flags.EnvFile)

	cfg, err := resolveConfig(flags)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := monitoring.StartMetricsServer(cfg.MetricsAddr); err != nil {
				log.Printf("⚠️ Metrics server stopped: %v", err)
			}
		}()
	}

	tables, err := loadTables(cfg)
	if err != nil {
		log.Fatalf("❌ Data error: %v", err)
	}

	for _, table := range tables {
		if err := runSymbol(cfg, table, *flags.Verbose); err != nil {
			monitoring.RecordError("run")
			log.Printf("⚠️ %s: %v", table.Symbol(), err)
		}
	}
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		// Missing .env is fine; the engine runs on flags and defaults.
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Could not load %s: %v", envFile, err)
		}
	}
}

// resolveConfig layers flag overrides on top of the config file (or the
// defaults when no file is given).
func resolveConfig(flags *Flags) (*config.RunConfig, error) {
	cfg := config.Default()
	if *flags.ConfigFile != "" {
		loaded, err := config.LoadFile(*flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *flags.DataFile != "" {
		cfg.DataFile = *flags.DataFile
	}
	if *flags.DataDir != "" {
		cfg.DataDir = *flags.DataDir
	}
	if *flags.Symbol != "" {
		cfg.Symbol = *flags.Symbol
	}
	if *flags.Strategy != "" {
		cfg.Strategy = *flags.Strategy
	}
	if *flags.InitialCapital > 0 {
		cfg.InitialCapital = *flags.InitialCapital
	}
	if *flags.MaxPosition > 0 {
		cfg.MaxPositionRatio = *flags.MaxPosition
	}
	if *flags.StopLoss > 0 {
		cfg.StopLossPct = *flags.StopLoss
	}
	if *flags.Warmup > 0 {
		cfg.WarmupBars = *flags.Warmup
	}
	if *flags.Learning {
		cfg.LearningMode = true
	}
	if *flags.ModelsDir != "" {
		cfg.ModelsDir = *flags.ModelsDir
	}
	if *flags.Output != "" {
		cfg.OutputFormat = *flags.Output
	}
	if *flags.ResultsDir != "" {
		cfg.ResultsDir = *flags.ResultsDir
	}
	if *flags.LogDir != "" {
		cfg.LogDir = *flags.LogDir
	}
	if *flags.MetricsAddr != "" {
		cfg.MetricsAddr = *flags.MetricsAddr
	}
	return cfg, nil
}

func loadTables(cfg *config.RunConfig) ([]*data.PriceTable, error) {
	provider := data.NewCSVProvider()
	if cfg.DataDir != "" {
		return provider.LoadDir(cfg.DataDir)
	}
	table, err := provider.LoadTable(cfg.DataFile, cfg.Symbol)
	if err != nil {
		return nil, err
	}
	return []*data.PriceTable{table}, nil
}

func runSymbol(cfg *config.RunConfig, table *data.PriceTable, verbose bool) error {
	runLog, err := logger.New(table.Symbol(), cfg.LogDir)
	if err != nil {
		return err
	}
	defer runLog.Close()

	mm := models.NewManager(cfg.ModelsDir, runLog)

	if cfg.LearningMode {
		trainer := backtest.NewTrainer(mm, runLog)
		if err := trainer.TrainFromTable(table, cfg.WarmupBars); err != nil {
			// Training failure degrades to rule-only, it does not abort.
			runLog.Warning("learning degraded to rule-only: %v", err)
		} else if err := mm.Save(); err != nil {
			runLog.Warning("could not persist models: %v", err)
		}
	}

	sim := backtest.NewSimulator(backtest.Config{
		InitialCapital:   cfg.InitialCapital,
		MaxPositionRatio: cfg.MaxPositionRatio,
		StopLossPct:      cfg.StopLossPct,
		WarmupBars:       cfg.WarmupBars,
	}, strategy.ForID(cfg.Strategy), mm, runLog)

	result, err := sim.Run(table)
	if err != nil {
		return err
	}

	monitoring.RecordRun(result.Strategy, result.Symbol,
		result.TotalTrades, result.WinningTrades, result.LosingTrades,
		result.FinalCapital, result.WinRate)

	switch cfg.OutputFormat {
	case "json":
		path := filepath.Join(cfg.ResultsDir, fmt.Sprintf("%s_result.json", result.Symbol))
		if err := reporting.NewJSONReporter().WriteResult(result, path); err != nil {
			return err
		}
		fmt.Printf("📄 Result written to %s\n", path)
	case "excel":
		path := filepath.Join(cfg.ResultsDir, fmt.Sprintf("trades_%s.xlsx", result.Symbol))
		if err := reporting.NewExcelReporter().WriteWorkbook(result, path); err != nil {
			return err
		}
		fmt.Printf("📄 Workbook written to %s\n", path)
	default:
		reporting.NewConsoleReporter().OutputResults(result, verbose)
	}
	return nil
}
