package reporting

import (
	"fmt"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/evoquant/stock-backtester/internal/backtest"
)

// ConsoleReporter renders backtest results as terminal tables.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// OutputResults prints the run summary and, when verbose, per-trade rows.
func (r *ConsoleReporter) OutputResults(result *backtest.BacktestResult, verbose bool) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("BACKTEST RESULTS — %s", result.Symbol))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Strategy", result.Strategy},
		{"💰 Initial Capital", fmt.Sprintf("%.2f", result.InitialCapital)},
		{"💰 Final Capital", fmt.Sprintf("%.2f", result.FinalCapital)},
		{"📈 Return", fmt.Sprintf("%.2f%%", totalReturn(result)*100)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🔄 Total Trades", result.TotalTrades},
		{"✅ Winning Trades", result.WinningTrades},
		{"❌ Losing Trades", result.LosingTrades},
		{"🎯 Win Rate", fmt.Sprintf("%.1f%%", result.WinRate)},
		{"📊 Avg Profit", fmt.Sprintf("%.2f", result.AvgProfit)},
		{"📊 Avg Loss", fmt.Sprintf("%.2f", result.AvgLoss)},
		{"💹 Profit Factor", formatProfitFactor(result.ProfitFactor)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 35, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()

	if verbose && len(result.Trades) > 0 {
		r.printTrades(result)
	}
}

func (r *ConsoleReporter) printTrades(result *backtest.BacktestResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADES")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Entry", "Entry Px", "Exit", "Exit Px", "Shares", "P/L", "Regime"})

	for i, tr := range result.Trades {
		exitTime, exitPrice, pl := "open", "-", "-"
		if tr.Closed() {
			exitTime = tr.ExitTime.Format("2006-01-02")
			exitPrice = fmt.Sprintf("%.2f", *tr.ExitPrice)
			pl = fmt.Sprintf("%.2f", *tr.ProfitLoss)
		}
		t.AppendRow(table.Row{
			i + 1,
			tr.EntryTime.Format("2006-01-02"),
			fmt.Sprintf("%.2f", tr.EntryPrice),
			exitTime,
			exitPrice,
			fmt.Sprintf("%.2f", tr.PositionSize),
			pl,
			tr.Signal.Regime.String(),
		})
	}

	t.Render()
	fmt.Println()
}

func totalReturn(result *backtest.BacktestResult) float64 {
	if result.InitialCapital == 0 {
		return 0
	}
	return (result.FinalCapital - result.InitialCapital) / result.InitialCapital
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf (no losing trades)"
	}
	return fmt.Sprintf("%.2f", pf)
}
