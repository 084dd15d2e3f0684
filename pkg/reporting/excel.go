package reporting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/evoquant/stock-backtester/internal/backtest"
)

// ExcelReporter writes a trade workbook per run.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteWorkbook writes a Summary and a Trades sheet for one result.
func (r *ExcelReporter) WriteWorkbook(result *backtest.BacktestResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const tradesSheet = "Trades"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	if _, err := fx.NewSheet(tradesSheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := r.writeSummary(fx, summarySheet, result, headerStyle); err != nil {
		return err
	}
	if err := r.writeTrades(fx, tradesSheet, result, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) writeSummary(fx *excelize.File, sheet string, result *backtest.BacktestResult, headerStyle int) error {
	rows := [][]interface{}{
		{"Symbol", result.Symbol},
		{"Strategy", result.Strategy},
		{"Start", result.StartTime.Format("2006-01-02")},
		{"End", result.EndTime.Format("2006-01-02")},
		{"Initial Capital", result.InitialCapital},
		{"Final Capital", result.FinalCapital},
		{"Total Trades", result.TotalTrades},
		{"Winning Trades", result.WinningTrades},
		{"Losing Trades", result.LosingTrades},
		{"Win Rate %", result.WinRate},
		{"Avg Profit", result.AvgProfit},
		{"Avg Loss", result.AvgLoss},
		{"Profit Factor", excelProfitFactor(result.ProfitFactor)},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return fx.SetCellStyle(sheet, "A1", "A13", headerStyle)
}

func (r *ExcelReporter) writeTrades(fx *excelize.File, sheet string, result *backtest.BacktestResult, headerStyle int) error {
	header := []interface{}{"#", "Entry Time", "Entry Price", "Exit Time", "Exit Price", "Shares", "Position %", "Stop Loss", "P/L", "Regime"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "J1", headerStyle); err != nil {
		return err
	}

	for i, tr := range result.Trades {
		var exitTime, exitPrice, pl interface{}
		if tr.Closed() {
			exitTime = tr.ExitTime.Format("2006-01-02")
			exitPrice = *tr.ExitPrice
			pl = *tr.ProfitLoss
		} else {
			exitTime = "open"
		}

		row := []interface{}{
			i + 1,
			tr.EntryTime.Format("2006-01-02"),
			tr.EntryPrice,
			exitTime,
			exitPrice,
			tr.PositionSize,
			tr.PositionRatio * 100,
			tr.StopLoss,
			pl,
			tr.Signal.Regime.String(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// excelProfitFactor keeps the infinite case out of numeric cells.
func excelProfitFactor(pf float64) interface{} {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return pf
}
