package reporting

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/evoquant/stock-backtester/internal/backtest"
)

// JSONReporter serializes backtest results to disk.
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// jsonResult shadows the result so the infinite profit-factor case can be
// serialized as the string "inf" instead of breaking encoding/json.
type jsonResult struct {
	*backtest.BacktestResult
	ProfitFactor interface{} `json:"profit_factor"`
}

// WriteResult writes one result document to path, creating directories as
// needed.
func (r *JSONReporter) WriteResult(result *backtest.BacktestResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	doc := jsonResult{BacktestResult: result, ProfitFactor: result.ProfitFactor}
	if math.IsInf(result.ProfitFactor, 1) {
		doc.ProfitFactor = "inf"
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(path, raw, 0644)
}
