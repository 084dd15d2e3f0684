package data

import (
	"errors"
	"fmt"
	"time"

	"github.com/evoquant/stock-backtester/pkg/types"
)

var (
	// ErrMissingColumn means a required price/volume field resolved under
	// neither naming scheme. The symbol cannot be backtested.
	ErrMissingColumn = errors.New("required column missing")

	// ErrColumnLength means a column's length disagrees with the bar count.
	ErrColumnLength = errors.New("column length mismatch")
)

// PriceTable is the normalized view of one symbol's historical bars.
// Header resolution happens once at construction; readers only ever see
// canonical column names. Bars are never mutated after construction;
// derived indicator columns may be attached later via SetIndicator.
type PriceTable struct {
	symbol     string
	bars       []types.Bar
	indicators map[string][]float64
}

// NewPriceTable builds a table from raw columns keyed by header name under
// either supported scheme. Dates and the five price/volume columns are
// required; any resolvable indicator columns are carried along.
func NewPriceTable(symbol string, dates []time.Time, columns map[string][]float64) (*PriceTable, error) {
	resolved := make(map[string][]float64, len(columns))
	for header, values := range columns {
		canonical, ok := ResolveColumn(header)
		if !ok || canonical == ColDate {
			continue
		}
		resolved[canonical] = values
	}

	for _, col := range requiredColumns {
		if _, ok := resolved[col]; !ok {
			return nil, fmt.Errorf("%w: %s (%s)", ErrMissingColumn, col, symbol)
		}
	}

	n := len(dates)
	for name, values := range resolved {
		if len(values) != n {
			return nil, fmt.Errorf("%w: %s has %d values for %d bars", ErrColumnLength, name, len(values), n)
		}
	}

	bars := make([]types.Bar, n)
	for i := 0; i < n; i++ {
		bars[i] = types.Bar{
			Date:   dates[i],
			Open:   resolved[ColOpen][i],
			High:   resolved[ColHigh][i],
			Low:    resolved[ColLow][i],
			Close:  resolved[ColClose][i],
			Volume: resolved[ColVolume][i],
		}
	}

	indicators := make(map[string][]float64)
	for name, values := range resolved {
		switch name {
		case ColOpen, ColHigh, ColLow, ColClose, ColVolume:
		default:
			indicators[name] = values
		}
	}

	return &PriceTable{symbol: symbol, bars: bars, indicators: indicators}, nil
}

// NewPriceTableFromBars builds a table directly from normalized bars.
// Used by tests and callers that already hold typed data.
func NewPriceTableFromBars(symbol string, bars []types.Bar) *PriceTable {
	return &PriceTable{
		symbol:     symbol,
		bars:       bars,
		indicators: make(map[string][]float64),
	}
}

// Symbol returns the symbol this table belongs to.
func (t *PriceTable) Symbol() string { return t.symbol }

// Len returns the number of bars.
func (t *PriceTable) Len() int { return len(t.bars) }

// Bar returns the bar at index i.
func (t *PriceTable) Bar(i int) types.Bar { return t.bars[i] }

// Bars returns the full bar slice. Callers must not modify it.
func (t *PriceTable) Bars() []types.Bar { return t.bars }

// Close returns the close price at index i.
func (t *PriceTable) Close(i int) float64 { return t.bars[i].Close }

// Indicator returns a derived column by canonical name.
func (t *PriceTable) Indicator(name string) ([]float64, bool) {
	values, ok := t.indicators[name]
	return values, ok
}

// IndicatorAt returns a single indicator value, with ok=false when the
// column is absent or the index is out of range.
func (t *PriceTable) IndicatorAt(name string, i int) (float64, bool) {
	values, ok := t.indicators[name]
	if !ok || i < 0 || i >= len(values) {
		return 0, false
	}
	return values[i], true
}

// SetIndicator attaches a derived column. It exists so the simulator can
// precompute missing oscillator columns before its loop; price bars stay
// immutable.
func (t *PriceTable) SetIndicator(name string, values []float64) error {
	if len(values) != len(t.bars) {
		return fmt.Errorf("%w: %s has %d values for %d bars", ErrColumnLength, name, len(values), len(t.bars))
	}
	t.indicators[name] = values
	return nil
}
