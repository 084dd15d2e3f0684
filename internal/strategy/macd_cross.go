package strategy

import (
	"math"

	"github.com/evoquant/stock-backtester/internal/indicators"
	"github.com/evoquant/stock-backtester/pkg/data"
)

// MACDCross enters when the MACD histogram crosses from negative to positive
// and exits on the reverse crossing. This is the default rule trigger.
type MACDCross struct {
	macd *indicators.MACD
}

// NewMACDCross creates the default 12/26/9 MACD crossover strategy.
func NewMACDCross() *MACDCross {
	return &MACDCross{macd: indicators.NewDefaultMACD()}
}

// GetName returns the name of the strategy
func (s *MACDCross) GetName() string { return "macd_cross" }

// Prepare computes the MACD columns when the table does not carry them.
func (s *MACDCross) Prepare(table *data.PriceTable) error {
	if _, ok := table.Indicator(data.ColMACDHist); ok {
		return nil
	}

	closes := make([]float64, table.Len())
	for i := range closes {
		closes[i] = table.Close(i)
	}
	macdLine, signalLine, hist := s.macd.Series(closes)

	if err := table.SetIndicator(data.ColMACD, macdLine); err != nil {
		return err
	}
	if err := table.SetIndicator(data.ColMACDSignal, signalLine); err != nil {
		return err
	}
	return table.SetIndicator(data.ColMACDHist, hist)
}

// Signal fires entry on a histogram zero-cross upward, exit on the cross
// back down.
func (s *MACDCross) Signal(table *data.PriceTable, i int) Trigger {
	if i < 1 {
		return Trigger{}
	}

	hist, ok := table.IndicatorAt(data.ColMACDHist, i)
	if !ok {
		return Trigger{}
	}
	prev, ok := table.IndicatorAt(data.ColMACDHist, i-1)
	if !ok {
		return Trigger{}
	}

	t := Trigger{
		Entry:    prev < 0 && hist > 0,
		Exit:     prev > 0 && hist < 0,
		Strength: histStrength(hist),
	}
	return t
}

// histStrength maps the histogram magnitude into [0,1], neutral 0.5 at zero.
func histStrength(hist float64) float64 {
	if hist == 0 {
		return 0.5
	}
	return math.Min(1.0, math.Abs(hist)*10)
}
