package strategy

import (
	"math"

	"github.com/evoquant/stock-backtester/internal/indicators"
	"github.com/evoquant/stock-backtester/pkg/data"
)

// MACross is the dual moving average crossover: enter when the 5-bar SMA
// crosses above the 20-bar SMA, exit on the cross back below.
type MACross struct{}

// NewMACross creates the 5/20 dual-MA crossover strategy.
func NewMACross() *MACross {
	return &MACross{}
}

// GetName returns the name of the strategy
func (s *MACross) GetName() string { return "ma_cross" }

// Prepare computes the MA5/MA20 columns when the table does not carry them.
func (s *MACross) Prepare(table *data.PriceTable) error {
	closes := make([]float64, table.Len())
	for i := range closes {
		closes[i] = table.Close(i)
	}

	for _, cfg := range []struct {
		name   string
		period int
	}{
		{data.ColMA5, 5},
		{data.ColMA20, 20},
	} {
		if _, ok := table.Indicator(cfg.name); ok {
			continue
		}
		sma := indicators.NewSMA(cfg.period)
		series := make([]float64, table.Len())
		for i := range series {
			if v, ok := sma.At(closes, i); ok {
				series[i] = v
			} else {
				series[i] = closes[i]
			}
		}
		if err := table.SetIndicator(cfg.name, series); err != nil {
			return err
		}
	}
	return nil
}

// Signal fires entry when MA5 crosses above MA20, exit on the reverse cross.
func (s *MACross) Signal(table *data.PriceTable, i int) Trigger {
	if i < 1 {
		return Trigger{}
	}

	fast, okF := table.IndicatorAt(data.ColMA5, i)
	slow, okS := table.IndicatorAt(data.ColMA20, i)
	prevFast, okPF := table.IndicatorAt(data.ColMA5, i-1)
	prevSlow, okPS := table.IndicatorAt(data.ColMA20, i-1)
	if !okF || !okS || !okPF || !okPS || slow == 0 {
		return Trigger{}
	}

	// Divergence between the averages scaled into [0,1].
	strength := math.Min(1.0, math.Abs(fast/slow-1)*20+0.5)

	return Trigger{
		Entry:    prevFast <= prevSlow && fast > slow,
		Exit:     prevFast >= prevSlow && fast < slow,
		Strength: strength,
	}
}
