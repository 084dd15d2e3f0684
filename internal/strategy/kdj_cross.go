package strategy

import (
	"math"

	"github.com/evoquant/stock-backtester/internal/indicators"
	"github.com/evoquant/stock-backtester/pkg/data"
)

// KDJCross enters on a K/D golden cross and exits on the dead cross.
type KDJCross struct {
	kdj *indicators.KDJ
}

// NewKDJCross creates the 9/3/3 KDJ crossover strategy.
func NewKDJCross() *KDJCross {
	return &KDJCross{kdj: indicators.NewDefaultKDJ()}
}

// GetName returns the name of the strategy
func (s *KDJCross) GetName() string { return "kdj_cross" }

// Prepare computes K/D/J columns when the table does not carry them.
func (s *KDJCross) Prepare(table *data.PriceTable) error {
	if _, ok := table.Indicator(data.ColK); ok {
		return nil
	}

	k, d, j := s.kdj.Series(table.Bars())
	if err := table.SetIndicator(data.ColK, k); err != nil {
		return err
	}
	if err := table.SetIndicator(data.ColD, d); err != nil {
		return err
	}
	return table.SetIndicator(data.ColJ, j)
}

// Signal fires entry when K crosses above D, exit when K crosses back below.
func (s *KDJCross) Signal(table *data.PriceTable, i int) Trigger {
	if i < 1 {
		return Trigger{}
	}

	k, okK := table.IndicatorAt(data.ColK, i)
	d, okD := table.IndicatorAt(data.ColD, i)
	prevK, okPK := table.IndicatorAt(data.ColK, i-1)
	prevD, okPD := table.IndicatorAt(data.ColD, i-1)
	if !okK || !okD || !okPK || !okPD {
		return Trigger{}
	}

	// Spread between K and D scaled into [0,1]; the oscillator range is 0-100.
	strength := math.Min(1.0, math.Abs(k-d)/20+0.5)

	return Trigger{
		Entry:    prevK <= prevD && k > d,
		Exit:     prevK >= prevD && k < d,
		Strength: strength,
	}
}
