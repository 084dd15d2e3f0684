package indicators

import (
	"math"

	"github.com/evoquant/stock-backtester/pkg/types"
)

// ATR computes the Average True Range.
type ATR struct {
	period int
}

// NewATR creates an ATR instance; 14 is the conventional period.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// At computes the ATR ending at index i as a simple average of the trailing
// true ranges. Requires period+1 bars so every true range has a previous close.
func (a *ATR) At(bars []types.Bar, i int) (float64, bool) {
	if i < a.period || i >= len(bars) {
		return 0, false
	}

	sum := 0.0
	for j := i - a.period + 1; j <= i; j++ {
		tr := bars[j].High - bars[j].Low
		if hc := math.Abs(bars[j].High - bars[j-1].Close); hc > tr {
			tr = hc
		}
		if lc := math.Abs(bars[j].Low - bars[j-1].Close); lc > tr {
			tr = lc
		}
		sum += tr
	}
	return sum / float64(a.period), true
}
