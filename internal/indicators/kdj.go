package indicators

import "github.com/evoquant/stock-backtester/pkg/types"

// KDJ computes the stochastic K/D/J oscillator over OHLC bars.
type KDJ struct {
	period  int
	kSmooth int
	dSmooth int
}

// NewKDJ creates a KDJ instance; the conventional configuration is 9/3/3.
func NewKDJ(period, kSmooth, dSmooth int) *KDJ {
	return &KDJ{period: period, kSmooth: kSmooth, dSmooth: dSmooth}
}

// NewDefaultKDJ returns the standard 9/3/3 configuration.
func NewDefaultKDJ() *KDJ {
	return NewKDJ(9, 3, 3)
}

// Series computes the full K, D and J series. Values before the first full
// period are seeded at the neutral 50.
func (o *KDJ) Series(bars []types.Bar) (k, d, j []float64) {
	n := len(bars)
	k = make([]float64, n)
	d = make([]float64, n)
	j = make([]float64, n)

	prevK, prevD := 50.0, 50.0
	for i := 0; i < n; i++ {
		start := i - o.period + 1
		if start < 0 {
			start = 0
		}

		highest := bars[start].High
		lowest := bars[start].Low
		for _, b := range bars[start+1 : i+1] {
			if b.High > highest {
				highest = b.High
			}
			if b.Low < lowest {
				lowest = b.Low
			}
		}

		rsv := 50.0
		if highest > lowest {
			rsv = (bars[i].Close - lowest) / (highest - lowest) * 100
		}

		k[i] = (prevK*float64(o.kSmooth-1) + rsv) / float64(o.kSmooth)
		d[i] = (prevD*float64(o.dSmooth-1) + k[i]) / float64(o.dSmooth)
		j[i] = 3*k[i] - 2*d[i]

		prevK, prevD = k[i], d[i]
	}
	return k, d, j
}
