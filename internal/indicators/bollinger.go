package indicators

import "math"

// Bollinger computes Bollinger Bands around a simple moving average.
type Bollinger struct {
	period int
	stdDev float64
}

// NewBollinger creates a Bollinger instance; the usual configuration is 20/2.0.
func NewBollinger(period int, stdDev float64) *Bollinger {
	return &Bollinger{period: period, stdDev: stdDev}
}

// At computes the upper, middle and lower bands ending at index i.
func (b *Bollinger) At(prices []float64, i int) (upper, middle, lower float64, ok bool) {
	if i+1 < b.period || i >= len(prices) {
		return 0, 0, 0, false
	}

	window := prices[i+1-b.period : i+1]
	sum := 0.0
	for _, p := range window {
		sum += p
	}
	middle = sum / float64(b.period)

	variance := 0.0
	for _, p := range window {
		diff := p - middle
		variance += diff * diff
	}
	sd := math.Sqrt(variance / float64(b.period))

	return middle + b.stdDev*sd, middle, middle - b.stdDev*sd, true
}
