package indicators

import (
	"errors"
	"math"
)

// RSI calculates the Relative Strength Index
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Calculate computes the RSI value based on the given price slice
func (r *RSI) Calculate(prices []float64) (float64, error) {
	if len(prices) < r.period+1 {
		return 0, errors.New("insufficient data for RSI calculation")
	}

	// Average gains and losses over the trailing period
	var avgGain, avgLoss float64
	start := len(prices) - r.period
	for i := start; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += math.Abs(change)
		}
	}
	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// At computes the RSI ending at index i.
func (r *RSI) At(prices []float64, i int) (float64, bool) {
	if i+1 < r.period+1 || i >= len(prices) {
		return 0, false
	}
	v, err := r.Calculate(prices[: i+1 : i+1])
	if err != nil {
		return 0, false
	}
	return v, true
}
