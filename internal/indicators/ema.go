package indicators

// EMA calculates the Exponential Moving Average
type EMA struct {
	period int
}

// NewEMA creates a new EMA instance with the given period
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

// Series computes the EMA for every index, seeded with the first price.
func (e *EMA) Series(prices []float64) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}

	alpha := 2.0 / float64(e.period+1)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Calculate computes the latest EMA value
func (e *EMA) Calculate(prices []float64) float64 {
	series := e.Series(prices)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
