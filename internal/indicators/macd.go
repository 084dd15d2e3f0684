package indicators

// MACD computes the Moving Average Convergence Divergence oscillator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD instance with specified fast, slow, and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// NewDefaultMACD returns the standard 12/26/9 configuration.
func NewDefaultMACD() *MACD {
	return NewMACD(12, 26, 9)
}

// Series computes the full MACD line, signal line and histogram series.
func (m *MACD) Series(prices []float64) (macdLine, signalLine, histogram []float64) {
	fast := NewEMA(m.fastPeriod).Series(prices)
	slow := NewEMA(m.slowPeriod).Series(prices)

	macdLine = make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = fast[i] - slow[i]
	}

	signalLine = NewEMA(m.signalPeriod).Series(macdLine)

	histogram = make([]float64, len(prices))
	for i := range prices {
		histogram[i] = macdLine[i] - signalLine[i]
	}
	return macdLine, signalLine, histogram
}

// Calculate computes the latest MACD line, signal line, and histogram values
func (m *MACD) Calculate(prices []float64) (macdLine, signalLine, histogram float64) {
	if len(prices) == 0 {
		return 0, 0, 0
	}
	macdSeries, signalSeries, histSeries := m.Series(prices)
	last := len(prices) - 1
	return macdSeries[last], signalSeries[last], histSeries[last]
}
