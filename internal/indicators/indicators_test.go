package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoquant/stock-backtester/pkg/types"
)

func generateTestBars(n int, start float64) []types.Bar {
	bars := make([]types.Bar, n)
	price := start
	for i := 0; i < n; i++ {
		bars[i] = types.Bar{
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000,
		}
		price += 1
	}
	return bars
}

func TestSMA_Calculate_InsufficientData(t *testing.T) {
	sma := NewSMA(20)

	_, err := sma.Calculate([]float64{1, 2, 3})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestSMA_Calculate_ExactPeriod(t *testing.T) {
	sma := NewSMA(5)

	value, err := sma.Calculate([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 3.0, value)
}

func TestSMA_At_WindowEnds(t *testing.T) {
	sma := NewSMA(3)
	prices := []float64{2, 4, 6, 8, 10}

	_, ok := sma.At(prices, 1)
	assert.False(t, ok)

	v, ok := sma.At(prices, 2)
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = sma.At(prices, 4)
	require.True(t, ok)
	assert.Equal(t, 8.0, v)
}

func TestEMA_Series_SeededWithFirstPrice(t *testing.T) {
	ema := NewEMA(10)
	prices := []float64{100, 100, 100, 100}

	series := ema.Series(prices)
	require.Len(t, series, 4)
	for _, v := range series {
		assert.Equal(t, 100.0, v)
	}
}

func TestEMA_Series_TracksRisingPrices(t *testing.T) {
	ema := NewEMA(5)
	prices := []float64{100, 110, 120, 130, 140}

	series := ema.Series(prices)
	// EMA lags the raw price but must be monotonically rising here
	for i := 1; i < len(series); i++ {
		assert.Greater(t, series[i], series[i-1])
	}
	assert.Less(t, series[len(series)-1], 140.0)
}

func TestMACD_Series_HistogramIsLineMinusSignal(t *testing.T) {
	macd := NewDefaultMACD()
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	line, signal, hist := macd.Series(prices)
	require.Len(t, hist, 60)
	for i := range hist {
		assert.InDelta(t, line[i]-signal[i], hist[i], 1e-12)
	}
}

func TestMACD_Series_PositiveInUptrend(t *testing.T) {
	macd := NewDefaultMACD()
	prices := make([]float64, 80)
	for i := range prices {
		prices[i] = 100 * (1 + 0.01*float64(i))
	}

	_, _, hist := macd.Series(prices)
	assert.Greater(t, hist[79], 0.0)
}

func TestRSI_Calculate_InsufficientData(t *testing.T) {
	rsi := NewRSI(14)

	_, err := rsi.Calculate([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestRSI_Calculate_AllGains(t *testing.T) {
	rsi := NewRSI(14)
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)
}

func TestRSI_Calculate_AllLosses(t *testing.T) {
	rsi := NewRSI(14)
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestKDJ_Series_JFollowsIdentity(t *testing.T) {
	kdj := NewDefaultKDJ()
	bars := generateTestBars(30, 100)

	k, d, j := kdj.Series(bars)
	require.Len(t, k, 30)
	for i := range k {
		assert.InDelta(t, 3*k[i]-2*d[i], j[i], 1e-9)
	}
}

func TestKDJ_Series_HighInUptrend(t *testing.T) {
	kdj := NewDefaultKDJ()
	bars := generateTestBars(40, 100)

	k, _, _ := kdj.Series(bars)
	assert.Greater(t, k[39], 60.0)
}

func TestBollinger_At_BandsBracketMiddle(t *testing.T) {
	boll := NewBollinger(20, 2.0)
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i%5)
	}

	upper, middle, lower, ok := boll.At(prices, 39)
	require.True(t, ok)
	assert.Greater(t, upper, middle)
	assert.Less(t, lower, middle)
}

func TestBollinger_At_InsufficientData(t *testing.T) {
	boll := NewBollinger(20, 2.0)

	_, _, _, ok := boll.At([]float64{1, 2, 3}, 2)
	assert.False(t, ok)
}

func TestATR_At_FlatSeries(t *testing.T) {
	atr := NewATR(14)
	bars := make([]types.Bar, 20)
	for i := range bars {
		bars[i] = types.Bar{Open: 100, High: 100, Low: 100, Close: 100}
	}

	v, ok := atr.At(bars, 19)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestATR_At_RangeDrivesValue(t *testing.T) {
	atr := NewATR(14)
	bars := generateTestBars(30, 100)

	v, ok := atr.At(bars, 29)
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
}
