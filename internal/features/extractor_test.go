package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoquant/stock-backtester/pkg/data"
	"github.com/evoquant/stock-backtester/pkg/types"
)

func testTable(t *testing.T, n int) *data.PriceTable {
	t.Helper()
	bars := make([]types.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		bars[i] = types.Bar{
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000,
		}
		price *= 1.01
	}
	return data.NewPriceTableFromBars("TEST", bars)
}

func TestExtract_EmptyTable(t *testing.T) {
	v := NewExtractor().Extract(data.NewPriceTableFromBars("X", nil), 0)
	assert.Equal(t, 0, v.Len())
	assert.False(t, v.ModelUsable())
}

func TestExtract_BasePrices(t *testing.T) {
	table := testTable(t, 30)
	v := NewExtractor().Extract(table, 29)

	close, ok := v.Get("close")
	require.True(t, ok)
	assert.InDelta(t, table.Close(29), close, 1e-9)

	for _, name := range []string{"open", "high", "low", "volume"} {
		_, ok := v.Get(name)
		assert.True(t, ok, name)
	}
}

func TestExtract_NegativeIndexMeansLastBar(t *testing.T) {
	table := testTable(t, 30)

	last := NewExtractor().Extract(table, -1)
	explicit := NewExtractor().Extract(table, 29)

	assert.Equal(t, explicit.Values(), last.Values())
}

func TestExtract_TrailingFeaturesNeedHistory(t *testing.T) {
	table := testTable(t, 30)

	early := NewExtractor().Extract(table, 0)
	_, ok := early.Get("price_trend")
	assert.False(t, ok)
	_, ok = early.Get("volatility")
	assert.False(t, ok)

	late := NewExtractor().Extract(table, 29)
	trend, ok := late.Get("price_trend")
	require.True(t, ok)
	assert.InDelta(t, 0.01, trend, 1e-6)

	_, ok = late.Get("volatility")
	assert.True(t, ok)
	_, ok = late.Get("atr")
	assert.True(t, ok)
}

func TestExtract_IndicatorColumnsCarriedThrough(t *testing.T) {
	table := testTable(t, 30)
	hist := make([]float64, 30)
	hist[29] = 0.5
	require.NoError(t, table.SetIndicator(data.ColMACDHist, hist))

	v := NewExtractor().Extract(table, 29)
	got, ok := v.Get(data.ColMACDHist)
	require.True(t, ok)
	assert.Equal(t, 0.5, got)
}

func TestExtract_DegradesOnZeroPrevClose(t *testing.T) {
	bars := []types.Bar{
		{Close: 0, Open: 0, High: 0, Low: 0, Volume: 0},
		{Close: 100, Open: 100, High: 101, Low: 99, Volume: 1000},
	}
	table := data.NewPriceTableFromBars("BAD", bars)

	v := NewExtractor().Extract(table, 1)
	trend, ok := v.Get("price_trend")
	require.True(t, ok)
	assert.Equal(t, 0.0, trend)
	assert.True(t, v.Degraded)
}

func TestExtract_ZeroVolumeDegradesRatio(t *testing.T) {
	bars := make([]types.Bar, 10)
	for i := range bars {
		bars[i] = types.Bar{Close: 100, Open: 100, High: 101, Low: 99, Volume: 0}
	}
	table := data.NewPriceTableFromBars("NOVOL", bars)

	v := NewExtractor().Extract(table, 9)
	ratio, ok := v.Get("volume_ratio")
	require.True(t, ok)
	assert.Equal(t, 1.0, ratio)
	assert.True(t, v.Degraded)
}

func TestExtract_FullVectorIsModelUsable(t *testing.T) {
	table := testTable(t, 80)
	v := NewExtractor().Extract(table, 79)

	assert.GreaterOrEqual(t, v.Len(), MinModelFeatures)
	assert.True(t, v.ModelUsable())
}

func TestVector_ValuesFollowInsertionOrder(t *testing.T) {
	v := NewVector()
	v.Set("b", 2)
	v.Set("a", 1)
	v.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, v.Names())
	assert.Equal(t, []float64{3, 1}, v.Values())
}
