package features

import (
	"math"

	"github.com/evoquant/stock-backtester/internal/indicators"
	"github.com/evoquant/stock-backtester/pkg/data"
)

// Neutral defaults substituted when a feature cannot be computed cleanly.
// One bad bar must not abort a multi-year simulation.
const (
	neutralRSI   = 50.0
	neutralRatio = 1.0
)

const volatilityWindow = 10

// Extractor derives a fixed-shape feature vector from a price table at a
// given bar. It never returns an error: numeric failures degrade individual
// features to neutral defaults and set the vector's Degraded flag.
type Extractor struct {
	atr *indicators.ATR
}

// NewExtractor creates a feature extractor.
func NewExtractor() *Extractor {
	return &Extractor{atr: indicators.NewATR(14)}
}

// Extract builds the feature vector at index i; i == -1 means the last bar.
// An empty vector means the bar cannot be used at all.
func (e *Extractor) Extract(table *data.PriceTable, i int) *Vector {
	v := NewVector()
	if table == nil || table.Len() == 0 {
		return v
	}
	if i < 0 || i >= table.Len() {
		i = table.Len() - 1
	}

	bar := table.Bar(i)

	v.Set("close", bar.Close)
	v.Set("open", bar.Open)
	v.Set("high", bar.High)
	v.Set("low", bar.Low)
	v.Set("volume", bar.Volume)

	// Indicator columns carried by the table, when present.
	for _, name := range []string{
		data.ColMA5, data.ColMA10, data.ColMA20, data.ColMA60,
		data.ColMACD, data.ColMACDSignal, data.ColMACDHist,
		data.ColK, data.ColD, data.ColJ,
		data.ColRSI,
		data.ColBollUpper, data.ColBollMiddle, data.ColBollLower,
	} {
		if value, ok := table.IndicatorAt(name, i); ok {
			v.Set(name, value)
		}
	}

	// RSI computed locally when the table does not carry it.
	if _, ok := v.Get(data.ColRSI); !ok {
		closes := closesUpTo(table, i)
		if rsi, err := indicators.NewRSI(14).Calculate(closes); err == nil {
			v.Set(data.ColRSI, rsi)
		} else if i >= 1 {
			v.Set(data.ColRSI, neutralRSI)
			v.Degraded = true
		}
	}

	e.addVolumeRatio(table, i, v)
	e.addPriceTrend(table, i, v)
	e.addVolatility(table, i, v)

	if atr, ok := e.atr.At(table.Bars(), i); ok {
		v.Set("atr", atr)
	}

	return v
}

// addVolumeRatio sets volume relative to its trailing 5-bar average.
func (e *Extractor) addVolumeRatio(table *data.PriceTable, i int, v *Vector) {
	const window = 5
	if i+1 < window {
		return
	}

	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += table.Bar(j).Volume
	}
	avg := sum / window
	if avg <= 0 || math.IsNaN(avg) {
		v.Set("volume_ratio", neutralRatio)
		v.Degraded = true
		return
	}
	v.Set("volume_ratio", table.Bar(i).Volume/avg)
}

// addPriceTrend sets the one-bar close-to-close return. Needs a previous bar.
func (e *Extractor) addPriceTrend(table *data.PriceTable, i int, v *Vector) {
	if i < 1 {
		return
	}
	prev := table.Close(i - 1)
	if prev <= 0 || math.IsNaN(prev) {
		v.Set("price_trend", 0)
		v.Degraded = true
		return
	}
	v.Set("price_trend", (table.Close(i)-prev)/prev)
}

// addVolatility sets the trailing 10-bar return standard deviation.
func (e *Extractor) addVolatility(table *data.PriceTable, i int, v *Vector) {
	if i < volatilityWindow {
		return
	}

	returns := make([]float64, 0, volatilityWindow)
	for j := i - volatilityWindow + 1; j <= i; j++ {
		prev := table.Close(j - 1)
		if prev <= 0 {
			v.Set("volatility", 0)
			v.Degraded = true
			return
		}
		returns = append(returns, (table.Close(j)-prev)/prev)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	sd := math.Sqrt(variance / float64(len(returns)))
	if math.IsNaN(sd) {
		sd = 0
		v.Degraded = true
	}
	v.Set("volatility", sd)
}

func closesUpTo(table *data.PriceTable, i int) []float64 {
	closes := make([]float64, i+1)
	for j := 0; j <= i; j++ {
		closes[j] = table.Close(j)
	}
	return closes
}
