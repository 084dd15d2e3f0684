package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evoquant/stock-backtester/pkg/types"
)

func barsFromCloses(closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

func TestDetect_NilInput(t *testing.T) {
	assert.Equal(t, RegimeUnknown, NewDetector().Detect(nil))
}

func TestDetect_InsufficientData(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	assert.Equal(t, RegimeInsufficientData, NewDetector().Detect(barsFromCloses(closes)))
}

func TestDetect_Rising(t *testing.T) {
	// Steady 1% daily climb pushes the 10-bar MA well above the 30-bar MA.
	closes := make([]float64, 40)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.01
	}
	assert.Equal(t, RegimeRising, NewDetector().Detect(barsFromCloses(closes)))
}

func TestDetect_Falling(t *testing.T) {
	closes := make([]float64, 40)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 0.99
	}
	assert.Equal(t, RegimeFalling, NewDetector().Detect(barsFromCloses(closes)))
}

func TestDetect_Ranging(t *testing.T) {
	// Tiny oscillation: no trend divergence, volatility under threshold.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + 0.1*float64(i%2)
	}
	assert.Equal(t, RegimeRanging, NewDetector().Detect(barsFromCloses(closes)))
}

func TestDetect_HighVolatility(t *testing.T) {
	// Large alternating swings keep the MAs together but volatility high.
	closes := make([]float64, 40)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 106
		}
	}
	assert.Equal(t, RegimeHighVolatility, NewDetector().Detect(barsFromCloses(closes)))
}

func TestDetect_TrendDominatesVolatility(t *testing.T) {
	// A strong trend with noisy swings must still be labelled by its trend.
	closes := make([]float64, 40)
	price := 100.0
	for i := range closes {
		noise := 1.0
		if i%2 == 0 {
			noise = -1.0
		}
		closes[i] = price + 3*noise
		price *= 1.02
	}
	assert.Equal(t, RegimeRising, NewDetector().Detect(barsFromCloses(closes)))
}

func TestDetect_Deterministic(t *testing.T) {
	closes := make([]float64, 40)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.005
	}
	bars := barsFromCloses(closes)

	d := NewDetector()
	first := d.Detect(bars)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.Detect(bars))
	}
}

func TestRegime_String(t *testing.T) {
	assert.Equal(t, "RISING", RegimeRising.String())
	assert.Equal(t, "FALLING", RegimeFalling.String())
	assert.Equal(t, "HIGH_VOLATILITY", RegimeHighVolatility.String())
	assert.Equal(t, "RANGING", RegimeRanging.String())
	assert.Equal(t, "INSUFFICIENT_DATA", RegimeInsufficientData.String())
	assert.Equal(t, "UNKNOWN", RegimeUnknown.String())
}
