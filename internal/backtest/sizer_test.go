package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoquant/stock-backtester/internal/features"
	"github.com/evoquant/stock-backtester/internal/logger"
	"github.com/evoquant/stock-backtester/internal/models"
)

func smallVector() *features.Vector {
	v := features.NewVector()
	v.Set("close", 100)
	v.Set("volume", 1000)
	return v
}

func fullVector() *features.Vector {
	v := features.NewVector()
	for _, name := range []string{"close", "open", "high", "low", "volume",
		"rsi", "volume_ratio", "price_trend", "volatility", "atr", "macd"} {
		v.Set(name, 1.0)
	}
	return v
}

// TestPositionSizer_Bound sweeps signal strengths and price/stop pairs and
// asserts the returned fraction never leaves [0, maxPositionRatio].
func TestPositionSizer_Bound(t *testing.T) {
	sizer := NewPositionSizer(nil, NewAdaptiveParams(), DefaultMaxPositionRatio)

	signals := []float64{0, 0.1, 0.25, 0.5, 0.75, 1.0}
	prices := []float64{1, 10, 100, 5000}
	stops := []float64{-50, 0, 0.5, 0.99, 1.0, 95, 99.9, 101}

	for _, signal := range signals {
		for _, price := range prices {
			for _, stop := range stops {
				ratio := sizer.Size(smallVector(), signal, price, stop, 100000)
				assert.GreaterOrEqual(t, ratio, 0.0, "signal=%v price=%v stop=%v", signal, price, stop)
				assert.LessOrEqual(t, ratio, DefaultMaxPositionRatio, "signal=%v price=%v stop=%v", signal, price, stop)
			}
		}
	}
}

func TestPositionSizer_FallbackRiskParity(t *testing.T) {
	sizer := NewPositionSizer(nil, NewAdaptiveParams(), DefaultMaxPositionRatio)

	// 1% account risk at full conviction, 5% stop distance: ratio = 0.01/0.05.
	ratio := sizer.Size(smallVector(), 1.0, 100, 95, 100000)
	assert.InDelta(t, 0.2, ratio, 1e-9)

	ratio = sizer.Size(smallVector(), 0.5, 100, 95, 100000)
	assert.InDelta(t, 0.1, ratio, 1e-9)
}

func TestPositionSizer_InvalidStopFallsBackToCap(t *testing.T) {
	sizer := NewPositionSizer(nil, NewAdaptiveParams(), DefaultMaxPositionRatio)

	// Stop at or above price: cap scaled by conviction.
	ratio := sizer.Size(smallVector(), 0.5, 100, 100, 100000)
	assert.InDelta(t, 0.1, ratio, 1e-9)
}

func TestPositionSizer_ModelPathScalesWithSignal(t *testing.T) {
	mm := trainedPositionManager(t)
	params := NewAdaptiveParams()
	sizer := NewPositionSizer(mm, params, DefaultMaxPositionRatio)

	v := fullVector()
	full := sizer.Size(v, 1.0, 100, 95, 100000)
	half := sizer.Size(v, 0.5, 100, 95, 100000)

	assert.Greater(t, full, 0.0)
	assert.LessOrEqual(t, half, full)
	assert.LessOrEqual(t, full, DefaultMaxPositionRatio)
	if full < DefaultMaxPositionRatio {
		assert.InDelta(t, full/2, half, 1e-9)
	}
}

func TestPositionSizer_SmallVectorForcesFallback(t *testing.T) {
	mm := trainedPositionManager(t)
	sizer := NewPositionSizer(mm, NewAdaptiveParams(), DefaultMaxPositionRatio)

	// A vector below the model-use minimum takes the risk-parity path even
	// with a trained position model.
	ratio := sizer.Size(smallVector(), 1.0, 100, 95, 100000)
	assert.InDelta(t, 0.2, ratio, 1e-9)
}

// trainedPositionManager trains a position model on the full vector layout
// so the model path is exercised.
func trainedPositionManager(t *testing.T) *models.Manager {
	t.Helper()
	mm := models.NewManager("", logger.Discard())

	width := fullVector().Len()
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		row := make([]float64, width)
		for j := range row {
			row[j] = float64(i%7) + float64(j)*0.1
		}
		X = append(X, row)
		y = append(y, 0.1+0.002*float64(i%5))
	}
	_, err := mm.TrainPositionModel(X, y)
	require.NoError(t, err)
	return mm
}
