package regime

import (
	"math"

	"github.com/evoquant/stock-backtester/pkg/types"
)

// Regime classifies recent price/volatility behavior of a symbol.
type Regime int

const (
	RegimeUnknown Regime = iota
	RegimeInsufficientData
	RegimeRising
	RegimeFalling
	RegimeHighVolatility
	RegimeRanging
)

func (r Regime) String() string {
	switch r {
	case RegimeRising:
		return "RISING"
	case RegimeFalling:
		return "FALLING"
	case RegimeHighVolatility:
		return "HIGH_VOLATILITY"
	case RegimeRanging:
		return "RANGING"
	case RegimeInsufficientData:
		return "INSUFFICIENT_DATA"
	default:
		return "UNKNOWN"
	}
}

const (
	shortWindow      = 10
	longWindow       = 30
	trendMargin      = 0.02
	volThreshold     = 0.02
	volatilityWindow = 10
)

// Detector classifies a trailing window of bars into a market regime.
// Detect is a pure function of its input window.
type Detector struct{}

// NewDetector creates a regime detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect classifies the trailing window. Requires at least 30 bars. Trend
// dominance is checked before volatility: a strongly trending market is
// labelled by its trend even when volatile.
func (d *Detector) Detect(bars []types.Bar) Regime {
	if bars == nil {
		return RegimeUnknown
	}
	if len(bars) < longWindow {
		return RegimeInsufficientData
	}

	shortMA := trailingMean(bars, shortWindow)
	longMA := trailingMean(bars, longWindow)
	if longMA == 0 {
		return RegimeUnknown
	}

	switch {
	case shortMA > longMA && shortMA/longMA-1 > trendMargin:
		return RegimeRising
	case shortMA < longMA && 1-shortMA/longMA > trendMargin:
		return RegimeFalling
	case trailingVolatility(bars, volatilityWindow) > volThreshold:
		return RegimeHighVolatility
	default:
		return RegimeRanging
	}
}

func trailingMean(bars []types.Bar, window int) float64 {
	sum := 0.0
	for _, b := range bars[len(bars)-window:] {
		sum += b.Close
	}
	return sum / float64(window)
}

// trailingVolatility is the standard deviation of the last window one-bar
// returns.
func trailingVolatility(bars []types.Bar, window int) float64 {
	start := len(bars) - window
	returns := make([]float64, 0, window)
	for i := start; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev <= 0 {
			return 0
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
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
	return math.Sqrt(variance / float64(len(returns)))
}
