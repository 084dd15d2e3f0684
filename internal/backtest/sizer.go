package backtest

import (
	"math"

	"github.com/evoquant/stock-backtester/internal/features"
	"github.com/evoquant/stock-backtester/internal/models"
)

// DefaultMaxPositionRatio caps the fraction of capital a single position
// may commit.
const DefaultMaxPositionRatio = 0.2

// accountRiskFraction is the share of capital put at risk per trade on the
// fallback path.
const accountRiskFraction = 0.01

// PositionSizer converts a signal into a bounded fraction of capital,
// either by a risk-parity fallback or by the position model adjusted with
// the adaptive scaling factor. The result never leaves
// [0, maxPositionRatio].
type PositionSizer struct {
	models   *models.Manager
	params   *AdaptiveParams
	maxRatio float64
}

// NewPositionSizer creates a sizer over the given model registry and
// adaptive parameters.
func NewPositionSizer(mm *models.Manager, params *AdaptiveParams, maxRatio float64) *PositionSizer {
	if maxRatio <= 0 {
		maxRatio = DefaultMaxPositionRatio
	}
	return &PositionSizer{models: mm, params: params, maxRatio: maxRatio}
}

// MaxRatio returns the configured position cap.
func (s *PositionSizer) MaxRatio() float64 { return s.maxRatio }

// Size returns the fraction of capital to commit for a trade entered at
// price with the given stop-loss.
func (s *PositionSizer) Size(v *features.Vector, signalStrength, price, stopLoss, capital float64) float64 {
	if s.models == nil || !s.models.Usable(models.SlotPosition) || !v.ModelUsable() {
		return s.clamp(s.fallbackRatio(signalStrength, price, stopLoss, capital))
	}

	ratio := s.models.PredictPosition(v.Values())
	return s.clamp(ratio * signalStrength * s.params.PositionSizeFactor)
}

// fallbackRatio risks a fixed 1% of capital, scaled by conviction, against
// the entry-to-stop distance.
func (s *PositionSizer) fallbackRatio(signalStrength, price, stopLoss, capital float64) float64 {
	riskPerUnit := price - stopLoss
	if riskPerUnit <= 0 || capital <= 0 || price <= 0 {
		return s.maxRatio * signalStrength
	}

	adjustedRisk := capital * accountRiskFraction * signalStrength
	return adjustedRisk / (capital * riskPerUnit / price)
}

func (s *PositionSizer) clamp(ratio float64) float64 {
	return math.Max(0, math.Min(s.maxRatio, ratio))
}
