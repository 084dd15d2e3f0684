package backtest

import (
	"github.com/evoquant/stock-backtester/internal/features"
	"github.com/evoquant/stock-backtester/internal/models"
)

// SignalEvaluator gates rule-triggered signals with model probabilities.
// The design averages rule strength with the model's estimate and then
// thresholds, so a strong rule can carry a neutral model and vice versa,
// while weak combined conviction is rejected outright.
type SignalEvaluator struct {
	models *models.Manager
	params *AdaptiveParams
}

// NewSignalEvaluator creates an evaluator over the given model registry and
// adaptive parameters.
func NewSignalEvaluator(mm *models.Manager, params *AdaptiveParams) *SignalEvaluator {
	return &SignalEvaluator{models: mm, params: params}
}

// EvaluateEntry combines the rule strength with the entry model. When the
// model slot is unusable or the feature vector is too small for inference,
// the rule strength passes through unchanged.
func (e *SignalEvaluator) EvaluateEntry(v *features.Vector, ruleStrength float64) float64 {
	return e.evaluate(models.SlotEntry, e.params.EntryThreshold, v, ruleStrength,
		func(x []float64) float64 { return e.models.PredictEntry(x) })
}

// EvaluateExit is the symmetric gate for exit signals.
func (e *SignalEvaluator) EvaluateExit(v *features.Vector, ruleStrength float64) float64 {
	return e.evaluate(models.SlotExit, e.params.ExitThreshold, v, ruleStrength,
		func(x []float64) float64 { return e.models.PredictExit(x) })
}

func (e *SignalEvaluator) evaluate(slot string, threshold float64, v *features.Vector, ruleStrength float64, predict func([]float64) float64) float64 {
	if e.models == nil || !e.models.Usable(slot) || !v.ModelUsable() {
		return ruleStrength
	}

	combined := (ruleStrength + predict(v.Values())) / 2
	if combined < threshold {
		return 0
	}
	return combined
}
