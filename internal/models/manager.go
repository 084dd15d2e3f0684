package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/evoquant/stock-backtester/internal/logger"
)

// Slot names. Risk, trend and volatility are reserved: present in the
// registry but never trained by the built-in pipelines.
const (
	SlotEntry      = "entry"
	SlotExit       = "exit"
	SlotPosition   = "position"
	SlotRisk       = "risk"
	SlotTrend      = "trend"
	SlotVolatility = "volatility"
)

// Neutral defaults returned whenever a slot is unusable or inference fails.
const (
	DefaultProbability  = 0.5
	DefaultPositionSize = 0.1

	MinPositionSize = 0.01
	MaxPositionSize = 0.5
)

const (
	trainSeed     = 42
	testFraction  = 0.2
	logitEpochs   = 200
	logitLearning = 0.05
	ridgeLambda   = 1.0
)

var slotNames = []string{SlotEntry, SlotExit, SlotPosition, SlotRisk, SlotTrend, SlotVolatility}

// ErrTooFewSamples is returned when a training set cannot be split 80/20.
var ErrTooFewSamples = errors.New("too few samples to train")

// Slot pairs an estimator with the scaler it was fitted alongside.
type Slot struct {
	Estimator Estimator
	Scaler    *StandardScaler
}

// Usable reports whether the slot can serve inference. Both halves must be
// present; a model without its scaler is as useless as no model.
func (s *Slot) Usable() bool {
	return s != nil && s.Estimator != nil && s.Scaler.Fitted()
}

// ClassifierMetrics are the held-out evaluation results of a trained
// classifier slot.
type ClassifierMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// RegressionMetrics are the held-out evaluation results of the position slot.
type RegressionMetrics struct {
	RMSE float64 `json:"rmse"`
}

// Manager owns the named registry of predictive models. It degrades to fixed
// neutral defaults whenever a slot is absent, so a backtest always runs:
// rule-only with no models, with offline-trained artifacts, or learning and
// predicting within one run.
type Manager struct {
	dir   string
	log   *logger.Logger
	slots map[string]*Slot
}

// NewManager creates a manager rooted at the given artifact directory and
// attempts to load any persisted slots. Missing or unreadable artifacts are
// logged and skipped, never returned as errors.
func NewManager(dir string, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	m := &Manager{dir: dir, log: log, slots: make(map[string]*Slot, len(slotNames))}
	for _, name := range slotNames {
		m.slots[name] = &Slot{}
	}
	if dir != "" {
		m.loadAll()
	}
	return m
}

// Usable reports whether the named slot can serve inference.
func (m *Manager) Usable(name string) bool {
	return m != nil && m.slots[name].Usable()
}

// TrainClassifier fits the scaler and a logistic classifier for the named
// slot on an 80/20 split and returns held-out metrics. Nothing is persisted
// until Save is called.
func (m *Manager) TrainClassifier(name string, X [][]float64, y []int) (*ClassifierMetrics, error) {
	slot, ok := m.slots[name]
	if !ok {
		return nil, fmt.Errorf("unknown model slot %q", name)
	}
	if len(X) != len(y) {
		return nil, errors.New("sample and label counts differ")
	}

	labels := make([]float64, len(y))
	for i, v := range y {
		if v != 0 {
			labels[i] = 1
		}
	}

	scaler := &StandardScaler{}
	trainX, trainY, testX, testY, err := fitSplit(scaler, X, labels)
	if err != nil {
		return nil, err
	}

	model := trainLogistic(trainX, trainY, logitEpochs, logitLearning, trainSeed)
	metrics := evaluateClassifier(model, testX, testY)

	slot.Estimator = model
	slot.Scaler = scaler
	m.log.Info("trained %s model: accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f",
		name, metrics.Accuracy, metrics.Precision, metrics.Recall, metrics.F1)
	return metrics, nil
}

// TrainPositionModel fits the scaler and the position-size regressor on an
// 80/20 split and returns the held-out RMSE.
func (m *Manager) TrainPositionModel(X [][]float64, y []float64) (*RegressionMetrics, error) {
	if len(X) != len(y) {
		return nil, errors.New("sample and target counts differ")
	}

	scaler := &StandardScaler{}
	trainX, trainY, testX, testY, err := fitSplit(scaler, X, y)
	if err != nil {
		return nil, err
	}

	model, err := trainRidge(trainX, trainY, ridgeLambda)
	if err != nil {
		return nil, fmt.Errorf("fit position model: %w", err)
	}

	rows, _ := testX.Dims()
	sumSq := 0.0
	for i := 0; i < rows; i++ {
		pred, _ := model.Predict(mat.Row(nil, i, testX))
		diff := pred - testY[i]
		sumSq += diff * diff
	}
	metrics := &RegressionMetrics{RMSE: math.Sqrt(sumSq / float64(rows))}

	slot := m.slots[SlotPosition]
	slot.Estimator = model
	slot.Scaler = scaler
	m.log.Info("trained position model: rmse=%.4f", metrics.RMSE)
	return metrics, nil
}

// PredictEntry returns the entry probability for scaled features, or the
// neutral 0.5 when the slot is unusable or inference fails.
func (m *Manager) PredictEntry(features []float64) float64 {
	return m.predictProbability(SlotEntry, features)
}

// PredictExit returns the exit probability, degrading like PredictEntry.
func (m *Manager) PredictExit(features []float64) float64 {
	return m.predictProbability(SlotExit, features)
}

// PredictPosition returns the suggested position ratio clamped to
// [0.01, 0.5], or the fixed 0.1 default when the slot is unusable.
func (m *Manager) PredictPosition(features []float64) float64 {
	slot := m.slots[SlotPosition]
	if !slot.Usable() {
		return DefaultPositionSize
	}

	scaled, err := slot.Scaler.Transform(features)
	if err != nil {
		m.log.Error("position prediction degraded: %v", err)
		return DefaultPositionSize
	}
	ratio, err := slot.Estimator.Predict(scaled)
	if err != nil {
		m.log.Error("position prediction degraded: %v", err)
		return DefaultPositionSize
	}
	return math.Max(MinPositionSize, math.Min(MaxPositionSize, ratio))
}

func (m *Manager) predictProbability(name string, features []float64) float64 {
	slot := m.slots[name]
	if !slot.Usable() {
		return DefaultProbability
	}

	scaled, err := slot.Scaler.Transform(features)
	if err != nil {
		m.log.Error("%s prediction degraded: %v", name, err)
		return DefaultProbability
	}
	p, err := slot.Estimator.Predict(scaled)
	if err != nil {
		m.log.Error("%s prediction degraded: %v", name, err)
		return DefaultProbability
	}
	return math.Max(0, math.Min(1, p))
}

// fitSplit fits the scaler on all samples, then splits 80/20 with a seeded
// shuffle. Deterministic across runs.
func fitSplit(scaler *StandardScaler, X [][]float64, y []float64) (trainX *mat.Dense, trainY []float64, testX *mat.Dense, testY []float64, err error) {
	rows := len(X)
	if rows < 5 {
		return nil, nil, nil, nil, ErrTooFewSamples
	}
	cols := len(X[0])
	for _, row := range X {
		if len(row) != cols {
			return nil, nil, nil, nil, errors.New("ragged feature matrix")
		}
	}

	raw := mat.NewDense(rows, cols, nil)
	for i, row := range X {
		raw.SetRow(i, row)
	}
	scaler.Fit(raw)
	scaled, err := scaler.TransformMatrix(raw)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	rng := rand.New(rand.NewSource(trainSeed))
	order := rng.Perm(rows)
	testCount := int(float64(rows) * testFraction)
	if testCount < 1 {
		testCount = 1
	}
	trainCount := rows - testCount

	trainX = mat.NewDense(trainCount, cols, nil)
	testX = mat.NewDense(testCount, cols, nil)
	trainY = make([]float64, trainCount)
	testY = make([]float64, testCount)

	for k, idx := range order {
		if k < trainCount {
			trainX.SetRow(k, mat.Row(nil, idx, scaled))
			trainY[k] = y[idx]
		} else {
			testX.SetRow(k-trainCount, mat.Row(nil, idx, scaled))
			testY[k-trainCount] = y[idx]
		}
	}
	return trainX, trainY, testX, testY, nil
}

func evaluateClassifier(model *LogisticClassifier, X *mat.Dense, y []float64) *ClassifierMetrics {
	rows, _ := X.Dims()
	var tp, fp, tn, fn float64
	for i := 0; i < rows; i++ {
		p, _ := model.Predict(mat.Row(nil, i, X))
		predicted := p >= 0.5
		actual := y[i] >= 0.5
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && !actual:
			tn++
		default:
			fn++
		}
	}

	metrics := &ClassifierMetrics{}
	if total := tp + fp + tn + fn; total > 0 {
		metrics.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		metrics.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		metrics.Recall = tp / (tp + fn)
	}
	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}
	return metrics
}
