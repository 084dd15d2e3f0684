package models

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoquant/stock-backtester/internal/logger"
)

// separableDataset returns samples where the first feature alone decides the
// label, so even a modest classifier learns it.
func separableDataset(n int) (X [][]float64, y []int) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		label := i % 2
		base := -1.0
		if label == 1 {
			base = 1.0
		}
		X = append(X, []float64{base + rng.Float64()*0.2, rng.Float64()})
		y = append(y, label)
	}
	return X, y
}

func TestManager_DefaultsWhenEmpty(t *testing.T) {
	m := NewManager("", logger.Discard())

	assert.Equal(t, DefaultProbability, m.PredictEntry([]float64{1, 2, 3}))
	assert.Equal(t, DefaultProbability, m.PredictExit([]float64{1, 2, 3}))
	assert.Equal(t, DefaultPositionSize, m.PredictPosition([]float64{1, 2, 3}))
	assert.False(t, m.Usable(SlotEntry))
}

func TestManager_TrainClassifier_MetricsAndUsability(t *testing.T) {
	m := NewManager("", logger.Discard())
	X, y := separableDataset(100)

	metrics, err := m.TrainClassifier(SlotEntry, X, y)
	require.NoError(t, err)

	assert.True(t, m.Usable(SlotEntry))
	assert.Greater(t, metrics.Accuracy, 0.8)
	assert.Greater(t, metrics.F1, 0.8)
}

func TestManager_TrainClassifier_UnknownSlot(t *testing.T) {
	m := NewManager("", logger.Discard())
	X, y := separableDataset(20)

	_, err := m.TrainClassifier("bogus", X, y)
	assert.Error(t, err)
}

func TestManager_TrainClassifier_TooFewSamples(t *testing.T) {
	m := NewManager("", logger.Discard())

	_, err := m.TrainClassifier(SlotEntry, [][]float64{{1}, {2}}, []int{0, 1})
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

func TestManager_PredictEntry_InRange(t *testing.T) {
	m := NewManager("", logger.Discard())
	X, y := separableDataset(100)
	_, err := m.TrainClassifier(SlotEntry, X, y)
	require.NoError(t, err)

	for _, x := range X {
		p := m.PredictEntry(x)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestManager_PredictEntry_WrongShapeDegrades(t *testing.T) {
	m := NewManager("", logger.Discard())
	X, y := separableDataset(100)
	_, err := m.TrainClassifier(SlotEntry, X, y)
	require.NoError(t, err)

	// A vector of the wrong width cannot be scaled; the neutral default wins.
	assert.Equal(t, DefaultProbability, m.PredictEntry([]float64{1, 2, 3, 4}))
}

func TestManager_TrainPositionModel_ClampedPredictions(t *testing.T) {
	m := NewManager("", logger.Discard())

	var X [][]float64
	var y []float64
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		a := rng.Float64()
		X = append(X, []float64{a, rng.Float64()})
		y = append(y, 0.05+a*0.3)
	}

	metrics, err := m.TrainPositionModel(X, y)
	require.NoError(t, err)
	assert.Less(t, metrics.RMSE, 0.1)

	for _, x := range X {
		p := m.PredictPosition(x)
		assert.GreaterOrEqual(t, p, MinPositionSize)
		assert.LessOrEqual(t, p, MaxPositionSize)
	}
}

func TestManager_SaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(dir, logger.Discard())
	X, y := separableDataset(100)
	_, err := m.TrainClassifier(SlotEntry, X, y)
	require.NoError(t, err)
	_, err = m.TrainClassifier(SlotExit, X, y)
	require.NoError(t, err)

	var posTargets []float64
	for i := range X {
		posTargets = append(posTargets, 0.1+0.01*float64(i%5))
	}
	_, err = m.TrainPositionModel(X, posTargets)
	require.NoError(t, err)

	require.NoError(t, m.Save())

	// A fresh manager over the same directory must reproduce predictions.
	fresh := NewManager(dir, logger.Discard())
	require.True(t, fresh.Usable(SlotEntry))
	require.True(t, fresh.Usable(SlotExit))
	require.True(t, fresh.Usable(SlotPosition))

	for _, x := range X[:10] {
		assert.InDelta(t, m.PredictEntry(x), fresh.PredictEntry(x), 1e-12)
		assert.InDelta(t, m.PredictExit(x), fresh.PredictExit(x), 1e-12)
		assert.InDelta(t, m.PredictPosition(x), fresh.PredictPosition(x), 1e-12)
	}
}

func TestManager_Load_SkipsCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entry_model.json"), []byte("{broken"), 0644))

	m := NewManager(dir, logger.Discard())
	assert.False(t, m.Usable(SlotEntry))
	assert.Equal(t, DefaultProbability, m.PredictEntry([]float64{1, 2}))
}

func TestManager_Save_NoDirConfigured(t *testing.T) {
	m := NewManager("", logger.Discard())
	assert.Error(t, m.Save())
}

func TestManager_ReservedSlotsStayEmpty(t *testing.T) {
	m := NewManager("", logger.Discard())
	for _, name := range []string{SlotRisk, SlotTrend, SlotVolatility} {
		assert.False(t, m.Usable(name))
	}
}
