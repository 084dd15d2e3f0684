package backtest

import (
	"fmt"

	"github.com/evoquant/stock-backtester/internal/features"
	"github.com/evoquant/stock-backtester/internal/logger"
	"github.com/evoquant/stock-backtester/internal/models"
	"github.com/evoquant/stock-backtester/pkg/data"
)

const (
	// learnHorizon is how many bars ahead outcomes are measured when
	// labelling training samples.
	learnHorizon = 5

	// learnReturnThreshold separates meaningful moves from noise when
	// labelling entries and exits.
	learnReturnThreshold = 0.02
)

// Trainer builds supervised training sets out of a historical table and
// fits the entry, exit and position slots. Entry labels mark bars whose
// forward return cleared the threshold, exit labels the mirror image, and
// position targets scale the neutral size with the realized move.
type Trainer struct {
	models    *models.Manager
	extractor *features.Extractor
	log       *logger.Logger
}

// NewTrainer creates a trainer over the given model registry.
func NewTrainer(mm *models.Manager, log *logger.Logger) *Trainer {
	if log == nil {
		log = logger.Discard()
	}
	return &Trainer{models: mm, extractor: features.NewExtractor(), log: log}
}

// TrainFromTable fits the entry, exit and position slots from the table's
// history past the warm-up window. Models are held in memory; the caller
// decides whether to persist them with Save.
func (tr *Trainer) TrainFromTable(table *data.PriceTable, warmup int) error {
	if warmup <= 0 {
		warmup = DefaultWarmupBars
	}

	var X [][]float64
	var entryLabels, exitLabels []int
	var positionTargets []float64

	width := 0
	for i := warmup; i < table.Len()-learnHorizon; i++ {
		v := tr.extractor.Extract(table, i)
		if !v.ModelUsable() {
			continue
		}
		sample := v.Values()

		// The scaler needs a fixed shape; drop samples whose feature set
		// differs from the first accepted one (early bars missing slow
		// indicators).
		if width == 0 {
			width = len(sample)
		}
		if len(sample) != width {
			continue
		}

		price := table.Close(i)
		if price <= 0 {
			continue
		}
		forward := (table.Close(i+learnHorizon) - price) / price

		X = append(X, sample)
		entryLabels = append(entryLabels, boolLabel(forward > learnReturnThreshold))
		exitLabels = append(exitLabels, boolLabel(forward < -learnReturnThreshold))
		positionTargets = append(positionTargets, clampPosition(models.DefaultPositionSize+forward*2))
	}

	if len(X) < 20 {
		return fmt.Errorf("only %d usable training samples for %s", len(X), table.Symbol())
	}

	if _, err := tr.models.TrainClassifier(models.SlotEntry, X, entryLabels); err != nil {
		return fmt.Errorf("train entry model: %w", err)
	}
	if _, err := tr.models.TrainClassifier(models.SlotExit, X, exitLabels); err != nil {
		return fmt.Errorf("train exit model: %w", err)
	}
	if _, err := tr.models.TrainPositionModel(X, positionTargets); err != nil {
		return fmt.Errorf("train position model: %w", err)
	}

	tr.log.Info("trained models for %s on %d samples", table.Symbol(), len(X))
	return nil
}

func boolLabel(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clampPosition(v float64) float64 {
	if v < models.MinPositionSize {
		return models.MinPositionSize
	}
	if v > models.MaxPositionSize {
		return models.MaxPositionSize
	}
	return v
}
