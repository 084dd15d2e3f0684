package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// artifact is the on-disk document for one model slot. JSON rather than an
// opaque binary so save/load round-trips are exact and artifacts stay
// inspectable.
type artifact struct {
	Kind    string          `json:"kind"`
	Weights []float64       `json:"weights"`
	Bias    float64         `json:"bias"`
	Scaler  *StandardScaler `json:"scaler"`
}

func artifactPath(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_model.json", name))
}

// Save persists every usable slot to the artifact directory, one document per
// slot, via temp file and rename so readers never observe a partial write.
func (m *Manager) Save() error {
	if m.dir == "" {
		return fmt.Errorf("no artifact directory configured")
	}
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	for name, slot := range m.slots {
		if !slot.Usable() {
			continue
		}

		doc := artifact{Scaler: slot.Scaler}
		switch est := slot.Estimator.(type) {
		case *LogisticClassifier:
			doc.Kind = est.Kind()
			doc.Weights = est.Weights
			doc.Bias = est.Bias
		case *RidgeRegressor:
			doc.Kind = est.Kind()
			doc.Weights = est.Weights
			doc.Bias = est.Bias
		default:
			m.log.Warning("skipping %s: unknown estimator type", name)
			continue
		}

		if err := writeAtomic(artifactPath(m.dir, name), doc); err != nil {
			return fmt.Errorf("save %s model: %w", name, err)
		}
	}

	m.log.Info("model artifacts saved to %s", m.dir)
	return nil
}

// loadAll restores every slot with a readable artifact, silently skipping
// the rest. Called at construction.
func (m *Manager) loadAll() {
	for name, slot := range m.slots {
		path := artifactPath(m.dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				m.log.Warning("skipping %s artifact: %v", name, err)
			}
			continue
		}

		var doc artifact
		if err := json.Unmarshal(raw, &doc); err != nil {
			m.log.Warning("skipping corrupt %s artifact: %v", name, err)
			continue
		}
		if doc.Scaler == nil || !doc.Scaler.Fitted() {
			m.log.Warning("skipping %s artifact: scaler missing", name)
			continue
		}

		switch doc.Kind {
		case kindLogistic:
			slot.Estimator = &LogisticClassifier{Weights: doc.Weights, Bias: doc.Bias}
		case kindRidge:
			slot.Estimator = &RidgeRegressor{Weights: doc.Weights, Bias: doc.Bias}
		default:
			m.log.Warning("skipping %s artifact: unknown kind %q", name, doc.Kind)
			continue
		}
		slot.Scaler = doc.Scaler
		m.log.Info("loaded %s model from %s", name, path)
	}
}

func writeAtomic(path string, doc artifact) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
