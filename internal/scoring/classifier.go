package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"riskradar/internal/types"
)

// Classifier produces a trained probability estimate for one coverage.
// When no trained artifact exists for a coverage, analyses run heuristic-only.
type Classifier interface {
	// PredictProba returns the positive-class probability in 0..1.
	PredictProba(f types.PropertyFeatures, w types.WeatherReading) (float64, error)
	Name() string
	Version() string
}

// LogisticModel is a file-backed logistic regression over the canonical
// feature names. Coefficient files are exported by the offline training
// pipeline, one JSON file per coverage.
type LogisticModel struct {
	ModelName    string             `json:"model_name"`
	ModelVersion string             `json:"version"`
	Bias         float64            `json:"bias"`
	Weights      map[string]float64 `json:"weights"`

	// Means/Scales standardize inputs before applying weights. A feature
	// missing from Scales is used unscaled.
	Means  map[string]float64 `json:"means,omitempty"`
	Scales map[string]float64 `json:"scales,omitempty"`
}

// Name returns the trained model identifier.
func (m *LogisticModel) Name() string { return m.ModelName }

// Version returns the trained model version tag.
func (m *LogisticModel) Version() string { return m.ModelVersion }

// PredictProba evaluates the logistic function over the standardized features.
func (m *LogisticModel) PredictProba(f types.PropertyFeatures, w types.WeatherReading) (float64, error) {
	if len(m.Weights) == 0 {
		return 0, types.NewAppError(types.ErrCodeInternalModel, "model has no weights", nil)
	}

	z := m.Bias
	for name, weight := range m.Weights {
		x := factorValue(name, f, w)
		if mean, ok := m.Means[name]; ok {
			x -= mean
		}
		if scale, ok := m.Scales[name]; ok && scale != 0 {
			x /= scale
		}
		z += weight * x
	}

	p := 1.0 / (1.0 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, types.NewAppError(types.ErrCodeInternalModel, "model produced NaN probability", nil)
	}
	return p, nil
}

// LoadModels reads the per-coverage coefficient files from dir. Missing files
// are not an error: coverage models without an artifact run heuristic-only.
// An empty dir disables classification entirely.
func LoadModels(dir string) (map[types.CoverageType]Classifier, error) {
	models := make(map[types.CoverageType]Classifier)
	if dir == "" {
		return models, nil
	}

	for _, coverage := range types.AllCoverages() {
		path := filepath.Join(dir, string(coverage)+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading model file %s: %w", path, err)
		}

		var m LogisticModel
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing model file %s: %w", path, err)
		}
		if m.ModelName == "" {
			m.ModelName = string(coverage)
		}
		if m.ModelVersion == "" {
			m.ModelVersion = "1.0"
		}
		models[coverage] = &m
	}

	return models, nil
}
