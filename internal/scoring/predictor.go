package scoring

import (
	"time"

	"riskradar/internal/types"
)

// heuristicVersion tags snapshots produced without a trained classifier.
const heuristicVersion = "heuristic-1.0"

// defaultConfidence is the model confidence attached to every completed
// analysis; the estimators do not produce a per-prediction figure.
const defaultConfidence = 0.8

// predictCoverage scores one coverage by blending the heuristic model with
// the trained classifier when one is available. A classifier failure degrades
// to heuristic-only rather than failing the coverage.
func predictCoverage(
	model types.CoverageModel,
	clf Classifier,
	f types.PropertyFeatures,
	w types.WeatherReading,
	month time.Month,
) types.CoverageRiskResult {
	heuristic, factors := model.Score(f, w)

	probability := heuristic
	var modelPrediction *float64
	modelName := string(model.Coverage())
	modelVersion := heuristicVersion

	if clf != nil {
		if proba, err := clf.PredictProba(f, w); err == nil {
			// Even split between the trained estimate and the heuristic.
			blended := clamp01((proba + heuristic) / 2)
			probability = blended
			modelPrediction = &proba
			modelName = clf.Name()
			modelVersion = clf.Version()
		}
	}

	score := probability * 100
	level := types.ClassifyProbability(probability)

	seasonal := model.SeasonalFactor(month)
	adjusted := score * seasonal
	if adjusted > 100 {
		adjusted = 100
	}

	return types.CoverageRiskResult{
		Coverage:     model.Coverage(),
		CoverageCode: model.Coverage().Code(),

		Probability:     probability,
		RiskScore:       score,
		RiskLevel:       level,
		ModelPrediction: modelPrediction,
		HeuristicScore:  heuristic,
		MainFactors:     factors,
		Recommendations: model.Recommendations(level, factors),

		SeasonalFactor: seasonal,
		AdjustedScore:  adjusted,
		AdjustedLevel:  types.ClassifyScore(adjusted),

		Weather:  w,
		Property: f,

		ModelName:    modelName,
		ModelVersion: modelVersion,
		Confidence:   defaultConfidence,
	}
}

// fallbackResult is the neutral result used when scoring a coverage fails.
// The policy's other coverages still get real analyses.
func fallbackResult(coverage types.CoverageType, f types.PropertyFeatures, w types.WeatherReading, errMsg string) types.CoverageRiskResult {
	return types.CoverageRiskResult{
		Coverage:     coverage,
		CoverageCode: coverage.Code(),

		Probability:    0.5,
		RiskScore:      50,
		RiskLevel:      types.RiskLevelMedium,
		HeuristicScore: 0.5,

		SeasonalFactor: 1.0,
		AdjustedScore:  50,
		AdjustedLevel:  types.RiskLevelMedium,

		Weather:  w,
		Property: f,

		ModelName:    string(coverage),
		ModelVersion: heuristicVersion,
		Error:        errMsg,
	}
}
