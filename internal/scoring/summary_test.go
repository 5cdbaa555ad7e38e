package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskradar/internal/types"
)

func resultWithScore(coverage types.CoverageType, score float64) types.CoverageRiskResult {
	return types.CoverageRiskResult{
		Coverage:     coverage,
		CoverageCode: coverage.Code(),
		Probability:  score / 100,
		RiskScore:    score,
		RiskLevel:    types.ClassifyScore(score),
	}
}

func TestBuildSummary_AggregatesScores(t *testing.T) {
	now := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	results := []types.CoverageRiskResult{
		resultWithScore(types.CoverageElectricalDamage, 30),
		resultWithScore(types.CoverageWindstorm, 50),
		resultWithScore(types.CoverageHail, 90),
		resultWithScore(types.CoverageFlooding, 20),
	}

	summary := buildSummary("POL-1", now, results)

	assert.InDelta(t, 47.5, summary.AverageScore, 1e-9)
	assert.Equal(t, types.RiskLevelMedium, summary.OverallRiskLevel)

	require.NotNil(t, summary.HighestRisk)
	assert.Equal(t, types.CoverageHail, summary.HighestRisk.Coverage)
	assert.Equal(t, 90.0, summary.HighestRisk.Score)
	assert.Equal(t, types.RiskLevelHigh, summary.HighestRisk.Level)

	assert.Equal(t, 1, summary.Distribution[types.RiskLevelHigh])
	assert.Equal(t, 1, summary.Distribution[types.RiskLevelMedium])
	assert.Equal(t, 2, summary.Distribution[types.RiskLevelLow])
	assert.Equal(t, 0, summary.Distribution[types.RiskLevelVeryLow])
}

func TestBuildSummary_FallbackEntriesExcludedFromAggregates(t *testing.T) {
	now := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

	fallback := resultWithScore(types.CoverageHail, 50)
	fallback.Error = "model panicked"

	results := []types.CoverageRiskResult{
		resultWithScore(types.CoverageElectricalDamage, 75),
		resultWithScore(types.CoverageWindstorm, 72),
		fallback,
		resultWithScore(types.CoverageFlooding, 75),
	}

	summary := buildSummary("POL-1", now, results)

	// The neutral 50 must not drag the average into the medium band.
	assert.InDelta(t, 74.0, summary.AverageScore, 1e-9)
	assert.Equal(t, types.RiskLevelHigh, summary.OverallRiskLevel)
	assert.Equal(t, 3, summary.CoveragesAnalyzed)
	require.Len(t, summary.Results, 4)

	require.NotNil(t, summary.HighestRisk)
	assert.NotEqual(t, types.CoverageHail, summary.HighestRisk.Coverage)

	assert.Equal(t, 3, summary.Distribution[types.RiskLevelHigh])
	assert.Equal(t, 0, summary.Distribution[types.RiskLevelMedium])
}

func TestBuildSummary_AllFallback(t *testing.T) {
	fallback := resultWithScore(types.CoverageHail, 50)
	fallback.Error = "weather unusable"

	summary := buildSummary("POL-1", time.Now(), []types.CoverageRiskResult{fallback})

	assert.Equal(t, 0, summary.CoveragesAnalyzed)
	assert.Equal(t, 0.0, summary.AverageScore)
	assert.Equal(t, types.RiskLevelLow, summary.OverallRiskLevel)
	assert.Nil(t, summary.HighestRisk)
	require.Len(t, summary.Results, 1)
}

func TestConsolidateRecommendations_DedupesAndCaps(t *testing.T) {
	withRecs := func(coverage types.CoverageType, recs ...string) types.CoverageRiskResult {
		r := resultWithScore(coverage, 75)
		r.Recommendations = recs
		return r
	}

	wind := withRecs(types.CoverageWindstorm,
		"Reinforce doors and windows", "Secure antennas and outdoor equipment")
	hail := withRecs(types.CoverageHail,
		"Reinforce doors and windows", "Keep vehicles in a covered garage")

	fallback := withRecs(types.CoverageFlooding, "Check the property's drainage system")
	fallback.Error = "model panicked"

	summary := buildSummary("POL-1", time.Now(), []types.CoverageRiskResult{wind, hail, fallback})

	assert.Equal(t, []string{
		"Reinforce doors and windows",
		"Secure antennas and outdoor equipment",
		"Keep vehicles in a covered garage",
	}, summary.Recommendations, "duplicates and fallback advisories must be dropped")

	// More than ten distinct advisories collapse to the first ten.
	many := withRecs(types.CoverageElectricalDamage,
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l")
	capped := buildSummary("POL-2", time.Now(), []types.CoverageRiskResult{many})
	assert.Len(t, capped.Recommendations, 10)
}

func TestBuildSummary_Empty(t *testing.T) {
	summary := buildSummary("POL-1", time.Now(), nil)

	assert.Equal(t, 0.0, summary.AverageScore)
	assert.Equal(t, types.RiskLevelLow, summary.OverallRiskLevel)
	assert.Nil(t, summary.HighestRisk)
	assert.Equal(t, 0, summary.CoveragesAnalyzed)
}

func TestBuildSummary_BandEdges(t *testing.T) {
	now := time.Now()

	high := buildSummary("P", now, []types.CoverageRiskResult{resultWithScore(types.CoverageHail, 70)})
	assert.Equal(t, types.RiskLevelHigh, high.OverallRiskLevel)

	veryLow := buildSummary("P", now, []types.CoverageRiskResult{resultWithScore(types.CoverageHail, 19.9)})
	assert.Equal(t, types.RiskLevelVeryLow, veryLow.OverallRiskLevel)
}

func TestCriticalFactors_TopFiveBySummedImportance(t *testing.T) {
	mk := func(factors ...types.RiskFactor) types.CoverageRiskResult {
		return types.CoverageRiskResult{MainFactors: factors}
	}

	results := []types.CoverageRiskResult{
		mk(
			types.RiskFactor{Feature: FeatWindSpeed, Importance: 0.35},
			types.RiskFactor{Feature: FeatPressure, Importance: 0.25},
			types.RiskFactor{Feature: FeatHumidity, Importance: 0.10},
			// Fourth factor must be ignored (top 3 per coverage).
			types.RiskFactor{Feature: FeatCloudCover, Importance: 0.09},
		),
		mk(
			types.RiskFactor{Feature: FeatPrecipitation, Importance: 0.40},
			types.RiskFactor{Feature: FeatWindSpeed, Importance: 0.25},
			types.RiskFactor{Feature: FeatMetropolitan, Importance: 0.20},
		),
	}

	factors := criticalFactors(results)

	require.NotEmpty(t, factors)
	assert.Equal(t, FeatWindSpeed, factors[0].Feature)
	assert.InDelta(t, 0.60, factors[0].TotalImportance, 1e-9)
	assert.LessOrEqual(t, len(factors), 5)

	for _, f := range factors {
		assert.NotEqual(t, FeatCloudCover, f.Feature)
	}
}

func TestBuildPortfolioSummary(t *testing.T) {
	now := time.Now()
	summaries := []*types.PolicySummary{
		buildSummary("A", now, []types.CoverageRiskResult{
			resultWithScore(types.CoverageFlooding, 80),
			resultWithScore(types.CoverageHail, 40),
		}),
		buildSummary("B", now, []types.CoverageRiskResult{
			resultWithScore(types.CoverageFlooding, 60),
		}),
	}

	portfolio := buildPortfolioSummary(summaries)

	assert.Equal(t, 3, portfolio.TotalAnalyses)
	assert.InDelta(t, 60.0, portfolio.AveragePortfolioRisk, 1e-9)

	flood := portfolio.CoverageBreakdown[types.CoverageFlooding]
	assert.Equal(t, 2, flood.PolicyCount)
	assert.Equal(t, 80.0, flood.MaxScore)
	assert.Equal(t, 60.0, flood.MinScore)
	assert.InDelta(t, 70.0, flood.AverageScore, 1e-9)
	assert.Equal(t, 1, flood.HighRiskCount)

	assert.Equal(t, 1, portfolio.Distribution[types.RiskLevelHigh])
	assert.Equal(t, 2, portfolio.Distribution[types.RiskLevelMedium])
}

func TestBuildPortfolioSummary_Empty(t *testing.T) {
	portfolio := buildPortfolioSummary(nil)
	assert.Equal(t, 0, portfolio.TotalAnalyses)
	assert.Empty(t, portfolio.CoverageBreakdown)
}
