package scoring

import (
	"sort"
	"time"

	"riskradar/internal/types"
)

// buildSummary aggregates the per-coverage results of one policy. The overall
// level and distribution use the unadjusted scores; seasonal adjustment stays
// informational on each result.
func buildSummary(policyNumber string, analyzedAt time.Time, results []types.CoverageRiskResult) *types.PolicySummary {
	summary := &types.PolicySummary{
		PolicyNumber:     policyNumber,
		AnalyzedAt:       analyzedAt,
		Results:          results,
		OverallRiskLevel: types.RiskLevelLow,
		Distribution:     map[types.RiskLevel]int{},
		CriticalFactors:  []types.CriticalFactor{},
	}
	// Fallback entries stay in Results but are excluded from every
	// aggregate: their neutral score would skew the average.
	var total float64
	maxIdx := -1
	for i, r := range results {
		if r.Error != "" {
			continue
		}
		summary.CoveragesAnalyzed++
		total += r.RiskScore
		if maxIdx < 0 || r.RiskScore > results[maxIdx].RiskScore {
			maxIdx = i
		}
		summary.Distribution[types.ClassifyScore(r.RiskScore)]++
	}
	if summary.CoveragesAnalyzed == 0 {
		return summary
	}

	summary.AverageScore = total / float64(summary.CoveragesAnalyzed)
	summary.OverallRiskLevel = types.ClassifyScore(summary.AverageScore)
	summary.HighestRisk = &types.HighestRiskCoverage{
		Coverage: results[maxIdx].Coverage,
		Score:    results[maxIdx].RiskScore,
		Level:    results[maxIdx].RiskLevel,
	}
	summary.CriticalFactors = criticalFactors(results)
	summary.Recommendations = consolidateRecommendations(results)

	return summary
}

// maxConsolidatedRecommendations caps the policy-level advisory list.
const maxConsolidatedRecommendations = 10

// consolidateRecommendations merges every coverage's advisories into one
// deduplicated policy-level list, capped at ten entries.
func consolidateRecommendations(results []types.CoverageRiskResult) []string {
	var all []string
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		all = append(all, r.Recommendations...)
	}
	all = dedupeRecommendations(all)
	if len(all) > maxConsolidatedRecommendations {
		all = all[:maxConsolidatedRecommendations]
	}
	return all
}

// criticalFactors ranks features by their summed importance across each
// result's top three factors, returning the five most influential.
func criticalFactors(results []types.CoverageRiskResult) []types.CriticalFactor {
	totals := make(map[string]float64)
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		top := r.MainFactors
		if len(top) > 3 {
			top = top[:3]
		}
		for _, factor := range top {
			totals[factor.Feature] += factor.Importance
		}
	}

	factors := make([]types.CriticalFactor, 0, len(totals))
	for feature, importance := range totals {
		factors = append(factors, types.CriticalFactor{Feature: feature, TotalImportance: importance})
	}
	sort.Slice(factors, func(i, j int) bool {
		if factors[i].TotalImportance != factors[j].TotalImportance {
			return factors[i].TotalImportance > factors[j].TotalImportance
		}
		return factors[i].Feature < factors[j].Feature
	})

	if len(factors) > 5 {
		factors = factors[:5]
	}
	return factors
}

// buildPortfolioSummary aggregates batch results across coverages and levels.
func buildPortfolioSummary(summaries []*types.PolicySummary) types.PortfolioSummary {
	portfolio := types.PortfolioSummary{
		CoverageBreakdown: map[types.CoverageType]types.CoverageStats{},
		Distribution:      map[types.RiskLevel]int{},
	}

	var total float64
	byCoverage := make(map[types.CoverageType][]float64)

	for _, s := range summaries {
		for _, r := range s.Results {
			if r.Error != "" {
				continue
			}
			portfolio.TotalAnalyses++
			total += r.RiskScore
			byCoverage[r.Coverage] = append(byCoverage[r.Coverage], r.RiskScore)
			portfolio.Distribution[types.ClassifyScore(r.RiskScore)]++
		}
	}
	if portfolio.TotalAnalyses == 0 {
		return portfolio
	}

	portfolio.AveragePortfolioRisk = total / float64(portfolio.TotalAnalyses)

	for coverage, scores := range byCoverage {
		stats := types.CoverageStats{
			PolicyCount: len(scores),
			MaxScore:    scores[0],
			MinScore:    scores[0],
		}
		var sum float64
		for _, score := range scores {
			sum += score
			if score > stats.MaxScore {
				stats.MaxScore = score
			}
			if score < stats.MinScore {
				stats.MinScore = score
			}
			if score >= 70 {
				stats.HighRiskCount++
			}
		}
		stats.AverageScore = sum / float64(len(scores))
		portfolio.CoverageBreakdown[coverage] = stats
	}

	return portfolio
}
