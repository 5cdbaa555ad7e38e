package scoring

import (
	"sort"
	"time"

	"riskradar/internal/types"
)

// Canonical feature names shared by the heuristic models, the classifier
// coefficient files, and the persisted factor blobs.
const (
	FeatWindSpeed        = "wind_speed_kmh"
	FeatUVIndex          = "uv_index"
	FeatPressure         = "pressure_hpa"
	FeatHumidity         = "humidity_percent"
	FeatTemperature      = "temperature_c"
	FeatTemperatureDelta = "temperature_delta_c"
	FeatCloudCover       = "cloud_cover_percent"
	FeatPrecipitation    = "precipitation_mm"
	FeatAgeYears         = "age_years"
	FeatPropertyType     = "property_type"
	FeatValueTier        = "value_tier"
	FeatMetropolitan     = "metropolitan"
	FeatConstructionRisk = "construction_risk"
)

// importanceTable maps feature names to their fixed weight in a coverage model.
type importanceTable map[string]float64

// factorValue resolves a canonical feature name to its numeric value for
// reporting. Categorical features are encoded on a small ordinal scale so
// they remain comparable in factor lists.
func factorValue(name string, f types.PropertyFeatures, w types.WeatherReading) float64 {
	switch name {
	case FeatWindSpeed:
		return w.WindSpeedKmh
	case FeatUVIndex:
		return w.UVIndex
	case FeatPressure:
		return w.PressureHPa
	case FeatHumidity:
		return w.HumidityPercent
	case FeatTemperature:
		return w.TemperatureC
	case FeatTemperatureDelta:
		return w.TemperatureMaxC - w.TemperatureMinC
	case FeatCloudCover:
		return w.CloudCoverPercent
	case FeatPrecipitation:
		return w.PrecipitationMM
	case FeatAgeYears:
		return float64(f.AgeYears)
	case FeatPropertyType:
		return encodePropertyType(f.PropertyType)
	case FeatValueTier:
		return encodeValueTier(f.ValueTier)
	case FeatMetropolitan:
		if f.Metropolitan {
			return 1
		}
		return 0
	case FeatConstructionRisk:
		return f.ConstructionRisk
	default:
		return 0
	}
}

// Ordinal encoding of dwelling types, roughly by height and exposure.
const (
	propertyCodeApartment float64 = 0
	propertyCodeStudio    float64 = 1
	propertyCodeHouse     float64 = 2
	propertyCodeDuplex    float64 = 3
)

func encodePropertyType(t types.PropertyType) float64 {
	switch t {
	case types.PropertyApartment:
		return propertyCodeApartment
	case types.PropertyStudio:
		return propertyCodeStudio
	case types.PropertyHouse:
		return propertyCodeHouse
	case types.PropertyDuplex:
		return propertyCodeDuplex
	default:
		return propertyCodeHouse
	}
}

func encodeValueTier(t types.ValueTier) float64 {
	switch t {
	case types.ValueTierLow:
		return 0
	case types.ValueTierMedium:
		return 1
	case types.ValueTierHigh:
		return 2
	case types.ValueTierPremium:
		return 3
	default:
		return 1
	}
}

// mainFactors builds the ranked factor list for a coverage from its
// importance table, ordered by importance descending. Ties break on the
// feature name so the ordering is stable.
func mainFactors(table importanceTable, f types.PropertyFeatures, w types.WeatherReading) []types.RiskFactor {
	factors := make([]types.RiskFactor, 0, len(table))
	for name, importance := range table {
		factors = append(factors, types.RiskFactor{
			Feature:    name,
			Value:      factorValue(name, f, w),
			Importance: importance,
		})
	}
	sort.Slice(factors, func(i, j int) bool {
		if factors[i].Importance != factors[j].Importance {
			return factors[i].Importance > factors[j].Importance
		}
		return factors[i].Feature < factors[j].Feature
	})
	return factors
}

// elevatedRisk reports whether a level warrants the model's base advisories.
func elevatedRisk(level types.RiskLevel) bool {
	return level == types.RiskLevelHigh || level == types.RiskLevelMedium
}

// topFactors returns at most the three highest-ranked factors, the slice the
// factor-driven recommendation rules inspect.
func topFactors(factors []types.RiskFactor) []types.RiskFactor {
	if len(factors) > 3 {
		return factors[:3]
	}
	return factors
}

// dedupeRecommendations drops repeated advisories, first occurrence wins.
func dedupeRecommendations(recs []string) []string {
	if len(recs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// seasonalTable is a month -> score multiplier lookup.
type seasonalTable map[time.Month]float64

func (t seasonalTable) factor(m time.Month) float64 {
	if f, ok := t[m]; ok {
		return f
	}
	return 1.0
}
