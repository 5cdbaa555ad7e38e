package scoring

import (
	"time"

	"riskradar/internal/types"
)

// WindstormModel scores windstorm risk. Main drivers: sustained wind speed,
// pressure gradients, and the dwelling's exposure.
type WindstormModel struct{}

var windstormImportance = importanceTable{
	FeatWindSpeed:        0.35,
	FeatPressure:         0.25,
	FeatTemperatureDelta: 0.15,
	FeatHumidity:         0.10,
	FeatPropertyType:     0.10,
	FeatMetropolitan:     0.05,
}

var windstormSeasonal = seasonalTable{
	time.December: 0.9, time.January: 0.8, time.February: 0.8,
	time.March: 1.0, time.April: 1.1, time.May: 1.2,
	time.June: 1.4, time.July: 1.5, time.August: 1.4,
	time.September: 1.3, time.October: 1.2, time.November: 1.0,
}

// Coverage identifies which peril this model scores.
func (WindstormModel) Coverage() types.CoverageType { return types.CoverageWindstorm }

// SeasonalFactor peaks in winter, when cold fronts drive the strongest winds.
func (WindstormModel) SeasonalFactor(m time.Month) float64 { return windstormSeasonal.factor(m) }

// Score accumulates banded contributions; wind speed is the dominant term.
func (WindstormModel) Score(f types.PropertyFeatures, w types.WeatherReading) (float64, []types.RiskFactor) {
	risk := 0.0

	switch {
	case w.WindSpeedKmh > 80:
		risk += 0.6
	case w.WindSpeedKmh > 60:
		risk += 0.45
	case w.WindSpeedKmh > 40:
		risk += 0.3
	case w.WindSpeedKmh > 25:
		risk += 0.15
	case w.WindSpeedKmh > 15:
		risk += 0.05
	}

	// Deep low pressure systems generate destructive winds.
	switch {
	case w.PressureHPa < 990:
		risk += 0.4
	case w.PressureHPa < 1000:
		risk += 0.3
	case w.PressureHPa < 1010:
		risk += 0.15
	}

	// Thermal gradient over the current day drives atmospheric instability.
	tempDelta := w.TemperatureMaxC - w.TemperatureMinC
	switch {
	case tempDelta > 15:
		risk += 0.2
	case tempDelta > 10:
		risk += 0.1
	}

	switch {
	case w.HumidityPercent > 85:
		risk += 0.15
	case w.HumidityPercent > 70:
		risk += 0.1
	}

	if w.CloudCoverPercent > 80 {
		risk += 0.1
	}

	switch types.SeasonForMonth(w.Timestamp.Month()) {
	case types.SeasonWinter:
		risk += 0.15
	case types.SeasonSpring:
		risk += 0.1
	case types.SeasonAutumn:
		risk += 0.05
	}

	// Taller standalone dwellings catch more wind.
	switch f.PropertyType {
	case types.PropertyDuplex:
		risk += 0.2
	case types.PropertyHouse:
		risk += 0.15
	case types.PropertyApartment:
		risk += 0.05
	}

	if f.Metropolitan {
		risk += 0.1
	}

	switch f.ValueTier {
	case types.ValueTierLow:
		risk += 0.15
	case types.ValueTierMedium:
		risk += 0.1
	case types.ValueTierPremium:
		risk -= 0.05
	}

	risk += f.ConstructionRisk * 0.1

	return clamp01(risk), mainFactors(windstormImportance, f, w)
}

// Recommendations lists mitigation advice for windstorm exposure.
func (WindstormModel) Recommendations(level types.RiskLevel, factors []types.RiskFactor) []string {
	var recs []string

	if elevatedRisk(level) {
		recs = append(recs,
			"Check that roof tiles and coverings are fastened",
			"Prune trees close to the building",
			"Reinforce doors and windows",
			"Secure antennas and outdoor equipment",
		)
	}

	for _, factor := range topFactors(factors) {
		switch {
		case factor.Feature == FeatWindSpeed && factor.Value > 60:
			recs = append(recs, "Destructive winds forecast, seek safe shelter")
		case factor.Feature == FeatWindSpeed && factor.Value > 40:
			recs = append(recs, "Strong winds, stay indoors and secure loose objects")
		case factor.Feature == FeatPressure && factor.Value < 1000:
			recs = append(recs, "Severe low pressure system, intense windstorm risk")
		case factor.Feature == FeatPropertyType && factor.Value == propertyCodeDuplex:
			recs = append(recs, "Tall dwelling, inspect the structure and roofing")
		}
	}

	return dedupeRecommendations(recs)
}

var _ types.CoverageModel = WindstormModel{}
