package scoring

import (
	"time"

	"riskradar/internal/types"
)

// ElectricalModel scores electrical damage risk. Main drivers: storm
// activity (wind, low pressure, lightning-bearing rain) and the age of the
// property's wiring.
type ElectricalModel struct{}

var electricalImportance = importanceTable{
	FeatWindSpeed:    0.25,
	FeatUVIndex:      0.20,
	FeatPressure:     0.18,
	FeatHumidity:     0.15,
	FeatAgeYears:     0.12,
	FeatPropertyType: 0.10,
}

var electricalSeasonal = seasonalTable{
	time.December: 1.3, time.January: 1.4, time.February: 1.3,
	time.March: 1.1, time.April: 0.9, time.May: 0.8,
	time.June: 0.7, time.July: 0.6, time.August: 0.7,
	time.September: 0.9, time.October: 1.1, time.November: 1.2,
}

// Coverage identifies which peril this model scores.
func (ElectricalModel) Coverage() types.CoverageType { return types.CoverageElectricalDamage }

// SeasonalFactor peaks in summer, when thunderstorm activity is highest.
func (ElectricalModel) SeasonalFactor(m time.Month) float64 { return electricalSeasonal.factor(m) }

// Score accumulates banded contributions from storm indicators and wiring age.
func (ElectricalModel) Score(f types.PropertyFeatures, w types.WeatherReading) (float64, []types.RiskFactor) {
	risk := 0.0

	// Storm wind.
	switch {
	case w.WindSpeedKmh > 60:
		risk += 0.4
	case w.WindSpeedKmh > 40:
		risk += 0.25
	case w.WindSpeedKmh > 20:
		risk += 0.1
	}

	// High UV correlates with convective buildup.
	switch {
	case w.UVIndex > 8:
		risk += 0.2
	case w.UVIndex > 6:
		risk += 0.1
	}

	// Low pressure systems bring electrical storms.
	switch {
	case w.PressureHPa < 1000:
		risk += 0.3
	case w.PressureHPa < 1010:
		risk += 0.15
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

	// Heavy rain implies lightning.
	switch {
	case w.PrecipitationMM > 10:
		risk += 0.2
	case w.PrecipitationMM > 5:
		risk += 0.1
	}

	switch types.SeasonForMonth(w.Timestamp.Month()) {
	case types.SeasonSummer:
		risk += 0.15
	case types.SeasonSpring:
		risk += 0.1
	}

	// Old wiring.
	switch {
	case f.AgeYears > 30:
		risk += 0.25
	case f.AgeYears > 20:
		risk += 0.15
	case f.AgeYears > 10:
		risk += 0.1
	}

	// Exposure by dwelling type.
	switch f.PropertyType {
	case types.PropertyDuplex:
		risk += 0.15
	case types.PropertyHouse:
		risk += 0.1
	case types.PropertyApartment:
		risk += 0.05
	}

	// Installation quality tracks value tier.
	switch f.ValueTier {
	case types.ValueTierLow:
		risk += 0.2
	case types.ValueTierMedium:
		risk += 0.1
	case types.ValueTierPremium:
		risk -= 0.05
	}

	// Grid instability in dense urban areas.
	if f.Metropolitan {
		risk += 0.1
	}

	return clamp01(risk), mainFactors(electricalImportance, f, w)
}

// Recommendations lists mitigation advice for electrical damage exposure.
func (ElectricalModel) Recommendations(level types.RiskLevel, factors []types.RiskFactor) []string {
	var recs []string

	if elevatedRisk(level) {
		recs = append(recs,
			"Install surge protection on the main panel",
			"Have the electrical installation inspected",
			"Unplug sensitive equipment during storms",
		)
	}

	for _, factor := range topFactors(factors) {
		switch {
		case factor.Feature == FeatWindSpeed && factor.Value > 40:
			recs = append(recs, "Storm conditions expected, protect electronic equipment")
		case factor.Feature == FeatAgeYears && factor.Value > 20:
			recs = append(recs, "Aging wiring, consider updating the installation")
		case factor.Feature == FeatPressure && factor.Value < 1010:
			recs = append(recs, "Low pressure system approaching, lightning risk elevated")
		}
	}

	return dedupeRecommendations(recs)
}

var _ types.CoverageModel = ElectricalModel{}
