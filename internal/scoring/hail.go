package scoring

import (
	"time"

	"riskradar/internal/types"
)

// HailModel scores hail risk. Main drivers: atmospheric instability (thermal
// gradient, heat, humidity) feeding the updrafts that form hailstones.
type HailModel struct{}

var hailImportance = importanceTable{
	FeatTemperatureDelta: 0.30,
	FeatHumidity:         0.25,
	FeatPressure:         0.20,
	FeatWindSpeed:        0.15,
	FeatPropertyType:     0.10,
}

var hailSeasonal = seasonalTable{
	time.December: 1.4, time.January: 1.3, time.February: 1.1,
	time.March: 0.9, time.April: 0.8, time.May: 0.7,
	time.June: 0.6, time.July: 0.6, time.August: 0.7,
	time.September: 0.8, time.October: 1.2, time.November: 1.3,
}

// Coverage identifies which peril this model scores.
func (HailModel) Coverage() types.CoverageType { return types.CoverageHail }

// SeasonalFactor peaks between late spring and early summer.
func (HailModel) SeasonalFactor(m time.Month) float64 { return hailSeasonal.factor(m) }

// Score accumulates banded contributions from convective indicators.
func (HailModel) Score(f types.PropertyFeatures, w types.WeatherReading) (float64, []types.RiskFactor) {
	risk := 0.0

	// Thermal gradient over the current day is the strongest instability signal.
	tempDelta := w.TemperatureMaxC - w.TemperatureMinC
	switch {
	case tempDelta > 20:
		risk += 0.4
	case tempDelta > 15:
		risk += 0.3
	case tempDelta > 10:
		risk += 0.2
	}

	// Surface heat fuels updrafts.
	switch {
	case w.TemperatureMaxC > 35:
		risk += 0.3
	case w.TemperatureMaxC > 30:
		risk += 0.2
	case w.TemperatureMaxC > 25:
		risk += 0.1
	}

	switch {
	case w.HumidityPercent > 80:
		risk += 0.25
	case w.HumidityPercent > 70:
		risk += 0.15
	case w.HumidityPercent > 60:
		risk += 0.1
	}

	// Convective systems ride low pressure.
	switch {
	case w.PressureHPa < 1005:
		risk += 0.25
	case w.PressureHPa < 1010:
		risk += 0.15
	}

	switch {
	case w.WindSpeedKmh > 50:
		risk += 0.3
	case w.WindSpeedKmh > 30:
		risk += 0.2
	case w.WindSpeedKmh > 15:
		risk += 0.1
	}

	switch {
	case w.CloudCoverPercent > 70:
		risk += 0.15
	case w.CloudCoverPercent > 50:
		risk += 0.1
	}

	switch {
	case w.UVIndex > 9:
		risk += 0.15
	case w.UVIndex > 7:
		risk += 0.1
	}

	// Instability peaks mid-afternoon.
	hour := w.Timestamp.Hour()
	switch {
	case hour >= 14 && hour <= 18:
		risk += 0.2
	case hour >= 12 && hour <= 20:
		risk += 0.1
	}

	month := w.Timestamp.Month()
	season := types.SeasonForMonth(month)
	switch {
	case season == types.SeasonSpring && (month == time.October || month == time.November):
		risk += 0.2
	case season == types.SeasonSummer && (month == time.December || month == time.January):
		risk += 0.25
	case season == types.SeasonSummer:
		risk += 0.15
	case season == types.SeasonSpring:
		risk += 0.1
	}

	// Exposed roof area by dwelling type.
	switch f.PropertyType {
	case types.PropertyDuplex:
		risk += 0.15
	case types.PropertyHouse:
		risk += 0.1
	case types.PropertyApartment:
		risk += 0.02
	}

	switch f.ValueTier {
	case types.ValueTierLow:
		risk += 0.1
	case types.ValueTierPremium:
		risk -= 0.05
	}

	// Heat island effect adds instability.
	if f.Metropolitan {
		risk += 0.1
	}

	return clamp01(risk), mainFactors(hailImportance, f, w)
}

// Recommendations lists mitigation advice for hail exposure.
func (HailModel) Recommendations(level types.RiskLevel, factors []types.RiskFactor) []string {
	var recs []string

	if elevatedRisk(level) {
		recs = append(recs,
			"Keep vehicles in a covered garage",
			"Check the roof's impact resistance",
			"Watch forecasts for atmospheric instability",
			"Avoid open areas during storms",
		)
	}

	for _, factor := range topFactors(factors) {
		switch {
		case factor.Feature == FeatTemperatureDelta && factor.Value > 15:
			recs = append(recs, "Large thermal spread, high atmospheric instability")
		case factor.Feature == FeatHumidity && factor.Value > 80:
			recs = append(recs, "High humidity plus heat favors hail formation")
		case factor.Feature == FeatWindSpeed && factor.Value > 40:
			recs = append(recs, "Strong winds may signal hail-bearing supercells")
		}
	}

	return dedupeRecommendations(recs)
}

var _ types.CoverageModel = HailModel{}
