package scoring

import (
	"time"

	"riskradar/internal/types"
)

// FloodModel scores flooding risk. Main drivers: rainfall volume, urban
// drainage quality, and neighborhoods with a flooding history.
type FloodModel struct{}

var floodImportance = importanceTable{
	FeatPrecipitation: 0.40,
	FeatMetropolitan:  0.20,
	FeatHumidity:      0.15,
	FeatPressure:      0.10,
	FeatPropertyType:  0.10,
	FeatValueTier:     0.05,
}

var floodSeasonal = seasonalTable{
	time.December: 1.4, time.January: 1.5, time.February: 1.3,
	time.March: 1.2, time.April: 1.0, time.May: 0.8,
	time.June: 0.6, time.July: 0.5, time.August: 0.6,
	time.September: 0.8, time.October: 1.0, time.November: 1.2,
}

// floodPronePrefixes maps postal prefixes of areas with recurring flood
// history to their added risk. Prefixes absent from the table carry a small
// base risk.
var floodPronePrefixes = map[string]float64{
	// Sao Paulo
	"01": 0.2, "02": 0.15, "03": 0.25, "04": 0.2, "05": 0.15,
	"06": 0.1, "07": 0.15, "08": 0.25, "09": 0.2,
	// Rio de Janeiro
	"20": 0.3, "21": 0.25, "22": 0.2, "23": 0.25, "24": 0.15,
	"25": 0.1, "26": 0.15, "27": 0.1, "28": 0.05,
	// Belo Horizonte
	"30": 0.2, "31": 0.15, "32": 0.1,
	// Salvador
	"40": 0.2, "41": 0.15, "42": 0.1,
	// Recife
	"50": 0.25, "51": 0.2, "52": 0.15,
	// Fortaleza
	"60": 0.2, "61": 0.15,
	// Brasilia
	"70": 0.1, "71": 0.05, "72": 0.05,
	// Curitiba
	"80": 0.15, "81": 0.1, "82": 0.1,
	// Porto Alegre
	"90": 0.2, "91": 0.15, "92": 0.1,
}

const floodBasePrefixRisk = 0.05

// Coverage identifies which peril this model scores.
func (FloodModel) Coverage() types.CoverageType { return types.CoverageFlooding }

// SeasonalFactor peaks in summer, the intense-rainfall season.
func (FloodModel) SeasonalFactor(m time.Month) float64 { return floodSeasonal.factor(m) }

// Score accumulates banded contributions; rainfall is the dominant term and
// the bands are monotone in precipitation.
func (FloodModel) Score(f types.PropertyFeatures, w types.WeatherReading) (float64, []types.RiskFactor) {
	risk := 0.0

	switch {
	case w.PrecipitationMM > 50:
		risk += 0.6
	case w.PrecipitationMM > 25:
		risk += 0.4
	case w.PrecipitationMM > 10:
		risk += 0.2
	case w.PrecipitationMM > 5:
		risk += 0.1
	}

	// Persistent humidity keeps rain systems alive.
	switch {
	case w.HumidityPercent > 90:
		risk += 0.2
	case w.HumidityPercent > 80:
		risk += 0.15
	case w.HumidityPercent > 70:
		risk += 0.1
	}

	// Stationary low pressure systems produce prolonged rain.
	switch {
	case w.PressureHPa < 1005:
		risk += 0.2
	case w.PressureHPa < 1010:
		risk += 0.1
	}

	switch {
	case w.CloudCoverPercent > 85:
		risk += 0.15
	case w.CloudCoverPercent > 70:
		risk += 0.1
	}

	// Warm rain falls harder.
	if w.TemperatureC > 25 {
		risk += 0.1
	}

	// Weak wind means the system is parked overhead.
	if w.WindSpeedKmh < 5 {
		risk += 0.1
	}

	month := w.Timestamp.Month()
	season := types.SeasonForMonth(month)
	switch {
	case season == types.SeasonSummer:
		risk += 0.2
	case season == types.SeasonSpring && (month == time.October || month == time.November):
		risk += 0.15
	case season == types.SeasonAutumn && (month == time.March || month == time.April):
		risk += 0.1
	}

	// Drainage is the critical property-side factor.
	if f.Metropolitan {
		risk += 0.25
	}

	// Ground-level dwellings flood first.
	switch f.PropertyType {
	case types.PropertyHouse:
		risk += 0.15
	case types.PropertyStudio:
		risk += 0.12
	case types.PropertyDuplex:
		risk += 0.1
	case types.PropertyApartment:
		risk += 0.02
	}

	if p, ok := floodPronePrefixes[f.PostalPrefix]; ok {
		risk += p
	} else {
		risk += floodBasePrefixRisk
	}

	// Neighborhood infrastructure tracks value tier.
	switch f.ValueTier {
	case types.ValueTierLow:
		risk += 0.15
	case types.ValueTierMedium:
		risk += 0.1
	case types.ValueTierHigh:
		risk += 0.05
	case types.ValueTierPremium:
		risk -= 0.05
	}

	return clamp01(risk), mainFactors(floodImportance, f, w)
}

// Recommendations lists mitigation advice for flood exposure.
func (FloodModel) Recommendations(level types.RiskLevel, factors []types.RiskFactor) []string {
	var recs []string

	if elevatedRisk(level) {
		recs = append(recs,
			"Check the property's drainage system",
			"Keep drains and gutters unobstructed",
			"Raise valuables off floor level",
			"Avoid driving through low-lying areas",
		)
	}

	for _, factor := range topFactors(factors) {
		switch {
		case factor.Feature == FeatPrecipitation && factor.Value > 25:
			recs = append(recs, "Intense rainfall, flash flooding possible")
		case factor.Feature == FeatMetropolitan && factor.Value > 0:
			recs = append(recs, "Metropolitan area, urban drainage may be overwhelmed")
		case factor.Feature == FeatHumidity && factor.Value > 85:
			recs = append(recs, "High humidity, rain is likely to persist")
		case factor.Feature == FeatPropertyType &&
			(factor.Value == propertyCodeHouse || factor.Value == propertyCodeStudio):
			recs = append(recs, "Ground-level dwelling, more exposed to flooding")
		}
	}

	return dedupeRecommendations(recs)
}

var _ types.CoverageModel = FloodModel{}
