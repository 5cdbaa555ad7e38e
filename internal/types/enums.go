package types

import (
	"fmt"
	"time"
)

// CoverageType identifies an insurable peril with a dedicated risk model.
type CoverageType string

const (
	CoverageElectricalDamage CoverageType = "electrical_damage"
	CoverageWindstorm        CoverageType = "windstorm"
	CoverageHail             CoverageType = "hail"
	CoverageFlooding         CoverageType = "flooding"
)

// AllCoverages returns the coverages in product-code order.
func AllCoverages() []CoverageType {
	return []CoverageType{
		CoverageElectricalDamage,
		CoverageWindstorm,
		CoverageHail,
		CoverageFlooding,
	}
}

// Code returns the numeric product code used by the policy admin system.
func (c CoverageType) Code() int {
	switch c {
	case CoverageElectricalDamage:
		return 1
	case CoverageWindstorm:
		return 2
	case CoverageHail:
		return 3
	case CoverageFlooding:
		return 4
	default:
		return 0
	}
}

// IsValid checks if the coverage type is a known value.
func (c CoverageType) IsValid() bool {
	return c.Code() != 0
}

// ParseCoverageType converts a string to a CoverageType.
func ParseCoverageType(s string) (CoverageType, error) {
	c := CoverageType(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown coverage type: %q", s)
	}
	return c, nil
}

// CoverageFromCode resolves a numeric product code to its coverage type.
func CoverageFromCode(code int) (CoverageType, error) {
	for _, c := range AllCoverages() {
		if c.Code() == code {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown coverage code: %d", code)
}

// RiskLevel is the qualitative band assigned to a risk probability.
type RiskLevel string

const (
	RiskLevelVeryLow RiskLevel = "very_low"
	RiskLevelLow     RiskLevel = "low"
	RiskLevelMedium  RiskLevel = "medium"
	RiskLevelHigh    RiskLevel = "high"
)

// ClassifyProbability maps a 0..1 probability onto a risk level.
func ClassifyProbability(p float64) RiskLevel {
	switch {
	case p >= 0.7:
		return RiskLevelHigh
	case p >= 0.4:
		return RiskLevelMedium
	case p >= 0.2:
		return RiskLevelLow
	default:
		return RiskLevelVeryLow
	}
}

// ClassifyScore maps a 0..100 score onto a risk level.
func ClassifyScore(score float64) RiskLevel {
	return ClassifyProbability(score / 100.0)
}

// PropertyType categorizes the insured dwelling.
type PropertyType string

const (
	PropertyHouse     PropertyType = "house"
	PropertyApartment PropertyType = "apartment"
	PropertyDuplex    PropertyType = "duplex"
	PropertyStudio    PropertyType = "studio"
)

// IsValid checks if the property type is a known value.
func (p PropertyType) IsValid() bool {
	switch p {
	case PropertyHouse, PropertyApartment, PropertyDuplex, PropertyStudio:
		return true
	}
	return false
}

// ValueTier buckets insured values for risk weighting.
type ValueTier string

const (
	ValueTierLow     ValueTier = "low"
	ValueTierMedium  ValueTier = "medium"
	ValueTierHigh    ValueTier = "high"
	ValueTierPremium ValueTier = "premium"
)

// TierForValue buckets an insured value (in policy currency) into a tier.
func TierForValue(insuredValue float64) ValueTier {
	switch {
	case insuredValue < 100_000:
		return ValueTierLow
	case insuredValue < 300_000:
		return ValueTierMedium
	case insuredValue < 500_000:
		return ValueTierHigh
	default:
		return ValueTierPremium
	}
}

// Season for the southern hemisphere.
type Season string

const (
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
)

// SeasonForMonth maps a calendar month to its southern-hemisphere season.
func SeasonForMonth(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonSummer
	case time.March, time.April, time.May:
		return SeasonAutumn
	case time.June, time.July, time.August:
		return SeasonWinter
	default:
		return SeasonSpring
	}
}

// WeatherSource records where a weather reading came from.
type WeatherSource string

const (
	WeatherSourceLive     WeatherSource = "live-api"
	WeatherSourceCache    WeatherSource = "cache"
	WeatherSourceFallback WeatherSource = "simulated-fallback"
)
