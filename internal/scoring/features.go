// Package scoring implements coverage-specific risk models and the analysis
// manager that orchestrates them. Each coverage (electrical damage, windstorm,
// hail, flooding) has its own heuristic model with a fixed feature-importance
// table and a monthly seasonal multiplier; an optional trained classifier can
// be blended in when coefficient files are available.
package scoring

import (
	"strings"
	"time"
	"unicode"

	"riskradar/internal/types"
)

// Default property ages when the construction year is unknown.
// Apartments skew newer than standalone dwellings in the portfolio.
const (
	defaultAgeApartment = 15
	defaultAgeOther     = 25
)

// metroPrefixes are the two-digit postal prefixes of the major metropolitan
// regions covered by the portfolio.
var metroPrefixes = map[string]bool{
	"01": true, "02": true, "03": true, "04": true, "05": true,
	"06": true, "07": true, "08": true, "09": true, // Sao Paulo
	"20": true, "21": true, "22": true, "23": true, "24": true,
	"25": true, "26": true, "27": true, "28": true, // Rio de Janeiro
	"30": true, "31": true, "32": true, // Belo Horizonte
	"40": true, "41": true, "42": true, // Salvador
	"50": true, "51": true, "52": true, // Recife
	"60": true, "61": true, // Fortaleza
	"70": true, "71": true, "72": true, // Brasilia
	"80": true, "81": true, "82": true, // Curitiba
	"90": true, "91": true, "92": true, // Porto Alegre
}

// ExtractFeatures derives the model-ready property view from a policy.
// Derivation is deterministic: the same policy and reference time always
// produce the same features.
func ExtractFeatures(p types.PolicyInput, now time.Time) types.PropertyFeatures {
	age := defaultAgeOther
	if p.PropertyType == types.PropertyApartment {
		age = defaultAgeApartment
	}
	if p.ConstructionYear != nil && *p.ConstructionYear > 0 {
		age = now.Year() - *p.ConstructionYear
		if age < 0 {
			age = 0
		}
	}

	prefix := postalPrefix(p.PostalCode)
	tier := types.TierForValue(p.InsuredValue)

	return types.PropertyFeatures{
		AgeYears:         age,
		PropertyType:     p.PropertyType,
		InsuredValue:     p.InsuredValue,
		ValueTier:        tier,
		PostalPrefix:     prefix,
		Metropolitan:     metroPrefixes[prefix],
		ConstructionRisk: constructionRisk(age, p.PropertyType, tier),
	}
}

// postalPrefix normalizes a postal code and returns its first two digits.
func postalPrefix(code string) string {
	var b strings.Builder
	for _, r := range code {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 2 {
		return ""
	}
	return digits[:2]
}

// constructionRisk is a 0..1 composite of age, dwelling type, and value tier.
// Older, low-value standalone dwellings score worst.
func constructionRisk(age int, propertyType types.PropertyType, tier types.ValueTier) float64 {
	risk := 0.0

	switch {
	case age > 30:
		risk += 0.3
	case age > 20:
		risk += 0.2
	case age > 10:
		risk += 0.1
	}

	switch propertyType {
	case types.PropertyHouse:
		risk += 0.2
	case types.PropertyDuplex:
		risk += 0.3
	case types.PropertyApartment:
		risk += 0.1
	case types.PropertyStudio:
		risk += 0.15
	default:
		risk += 0.2
	}

	switch tier {
	case types.ValueTierLow:
		risk += 0.3
	case types.ValueTierMedium:
		risk += 0.2
	case types.ValueTierHigh:
		risk += 0.1
	case types.ValueTierPremium:
		risk += 0.05
	}

	return clamp01(risk)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
