package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_ScanValueRoundTrip(t *testing.T) {
	m := JSONMap{"temperature_c": 28.5, "source": "live-api"}

	v, err := m.Value()
	require.NoError(t, err)

	var out JSONMap
	require.NoError(t, out.Scan(v))
	assert.Equal(t, 28.5, out["temperature_c"])
	assert.Equal(t, "live-api", out["source"])
}

func TestJSONMap_ScanNil(t *testing.T) {
	out := JSONMap{"stale": true}
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
}

func TestJSONMap_ScanUnsupportedType(t *testing.T) {
	var out JSONMap
	assert.Error(t, out.Scan(42))
}

func TestRiskFactorList_ScanString(t *testing.T) {
	var out RiskFactorList
	require.NoError(t, out.Scan(`[{"feature":"precipitation_mm","value":35,"importance":0.4}]`))
	require.Len(t, out, 1)
	assert.Equal(t, "precipitation_mm", out[0].Feature)
	assert.Equal(t, 0.4, out[0].Importance)
}

func TestNilValuesProduceNilDriverValues(t *testing.T) {
	var m JSONMap
	v, err := m.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var rl RiskFactorList
	v, err = rl.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestToJSONMap(t *testing.T) {
	m, err := ToJSONMap(PropertyFeatures{AgeYears: 12, PropertyType: PropertyHouse, ValueTier: ValueTierMedium})
	require.NoError(t, err)
	assert.Equal(t, float64(12), m["age_years"])
	assert.Equal(t, "house", m["property_type"])
}
