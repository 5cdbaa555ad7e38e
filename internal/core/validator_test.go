package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskradar/internal/types"
)

func validPolicy() types.PolicyInput {
	return types.PolicyInput{
		PolicyNumber: "POL-2026-001",
		PropertyType: types.PropertyHouse,
		InsuredValue: 250_000,
		PostalCode:   "01310-100",
	}
}

func TestValidateStruct_ValidPolicy(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateStruct(validPolicy()))
}

func TestValidateStruct_MissingFields(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(types.PolicyInput{})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)
	assert.Contains(t, appErr.Details, "policynumber")
	assert.Contains(t, appErr.Details, "insuredvalue")
}

func TestValidateStruct_InvalidValues(t *testing.T) {
	v := NewValidator()

	p := validPolicy()
	bad := 91.0
	p.Latitude = &bad

	err := v.ValidateStruct(p)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationInvalidPolicy, appErr.Code)
	assert.Equal(t, "lte=90", appErr.Details["latitude"])
}

func TestValidateStruct_InvalidPropertyType(t *testing.T) {
	v := NewValidator()

	p := validPolicy()
	p.PropertyType = types.PropertyType("castle")

	err := v.ValidateStruct(p)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationInvalidPolicy, appErr.Code)
}

func TestValidateStruct_ConstructionYearLowerBound(t *testing.T) {
	v := NewValidator()

	p := validPolicy()
	year := 1500
	p.ConstructionYear = &year

	err := v.ValidateStruct(p)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "gte=1800", appErr.Details["constructionyear"])
}
