package core

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"riskradar/internal/types"
)

// Validator wraps go-playground/validator so handlers share one configured
// instance. Struct violations surface as a single AppError with a per-field
// details map instead of the library's joined error string.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the default tag set.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct checks the struct's validate tags. On violation it returns
// an AppError with code validation_missing_required_field for absent required
// fields, or validation_invalid_policy for present-but-invalid values, with a
// details map of field -> constraint.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation failed", err)
	}

	details := make(map[string]any, len(verrs))
	missingOnly := true
	for _, fe := range verrs {
		details[fieldName(fe)] = constraintText(fe)
		if fe.Tag() != "required" {
			missingOnly = false
		}
	}

	code := types.ErrCodeValidationInvalidPolicy
	message := "request failed validation"
	if missingOnly {
		code = types.ErrCodeValidationMissingField
		message = "required fields are missing"
	}
	return types.NewAppErrorWithDetails(code, message, nil, details)
}

// fieldName lowercases the first segment of the struct field name for client
// facing messages. Validation errors report Go field names; JSON tags on the
// domain structs are snake_case versions of the same words.
func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func constraintText(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
}
