package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
)

// structValidationError converts validator tag failures into the field-level
// validation error the API promises.
func structValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Validation("invalid request body", nil)
	}

	var violations []apperr.FieldViolation
	for _, fieldErr := range validationErrors {
		violations = append(violations, apperr.FieldViolation{
			Field:   strings.ToLower(fieldErr.Field()),
			Message: fmt.Sprintf("failed %q validation", fieldErr.Tag()),
		})
	}
	return apperr.Validation("invalid request body", violations)
}

func parseDecimalField(field, value string) (decimal.Decimal, *apperr.AppError) {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid decimal value", []apperr.FieldViolation{
			{Field: field, Message: fmt.Sprintf("%q is not a valid decimal", value)},
		})
	}
	return parsed, nil
}
