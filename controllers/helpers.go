package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
)

// statusForKind maps the error taxonomy onto HTTP status codes. Anything
// unknown falls through to 500.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(ctx *fiber.Ctx, err error) error {
	appErr := apperr.From(err)
	body := fiber.Map{
		"success": false,
		"error":   appErr.Kind,
		"message": appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	return ctx.Status(statusForKind(appErr.Kind)).JSON(body)
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(ctx *fiber.Ctx) int {
	if userID, ok := ctx.Locals("userID").(float64); ok {
		return int(userID)
	}
	return 0
}

// parseQuantity parses a request line quantity, reporting the offending
// items[i] field on failure.
func parseQuantity(index int, value string) (decimal.Decimal, error) {
	field := fmt.Sprintf("items[%d].quantity", index)
	if value == "" {
		return decimal.Zero, apperr.Validation("invalid quantity", []apperr.FieldViolation{
			{Field: field, Message: "quantity is required"},
		})
	}
	qty, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid quantity", []apperr.FieldViolation{
			{Field: field, Message: "quantity must be a decimal number"},
		})
	}
	return qty, nil
}
