package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/services"
)

type FinalQCController struct {
	DB       *gorm.DB
	shipment *services.ShipmentService
}

func NewFinalQCController(DB *gorm.DB) *FinalQCController {
	return &FinalQCController{
		DB:       DB,
		shipment: services.NewShipmentService(DB),
	}
}

// Complete marks the order's final quality check as passed.
func (c *FinalQCController) Complete(ctx *fiber.Ctx) error {
	orderID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid order id", nil))
	}

	order, err := c.shipment.CompleteFinalQC(uint(orderID), currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// CreateShipment hands a quality-approved order over to shipment by opening
// a shipment order with the customer snapshot and finished-goods lines.
func (c *FinalQCController) CreateShipment(ctx *fiber.Ctx) error {
	orderID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid order id", nil))
	}

	var input services.CreateShipmentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	shipment, err := c.shipment.CreateShipmentForOrder(uint(orderID), input, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    shipment,
	})
}
