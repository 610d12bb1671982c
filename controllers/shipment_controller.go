package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
	"github.com/codigix/Aluminium-erp-sub006/services"
)

type ShipmentController struct {
	DB       *gorm.DB
	shipment *services.ShipmentService
}

func NewShipmentController(DB *gorm.DB) *ShipmentController {
	return &ShipmentController{
		DB:       DB,
		shipment: services.NewShipmentService(DB),
	}
}

func (c *ShipmentController) GetAllShipments(ctx *fiber.Ctx) error {
	repo := repositories.NewShipmentRepository(c.DB)
	rows, err := repo.ListShipments()
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

func (c *ShipmentController) GetShipmentByID(ctx *fiber.Ctx) error {
	shipmentID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid shipment id", nil))
	}

	repo := repositories.NewShipmentRepository(c.DB)
	shipment, err := repo.GetShipment(uint(shipmentID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    shipment,
	})
}

type updateShipmentStatusBody struct {
	Status models.ShipmentStatus `json:"status"`
}

// UpdateStatus is the single entry point for shipment lifecycle changes;
// the dispatch side effects (ledger issue, challan, notification) ride the
// same transaction.
func (c *ShipmentController) UpdateStatus(ctx *fiber.Ctx) error {
	shipmentID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid shipment id", nil))
	}

	var req updateShipmentStatusBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	shipment, err := c.shipment.UpdateShipmentStatus(uint(shipmentID), req.Status, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    shipment,
	})
}

func (c *ShipmentController) DeleteShipment(ctx *fiber.Ctx) error {
	shipmentID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid shipment id", nil))
	}

	if err := c.shipment.DeleteShipmentOrder(uint(shipmentID), currentUserID(ctx)); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Shipment deleted",
	})
}

func (c *ShipmentController) GetChallans(ctx *fiber.Ctx) error {
	shipmentID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid shipment id", nil))
	}

	repo := repositories.NewShipmentRepository(c.DB)
	challans, err := repo.GetChallansForShipment(uint(shipmentID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    challans,
	})
}

type vendorReturnRequest struct {
	QCInspectionNo string                       `json:"qc_inspection_no"`
	VendorName     string                       `json:"vendor_name"`
	Shipment       services.CreateShipmentInput `json:"shipment"`
}

// CreateVendorReturn opens a shipment that sends rejected material back to
// the vendor. It has no sales order behind it.
func (c *ShipmentController) CreateVendorReturn(ctx *fiber.Ctx) error {
	var req vendorReturnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.QCInspectionNo == "" {
		return respondError(ctx, apperr.Validation("invalid vendor return", []apperr.FieldViolation{
			{Field: "qc_inspection_no", Message: "qc_inspection_no is required"},
		}))
	}

	shipment, err := c.shipment.CreateVendorReturnShipment(req.QCInspectionNo, req.VendorName, req.Shipment, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    shipment,
	})
}
