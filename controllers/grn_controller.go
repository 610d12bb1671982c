package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
	"github.com/codigix/Aluminium-erp-sub006/services"
)

type GRNController struct {
	DB  *gorm.DB
	grn *services.GRNService
}

func NewGRNController(DB *gorm.DB) *GRNController {
	return &GRNController{
		DB:  DB,
		grn: services.NewGRNService(DB),
	}
}

// CreateGRNWithItems books one goods receipt with all its lines atomically;
// acceptance caps, shortage detection, excess approvals, ledger postings and
// the PO status recompute all happen in one transaction.
func (c *GRNController) CreateGRNWithItems(ctx *fiber.Ctx) error {
	var input services.CreateGRNInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	result, err := c.grn.CreateGRNWithItems(input, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (c *GRNController) GetAllGRNs(ctx *fiber.Ctx) error {
	repo := repositories.NewGRNRepository(c.DB)
	rows, err := repo.ListGRNs()
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

func (c *GRNController) GetGRNByID(ctx *fiber.Ctx) error {
	grnID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid grn id", nil))
	}

	repo := repositories.NewGRNRepository(c.DB)
	header, err := repo.GetGRNHeader(uint(grnID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    header,
	})
}

func (c *GRNController) UpdateGRNItem(ctx *fiber.Ctx) error {
	grnItemID, err := ctx.ParamsInt("grnItemId")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid grn item id", nil))
	}

	var patch services.GRNItemPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	item, err := c.grn.UpdateGRNItem(uint(grnItemID), patch, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

type excessDecisionBody struct {
	Notes string `json:"notes"`
}

func (c *GRNController) ApproveExcess(ctx *fiber.Ctx) error {
	grnItemID, err := ctx.ParamsInt("grnItemId")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid grn item id", nil))
	}

	var req excessDecisionBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	item, err := c.grn.ApproveExcessGRNItem(uint(grnItemID), req.Notes, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

func (c *GRNController) RejectExcess(ctx *fiber.Ctx) error {
	grnItemID, err := ctx.ParamsInt("grnItemId")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid grn item id", nil))
	}

	var req excessDecisionBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	item, err := c.grn.RejectExcessGRNItem(uint(grnItemID), req.Notes, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// GetPOItemBalance reports the received/accepted/rejected totals and the
// open balance for one purchase order line.
func (c *GRNController) GetPOItemBalance(ctx *fiber.Ctx) error {
	poItemID, err := ctx.ParamsInt("poItemId")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid po item id", nil))
	}

	balance, err := c.grn.CalculateItemBalance(uint(poItemID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    balance,
	})
}
