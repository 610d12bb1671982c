package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
)

type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(DB *gorm.DB) *InventoryController {
	return &InventoryController{DB: DB}
}

func (c *InventoryController) GetStockBalances(ctx *fiber.Ctx) error {
	repo := repositories.NewLedgerRepository(c.DB)
	balances, err := repo.ListBalances()
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    balances,
	})
}

func (c *InventoryController) GetStockBalance(ctx *fiber.Ctx) error {
	itemCode := ctx.Params("itemCode")
	whsCode := ctx.Query("whs_code", config.DefaultWhsCode)

	repo := repositories.NewLedgerRepository(c.DB)
	balance, err := repo.GetBalance(itemCode, whsCode)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"item_code":       itemCode,
			"whs_code":        whsCode,
			"current_balance": balance,
		},
	})
}

func (c *InventoryController) GetLedgerEntries(ctx *fiber.Ctx) error {
	itemCode := ctx.Query("item_code")
	whsCode := ctx.Query("whs_code")
	limit, err := strconv.Atoi(ctx.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	repo := repositories.NewLedgerRepository(c.DB)
	entries, err := repo.ListEntries(itemCode, whsCode, limit)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    entries,
	})
}

func (c *InventoryController) GetEntriesByReference(ctx *fiber.Ctx) error {
	refType := ctx.Params("refType")
	refID, err := ctx.ParamsInt("refId")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid reference id", nil))
	}

	repo := repositories.NewLedgerRepository(c.DB)
	entries, err := repo.GetEntriesByReference(refType, uint(refID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    entries,
	})
}

// VerifyBalance recomputes the signed ledger sum for one item/warehouse
// pair and reports it next to the cached balance.
func (c *InventoryController) VerifyBalance(ctx *fiber.Ctx) error {
	itemCode := ctx.Params("itemCode")
	whsCode := ctx.Query("whs_code", config.DefaultWhsCode)

	repo := repositories.NewLedgerRepository(c.DB)

	cached, err := repo.GetBalance(itemCode, whsCode)
	if err != nil {
		return respondError(ctx, err)
	}
	recomputed, err := repo.SignedSum(itemCode, whsCode)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"item_code":  itemCode,
			"whs_code":   whsCode,
			"cached":     cached,
			"recomputed": recomputed,
			"consistent": cached.Equal(recomputed),
		},
	})
}

type adjustmentRequest struct {
	ItemCode string `json:"item_code"`
	WhsCode  string `json:"whs_code"`
	Quantity string `json:"quantity"`
	Remarks  string `json:"remarks"`
}

// CreateAdjustment posts a signed manual correction to the ledger.
func (c *InventoryController) CreateAdjustment(ctx *fiber.Ctx) error {
	var req adjustmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	qty, perr := parseQuantity(0, req.Quantity)
	if perr != nil {
		return respondError(ctx, perr)
	}
	whsCode := req.WhsCode
	if whsCode == "" {
		whsCode = config.DefaultWhsCode
	}

	var entry *models.LedgerEntry
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = repositories.NewLedgerRepository(tx).Post(repositories.PostingInput{
			ItemCode:    req.ItemCode,
			WhsCode:     whsCode,
			Direction:   models.DirectionAdjustment,
			PostingType: models.PostingAdjustment,
			Quantity:    qty,
			Remarks:     req.Remarks,
			UserID:      currentUserID(ctx),
		})
		return txErr
	})
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    entry,
	})
}

// ExportExcel streams the current stock balances as an xlsx report.
func (c *InventoryController) ExportExcel(ctx *fiber.Ctx) error {
	repo := repositories.NewLedgerRepository(c.DB)
	balances, err := repo.ListBalances()
	if err != nil {
		return respondError(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Item Code")
	f.SetCellValue(sheet, "B1", "Whs Code")
	f.SetCellValue(sheet, "C1", "Current Balance")

	for i, item := range balances {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), item.ItemCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), item.WhsCode)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), item.CurrentBalance.String())
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="stock_balances.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
