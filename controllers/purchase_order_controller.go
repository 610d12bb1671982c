package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
	"github.com/codigix/Aluminium-erp-sub006/services"
)

type PurchaseOrderController struct {
	DB  *gorm.DB
	grn *services.GRNService
}

func NewPurchaseOrderController(DB *gorm.DB) *PurchaseOrderController {
	return &PurchaseOrderController{
		DB:  DB,
		grn: services.NewGRNService(DB),
	}
}

type purchaseOrderItemRequest struct {
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity"`
	Uom      string `json:"uom"`
	WhsCode  string `json:"whs_code"`
}

type createPurchaseOrderRequest struct {
	SupplierName string                     `json:"supplier_name"`
	PoDate       string                     `json:"po_date"`
	Remarks      string                     `json:"remarks"`
	Items        []purchaseOrderItemRequest `json:"items"`
}

func (c *PurchaseOrderController) CreatePurchaseOrder(ctx *fiber.Ctx) error {
	var req createPurchaseOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var violations []apperr.FieldViolation
	if req.SupplierName == "" {
		violations = append(violations, apperr.FieldViolation{Field: "supplier_name", Message: "supplier_name is required"})
	}
	if len(req.Items) == 0 {
		violations = append(violations, apperr.FieldViolation{Field: "items", Message: "at least one line item is required"})
	}
	if len(violations) > 0 {
		return respondError(ctx, apperr.Validation("invalid purchase order", violations))
	}

	userID := currentUserID(ctx)

	var created models.PurchaseOrder
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		poNo, err := generatePoNo(tx)
		if err != nil {
			return err
		}

		poDate := req.PoDate
		if poDate == "" {
			poDate = time.Now().Format("2006-01-02")
		}

		created = models.PurchaseOrder{
			PoNo:         poNo,
			SupplierName: req.SupplierName,
			PoDate:       poDate,
			Status:       models.POOrdered,
			Remarks:      req.Remarks,
			CreatedBy:    userID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperr.Persistence(err)
		}

		for i, item := range req.Items {
			qty, perr := parseQuantity(i, item.Quantity)
			if perr != nil {
				return perr
			}
			whsCode := item.WhsCode
			if whsCode == "" {
				whsCode = config.DefaultWhsCode
			}
			line := models.PurchaseOrderItem{
				PurchaseOrderID: created.ID,
				ItemCode:        item.ItemCode,
				ItemName:        item.ItemName,
				Quantity:        qty,
				Uom:             item.Uom,
				WhsCode:         whsCode,
				Status:          models.POItemOpen,
				CreatedBy:       userID,
			}
			if err := tx.Create(&line).Error; err != nil {
				return apperr.Persistence(err)
			}
			created.Items = append(created.Items, line)
		}
		return nil
	})
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    created,
	})
}

func (c *PurchaseOrderController) GetPurchaseOrderByID(ctx *fiber.Ctx) error {
	poID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid purchase order id", nil))
	}

	repo := repositories.NewGRNRepository(c.DB)
	po, err := repo.GetPOWithItems(uint(poID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    po,
	})
}

// GetPurchaseOrderBalance reports the reconciliation projection without
// touching stored statuses.
func (c *PurchaseOrderController) GetPurchaseOrderBalance(ctx *fiber.Ctx) error {
	poID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid purchase order id", nil))
	}

	balance, err := c.grn.CalculatePOBalance(uint(poID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    balance,
	})
}

// RefreshPurchaseOrderStatus recomputes line and header statuses from the
// full GRN history and persists them.
func (c *PurchaseOrderController) RefreshPurchaseOrderStatus(ctx *fiber.Ctx) error {
	poID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid purchase order id", nil))
	}

	balance, err := c.grn.UpdatePOStatus(uint(poID), currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    balance,
	})
}

func generatePoNo(tx *gorm.DB) (string, error) {
	prefix := "PO" + time.Now().Format("060102")

	var last models.PurchaseOrder
	err := tx.Where("po_no LIKE ?", prefix+"%").Order("po_no desc").First(&last).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return "", apperr.Persistence(err)
	}

	seq := 1
	if last.PoNo != "" {
		fmt.Sscanf(last.PoNo[len(prefix):], "%d", &seq)
		seq++
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
