package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
	"github.com/codigix/Aluminium-erp-sub006/services"
)

type SalesOrderController struct {
	DB       *gorm.DB
	workflow *services.OrderWorkflowService
}

func NewSalesOrderController(DB *gorm.DB) *SalesOrderController {
	return &SalesOrderController{
		DB:       DB,
		workflow: services.NewOrderWorkflowService(DB),
	}
}

type salesOrderItemRequest struct {
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity"`
	Uom      string `json:"uom"`
	WhsCode  string `json:"whs_code"`
	Remarks  string `json:"remarks"`
}

type createSalesOrderRequest struct {
	CustomerName string                  `json:"customer_name"`
	CustomerPoNo string                  `json:"customer_po_no"`
	OrderDate    string                  `json:"order_date"`
	Remarks      string                  `json:"remarks"`
	Items        []salesOrderItemRequest `json:"items"`
}

func (c *SalesOrderController) CreateSalesOrder(ctx *fiber.Ctx) error {
	var req createSalesOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var violations []apperr.FieldViolation
	if req.CustomerName == "" {
		violations = append(violations, apperr.FieldViolation{Field: "customer_name", Message: "customer_name is required"})
	}
	if len(req.Items) == 0 {
		violations = append(violations, apperr.FieldViolation{Field: "items", Message: "at least one line item is required"})
	}
	if len(violations) > 0 {
		return respondError(ctx, apperr.Validation("invalid sales order", violations))
	}

	userID := currentUserID(ctx)

	var created models.SalesOrder
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewSalesOrderRepository(tx)

		orderNo, err := repo.GenerateOrderNo()
		if err != nil {
			return err
		}

		created = models.SalesOrder{
			OrderNo:           orderNo,
			CustomerName:      req.CustomerName,
			CustomerPoNo:      req.CustomerPoNo,
			Status:            models.OrderCreated,
			CurrentDepartment: models.DeptSales,
			OrderDate:         req.OrderDate,
			Remarks:           req.Remarks,
			CreatedBy:         userID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperr.Persistence(err)
		}

		for i, item := range req.Items {
			qty, perr := parseQuantity(i, item.Quantity)
			if perr != nil {
				return perr
			}
			line := models.SalesOrderItem{
				SalesOrderID: created.ID,
				ItemCode:     item.ItemCode,
				ItemName:     item.ItemName,
				ItemType:     models.InferItemType(item.ItemCode),
				Quantity:     qty,
				Uom:          item.Uom,
				Status:       models.ItemPending,
				WhsCode:      item.WhsCode,
				Remarks:      item.Remarks,
				CreatedBy:    userID,
			}
			if err := tx.Create(&line).Error; err != nil {
				return apperr.Persistence(err)
			}
			created.Items = append(created.Items, line)
		}

		return repo.AppendStatusLog(created.ID, "", created.Status, models.DeptSales, "order created", userID)
	})
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    created,
	})
}

func (c *SalesOrderController) GetAllSalesOrders(ctx *fiber.Ctx) error {
	repo := repositories.NewSalesOrderRepository(c.DB)
	rows, err := repo.ListOrders()
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

func (c *SalesOrderController) GetSalesOrderByID(ctx *fiber.Ctx) error {
	orderID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid order id", nil))
	}

	repo := repositories.NewSalesOrderRepository(c.DB)
	order, err := repo.GetOrder(uint(orderID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

type acceptRequestBody struct {
	Department models.Department `json:"department"`
}

// AcceptRequest runs the department hand-off for one order. The response
// carries whether the accept actually moved the order or was a no-op.
func (c *SalesOrderController) AcceptRequest(ctx *fiber.Ctx) error {
	orderID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid order id", nil))
	}

	var req acceptRequestBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	dept := req.Department
	if dept == "" {
		if d, ok := ctx.Locals("department").(string); ok {
			dept = models.Department(d)
		}
	}

	order, transitioned, err := c.workflow.AcceptRequest(uint(orderID), dept, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":      true,
		"transitioned": transitioned,
		"data":         order,
	})
}

type bulkAcceptRequestBody struct {
	OrderIDs   []uint            `json:"order_ids"`
	Department models.Department `json:"department"`
}

func (c *SalesOrderController) AcceptRequests(ctx *fiber.Ctx) error {
	var req bulkAcceptRequestBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if len(req.OrderIDs) == 0 {
		return respondError(ctx, apperr.Validation("no orders selected", []apperr.FieldViolation{
			{Field: "order_ids", Message: "at least one order id is required"},
		}))
	}

	orders, err := c.workflow.AcceptRequests(req.OrderIDs, req.Department, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

func (c *SalesOrderController) RejectRequest(ctx *fiber.Ctx) error {
	orderID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid order id", nil))
	}

	var req rejectRequestBody
	if err := ctx.BodyParser(&req); err != nil || req.Reason == "" {
		return respondError(ctx, apperr.Validation("invalid rejection", []apperr.FieldViolation{
			{Field: "reason", Message: "reason is required"},
		}))
	}

	order, err := c.workflow.RejectRequest(uint(orderID), req.Reason, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

func (c *SalesOrderController) RejectItem(ctx *fiber.Ctx) error {
	itemID, err := ctx.ParamsInt("itemId")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid item id", nil))
	}

	var req rejectRequestBody
	if err := ctx.BodyParser(&req); err != nil || req.Reason == "" {
		return respondError(ctx, apperr.Validation("invalid rejection", []apperr.FieldViolation{
			{Field: "reason", Message: "reason is required"},
		}))
	}

	item, err := c.workflow.RejectItem(uint(itemID), req.Reason, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

type approveDesignBody struct {
	Amount string `json:"amount"`
}

func (c *SalesOrderController) ApproveDesign(ctx *fiber.Ctx) error {
	orderID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid order id", nil))
	}

	var req approveDesignBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	order, err := c.workflow.ApproveDesignAndCreateQuotation(uint(orderID), req.Amount, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

type updateStatusBody struct {
	Status  models.OrderStatus `json:"status"`
	Remarks string             `json:"remarks"`
}

func (c *SalesOrderController) UpdateStatus(ctx *fiber.Ctx) error {
	orderID, err := ctx.ParamsInt("id")
	if err != nil {
		return respondError(ctx, apperr.Validation("invalid order id", nil))
	}

	var req updateStatusBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	order, err := c.workflow.UpdateSalesOrderStatus(uint(orderID), req.Status, currentUserID(ctx), req.Remarks)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

type bulkUpdateStatusBody struct {
	OrderIDs []uint             `json:"order_ids"`
	Status   models.OrderStatus `json:"status"`
	Remarks  string             `json:"remarks"`
}

func (c *SalesOrderController) UpdateStatuses(ctx *fiber.Ctx) error {
	var req bulkUpdateStatusBody
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if len(req.OrderIDs) == 0 {
		return respondError(ctx, apperr.Validation("no orders selected", []apperr.FieldViolation{
			{Field: "order_ids", Message: "at least one order id is required"},
		}))
	}

	orders, err := c.workflow.UpdateSalesOrderStatuses(req.OrderIDs, req.Status, currentUserID(ctx), req.Remarks)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}
