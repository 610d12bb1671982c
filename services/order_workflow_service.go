package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
)

// TransitionKey identifies one row of the accept table: which department is
// accepting and what the order's status currently is.
type TransitionKey struct {
	Department models.Department
	Status     models.OrderStatus
}

// Transition is the outcome of an accept. ResolveMaterial marks the
// procurement rows whose outcome depends on stock availability.
type Transition struct {
	NextStatus        models.OrderStatus
	NextDepartment    models.Department
	CreateDesignOrder bool
	ResolveMaterial   bool
}

// procurementStatuses is the CREATED..procurement-in-progress window in
// which PROCUREMENT may pick an order up.
var procurementStatuses = []models.OrderStatus{
	models.OrderCreated,
	models.OrderDesignInReview,
	models.OrderDesignApproved,
	models.OrderMaterialPurchaseInProgress,
}

// AcceptTransitions is the accept state machine as data. A (department,
// status) pair absent from this map is a deliberate no-op, not an error.
var AcceptTransitions = buildAcceptTransitions()

func buildAcceptTransitions() map[TransitionKey]Transition {
	table := make(map[TransitionKey]Transition)

	add := func(dept models.Department, statuses []models.OrderStatus, t Transition) {
		for _, status := range statuses {
			table[TransitionKey{Department: dept, Status: status}] = t
		}
	}

	add(models.DeptInventory,
		[]models.OrderStatus{models.OrderCreated},
		Transition{NextStatus: models.OrderDesignInReview, NextDepartment: models.DeptDesign, CreateDesignOrder: true})

	add(models.DeptDesign,
		[]models.OrderStatus{models.OrderCreated, models.OrderDesignInReview},
		Transition{NextStatus: models.OrderDesignInReview, NextDepartment: models.DeptDesign, CreateDesignOrder: true})

	add(models.DeptProcurement, procurementStatuses,
		Transition{ResolveMaterial: true})

	add(models.DeptProduction,
		[]models.OrderStatus{models.OrderMaterialReady, models.OrderInProduction},
		Transition{NextStatus: models.OrderProductionCompleted, NextDepartment: models.DeptQuality})

	add(models.DeptQuality,
		[]models.OrderStatus{models.OrderProductionCompleted, models.OrderQCInProgress, models.OrderQCRejected},
		Transition{NextStatus: models.OrderQCInProgress, NextDepartment: models.DeptQuality})

	add(models.DeptShipment,
		[]models.OrderStatus{models.OrderReadyForShipment, models.OrderQCApproved, models.OrderReadyForDispatch},
		Transition{NextStatus: models.OrderReadyForShipment, NextDepartment: models.DeptShipment})

	return table
}

// ResolveAccept evaluates the table for one pair. The boolean reports whether
// the pair transitions at all; materialAvailable only matters for the
// procurement rows.
func ResolveAccept(dept models.Department, status models.OrderStatus, materialAvailable bool) (models.OrderStatus, models.Department, Transition, bool) {
	t, ok := AcceptTransitions[TransitionKey{Department: dept, Status: status}]
	if !ok {
		return status, "", Transition{}, false
	}

	if t.ResolveMaterial {
		if materialAvailable {
			return models.OrderMaterialReady, models.DeptProduction, t, true
		}
		return models.OrderMaterialPurchaseInProgress, models.DeptProcurement, t, true
	}

	return t.NextStatus, t.NextDepartment, t, true
}

type OrderWorkflowService struct {
	db *gorm.DB
}

func NewOrderWorkflowService(db *gorm.DB) *OrderWorkflowService {
	return &OrderWorkflowService{db: db}
}

// AcceptRequest moves the order per the accept table and flags it picked up.
// Pairs outside the table leave status and department untouched but still set
// request_accepted. The status write, item accepts, status log and any
// design-order creation share one transaction.
func (s *OrderWorkflowService) AcceptRequest(orderID uint, dept models.Department, userID int) (*models.SalesOrder, bool, error) {
	var order *models.SalesOrder
	var transitioned bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, transitioned, err = s.acceptRequestTx(tx, orderID, dept, userID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return order, transitioned, nil
}

// AcceptRequests is the bulk variant: every id transitions or none does.
func (s *OrderWorkflowService) AcceptRequests(orderIDs []uint, dept models.Department, userID int) ([]models.SalesOrder, error) {
	var orders []models.SalesOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, orderID := range orderIDs {
			order, _, err := s.acceptRequestTx(tx, orderID, dept, userID)
			if err != nil {
				return err
			}
			orders = append(orders, *order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderWorkflowService) acceptRequestTx(tx *gorm.DB, orderID uint, dept models.Department, userID int) (*models.SalesOrder, bool, error) {
	repo := repositories.NewSalesOrderRepository(tx)

	order, err := repo.GetOrder(orderID)
	if err != nil {
		return nil, false, err
	}

	materialAvailable := false
	if _, ok := AcceptTransitions[TransitionKey{Department: dept, Status: order.Status}]; ok && dept == models.DeptProcurement {
		materialAvailable, err = s.materialAvailable(tx, order)
		if err != nil {
			return nil, false, err
		}
	}

	newStatus, newDept, transition, ok := ResolveAccept(dept, order.Status, materialAvailable)

	prevStatus := order.Status
	order.RequestAccepted = true
	order.UpdatedBy = userID

	if !ok {
		// Intentional idempotence: unknown pairs only record the pickup.
		if err := repo.SaveOrder(order); err != nil {
			return nil, false, err
		}
		return order, false, nil
	}

	order.Status = newStatus
	order.CurrentDepartment = newDept

	if err := repo.SaveOrder(order); err != nil {
		return nil, false, err
	}
	if err := repo.MarkPendingItemsAccepted(order.ID, userID); err != nil {
		return nil, false, err
	}
	if err := repo.AppendStatusLog(order.ID, prevStatus, newStatus, dept, "accepted by "+string(dept), userID); err != nil {
		return nil, false, err
	}

	// Mandated side effect: design ownership needs a design order in the
	// same transaction, or the whole accept rolls back.
	if transition.CreateDesignOrder || newDept == models.DeptDesign {
		if _, err := repo.EnsureDesignOrder(order.ID, userID); err != nil {
			return nil, false, err
		}
	}

	return order, true, nil
}

// materialAvailable reports whether the current stock balance covers every
// line of the order at its warehouse.
func (s *OrderWorkflowService) materialAvailable(tx *gorm.DB, order *models.SalesOrder) (bool, error) {
	ledger := repositories.NewLedgerRepository(tx)

	for _, item := range order.Items {
		whsCode := item.WhsCode
		if whsCode == "" {
			whsCode = config.DefaultWhsCode
		}
		balance, err := ledger.GetBalance(item.ItemCode, whsCode)
		if err != nil {
			return false, err
		}
		if balance.LessThan(item.Quantity) {
			return false, nil
		}
	}
	return true, nil
}

// RejectRequest hands the order back to sales with a design query and an
// immutable rejection record. Sibling item rows are left untouched.
func (s *OrderWorkflowService) RejectRequest(orderID uint, reason string, userID int) (*models.SalesOrder, error) {
	var order *models.SalesOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewSalesOrderRepository(tx)

		var err error
		order, err = repo.GetOrder(orderID)
		if err != nil {
			return err
		}

		prevStatus := order.Status
		order.Status = models.OrderDesignQuery
		order.CurrentDepartment = models.DeptSales
		order.RequestAccepted = false
		order.UpdatedBy = userID

		if err := repo.SaveOrder(order); err != nil {
			return err
		}
		if err := repo.AppendRejection(order.ID, nil, models.DeptSales, reason, userID); err != nil {
			return err
		}
		return repo.AppendStatusLog(order.ID, prevStatus, order.Status, models.DeptSales, reason, userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RejectItem writes the immutable per-item rejection reason. The parent
// order's status is not touched by an item rejection.
func (s *OrderWorkflowService) RejectItem(orderItemID uint, reason string, userID int) (*models.SalesOrderItem, error) {
	var item models.SalesOrderItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, orderItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("sales order item %d not found", orderItemID)
			}
			return apperr.Persistence(err)
		}

		item.Status = models.ItemRejected
		item.UpdatedBy = userID
		if err := tx.Save(&item).Error; err != nil {
			return apperr.Persistence(err)
		}

		repo := repositories.NewSalesOrderRepository(tx)
		itemID := item.ID
		return repo.AppendRejection(item.SalesOrderID, &itemID, "", reason, userID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ApproveDesignAndCreateQuotation marks the design approved, creates the
// quotation and hands the order to procurement, all in one transaction.
func (s *OrderWorkflowService) ApproveDesignAndCreateQuotation(orderID uint, amount string, userID int) (*models.SalesOrder, error) {
	var order *models.SalesOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewSalesOrderRepository(tx)

		var err error
		order, err = repo.GetOrder(orderID)
		if err != nil {
			return err
		}

		if order.Status != models.OrderDesignInReview {
			return apperr.Conflict("order %s is %s, design approval requires %s",
				order.OrderNo, order.Status, models.OrderDesignInReview)
		}

		var designOrder models.DesignOrder
		if err := tx.Where("sales_order_id = ?", orderID).First(&designOrder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("design order for sales order %d not found", orderID)
			}
			return apperr.Persistence(err)
		}

		designOrder.Status = models.DesignApproved
		designOrder.UpdatedBy = userID
		if err := tx.Save(&designOrder).Error; err != nil {
			return apperr.Persistence(err)
		}

		quotationNo, err := s.generateQuotationNo(tx)
		if err != nil {
			return err
		}

		quotation := models.Quotation{
			QuotationNo:  quotationNo,
			SalesOrderID: order.ID,
			Status:       "ISSUED",
			CreatedBy:    userID,
		}
		if amount != "" {
			parsed, perr := parseDecimalField("amount", amount)
			if perr != nil {
				return perr
			}
			quotation.Amount = parsed
		}
		if err := tx.Create(&quotation).Error; err != nil {
			return apperr.Persistence(err)
		}

		prevStatus := order.Status
		quotationID := quotation.ID
		order.Status = models.OrderDesignApproved
		order.CurrentDepartment = models.DeptProcurement
		order.QuotationID = &quotationID
		order.UpdatedBy = userID

		if err := repo.SaveOrder(order); err != nil {
			return err
		}
		return repo.AppendStatusLog(order.ID, prevStatus, order.Status, models.DeptDesign, "design approved, quotation "+quotationNo, userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateSalesOrderStatus sets the status directly and appends an audit log
// row. Unknown status values fail validation before any write.
func (s *OrderWorkflowService) UpdateSalesOrderStatus(orderID uint, status models.OrderStatus, userID int, remarks string) (*models.SalesOrder, error) {
	if !slices.Contains(models.KnownOrderStatuses, status) {
		return nil, apperr.Validation("invalid sales order status", []apperr.FieldViolation{
			{Field: "status", Message: fmt.Sprintf("unknown status %q", status)},
		})
	}

	var order *models.SalesOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewSalesOrderRepository(tx)

		var err error
		order, err = repo.GetOrder(orderID)
		if err != nil {
			return err
		}

		prevStatus := order.Status
		order.Status = status
		order.UpdatedBy = userID

		if err := repo.SaveOrder(order); err != nil {
			return err
		}
		return repo.AppendStatusLog(order.ID, prevStatus, status, order.CurrentDepartment, remarks, userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateSalesOrderStatuses applies one status to an id set atomically.
func (s *OrderWorkflowService) UpdateSalesOrderStatuses(orderIDs []uint, status models.OrderStatus, userID int, remarks string) ([]models.SalesOrder, error) {
	if !slices.Contains(models.KnownOrderStatuses, status) {
		return nil, apperr.Validation("invalid sales order status", []apperr.FieldViolation{
			{Field: "status", Message: fmt.Sprintf("unknown status %q", status)},
		})
	}

	var orders []models.SalesOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewSalesOrderRepository(tx)

		for _, orderID := range orderIDs {
			order, err := repo.GetOrder(orderID)
			if err != nil {
				return err
			}

			prevStatus := order.Status
			order.Status = status
			order.UpdatedBy = userID

			if err := repo.SaveOrder(order); err != nil {
				return err
			}
			if err := repo.AppendStatusLog(order.ID, prevStatus, status, order.CurrentDepartment, remarks, userID); err != nil {
				return err
			}
			orders = append(orders, *order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderWorkflowService) generateQuotationNo(tx *gorm.DB) (string, error) {
	var lastQuotation models.Quotation
	if err := tx.Last(&lastQuotation).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Persistence(err)
	}

	currentDate := time.Now().Format("060102")

	if lastQuotation.QuotationNo != "" && len(lastQuotation.QuotationNo) >= 12 {
		lastDatePart := lastQuotation.QuotationNo[2:8]
		lastSequenceStr := lastQuotation.QuotationNo[len(lastQuotation.QuotationNo)-4:]

		if currentDate == lastDatePart {
			lastSequenceInt, _ := strconv.Atoi(lastSequenceStr)
			return fmt.Sprintf("QT%s%04d", currentDate, lastSequenceInt+1), nil
		}
	}

	return fmt.Sprintf("QT%s%04d", currentDate, 1), nil
}
