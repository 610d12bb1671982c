package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/models"
)

type SalesOrderRepository struct {
	db *gorm.DB
}

func NewSalesOrderRepository(db *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: db}
}

func (r *SalesOrderRepository) GetOrder(orderID uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	err := r.db.Preload("Items").First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sales order %d not found", orderID)
		}
		return nil, apperr.Persistence(err)
	}
	return &order, nil
}

func (r *SalesOrderRepository) GetOrdersByIDs(orderIDs []uint) ([]models.SalesOrder, error) {
	var orders []models.SalesOrder
	if err := r.db.Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return orders, nil
}

func (r *SalesOrderRepository) SaveOrder(order *models.SalesOrder) error {
	if err := r.db.Save(order).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// MarkPendingItemsAccepted flips PENDING (or unset) items to ACCEPTED. It is
// one of the two writes every accept performs alongside the status update.
func (r *SalesOrderRepository) MarkPendingItemsAccepted(orderID uint, userID int) error {
	err := r.db.Model(&models.SalesOrderItem{}).
		Where("sales_order_id = ? AND (status = ? OR status IS NULL OR status = '')",
			orderID, models.ItemPending).
		Updates(map[string]interface{}{
			"status":     models.ItemAccepted,
			"updated_by": userID,
		}).Error
	if err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (r *SalesOrderRepository) AppendStatusLog(orderID uint, from, to models.OrderStatus, dept models.Department, remarks string, userID int) error {
	logEntry := models.OrderStatusLog{
		SalesOrderID: orderID,
		FromStatus:   from,
		ToStatus:     to,
		Department:   dept,
		Remarks:      remarks,
		CreatedBy:    userID,
	}
	if err := r.db.Create(&logEntry).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (r *SalesOrderRepository) AppendRejection(orderID uint, itemID *uint, dept models.Department, reason string, userID int) error {
	rejection := models.OrderRejection{
		SalesOrderID:     orderID,
		SalesOrderItemID: itemID,
		Department:       dept,
		Reason:           reason,
		RejectedBy:       userID,
	}
	if err := r.db.Create(&rejection).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// EnsureDesignOrder reuses an existing design order for the sales order or
// creates a fresh IN_DESIGN one. Runs on the caller's transaction handle so
// a creation failure rolls the whole accept back.
func (r *SalesOrderRepository) EnsureDesignOrder(orderID uint, userID int) (*models.DesignOrder, error) {
	var existing models.DesignOrder
	err := r.db.Where("sales_order_id = ?", orderID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Persistence(err)
	}

	designNo, err := r.generateDesignNo()
	if err != nil {
		return nil, err
	}

	designOrder := models.DesignOrder{
		DesignNo:     designNo,
		SalesOrderID: orderID,
		Status:       models.DesignInDesign,
		CreatedBy:    userID,
	}
	if err := r.db.Create(&designOrder).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return &designOrder, nil
}

func (r *SalesOrderRepository) generateDesignNo() (string, error) {
	var lastDesign models.DesignOrder
	if err := r.db.Last(&lastDesign).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Persistence(err)
	}

	currentDate := time.Now().Format("060102")

	if lastDesign.DesignNo != "" && len(lastDesign.DesignNo) >= 12 {
		lastDatePart := lastDesign.DesignNo[2:8]
		lastSequenceStr := lastDesign.DesignNo[len(lastDesign.DesignNo)-4:]

		if currentDate == lastDatePart {
			lastSequenceInt, _ := strconv.Atoi(lastSequenceStr)
			return fmt.Sprintf("DS%s%04d", currentDate, lastSequenceInt+1), nil
		}
	}

	return fmt.Sprintf("DS%s%04d", currentDate, 1), nil
}

func (r *SalesOrderRepository) GenerateOrderNo() (string, error) {
	var lastOrder models.SalesOrder
	if err := r.db.Last(&lastOrder).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Persistence(err)
	}

	currentDate := time.Now().Format("060102")

	if lastOrder.OrderNo != "" && len(lastOrder.OrderNo) >= 12 {
		lastDatePart := lastOrder.OrderNo[2:8]
		lastSequenceStr := lastOrder.OrderNo[len(lastOrder.OrderNo)-4:]

		if currentDate == lastDatePart {
			lastSequenceInt, _ := strconv.Atoi(lastSequenceStr)
			return fmt.Sprintf("SO%s%04d", currentDate, lastSequenceInt+1), nil
		}
	}

	return fmt.Sprintf("SO%s%04d", currentDate, 1), nil
}

type SalesOrderListRow struct {
	ID                uint   `json:"id"`
	OrderNo           string `json:"order_no"`
	CustomerName      string `json:"customer_name"`
	Status            string `json:"status"`
	CurrentDepartment string `json:"current_department"`
	RequestAccepted   bool   `json:"request_accepted"`
	TotalLine         int    `json:"total_line"`
	OrderDate         string `json:"order_date"`
}

func (r *SalesOrderRepository) ListOrders() ([]SalesOrderListRow, error) {
	var rows []SalesOrderListRow
	sql := `WITH detail AS (
				SELECT sales_order_id, COUNT(item_code) AS total_line
				FROM sales_order_items
				WHERE deleted_at IS NULL
				GROUP BY sales_order_id
			)
			SELECT a.id, a.order_no, a.customer_name, a.status,
			a.current_department, a.request_accepted, a.order_date,
			COALESCE(d.total_line, 0) AS total_line
			FROM sales_orders a
			LEFT JOIN detail d ON a.id = d.sales_order_id
			WHERE a.deleted_at IS NULL
			ORDER BY a.created_at DESC`

	if err := r.db.Raw(sql).Scan(&rows).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return rows, nil
}
