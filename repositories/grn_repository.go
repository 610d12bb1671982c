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

type GRNRepository struct {
	db *gorm.DB
}

func NewGRNRepository(db *gorm.DB) *GRNRepository {
	return &GRNRepository{db: db}
}

func (r *GRNRepository) GetPOWithItems(poID uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.Preload("Items").First(&po, poID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase order %d not found", poID)
		}
		return nil, apperr.Persistence(err)
	}
	return &po, nil
}

func (r *GRNRepository) GetPOItem(poItemID uint) (*models.PurchaseOrderItem, error) {
	var item models.PurchaseOrderItem
	err := r.db.First(&item, poItemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase order item %d not found", poItemID)
		}
		return nil, apperr.Persistence(err)
	}
	return &item, nil
}

func (r *GRNRepository) GetGRNHeader(grnID uint) (*models.GRNHeader, error) {
	var grn models.GRNHeader
	err := r.db.Preload("Items").First(&grn, grnID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("GRN %d not found", grnID)
		}
		return nil, apperr.Persistence(err)
	}
	return &grn, nil
}

func (r *GRNRepository) GetGRNItem(grnItemID uint) (*models.GRNItem, error) {
	var item models.GRNItem
	err := r.db.First(&item, grnItemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("GRN item %d not found", grnItemID)
		}
		return nil, apperr.Persistence(err)
	}
	return &item, nil
}

// GetGRNItemsForPOItem returns every GRN line referencing the PO line. The
// reconciliation reads these inside its own transaction so concurrent GRNs
// cannot produce a lost update on the derived status.
func (r *GRNRepository) GetGRNItemsForPOItem(poItemID uint) ([]models.GRNItem, error) {
	var items []models.GRNItem
	err := r.db.Where("purchase_order_item_id = ?", poItemID).Order("id ASC").Find(&items).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

func (r *GRNRepository) GetPendingExcessApproval(grnItemID uint) (*models.GrnExcessApproval, error) {
	var approval models.GrnExcessApproval
	err := r.db.Where("grn_item_id = ? AND status = ?", grnItemID, models.ExcessPending).
		First(&approval).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no pending excess approval for GRN item %d", grnItemID)
		}
		return nil, apperr.Persistence(err)
	}
	return &approval, nil
}

// GenerateGrnNo builds GR<yymmdd><seq>, resetting the sequence per day.
func (r *GRNRepository) GenerateGrnNo() (string, error) {
	var lastGrn models.GRNHeader
	if err := r.db.Last(&lastGrn).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Persistence(err)
	}

	currentDate := time.Now().Format("060102")

	var grnNo string
	if lastGrn.GrnNo != "" && len(lastGrn.GrnNo) >= 12 {
		lastDatePart := lastGrn.GrnNo[2:8]
		lastSequenceStr := lastGrn.GrnNo[len(lastGrn.GrnNo)-4:]

		if currentDate != lastDatePart {
			grnNo = fmt.Sprintf("GR%s%04d", currentDate, 1)
		} else {
			lastSequenceInt, _ := strconv.Atoi(lastSequenceStr)
			grnNo = fmt.Sprintf("GR%s%04d", currentDate, lastSequenceInt+1)
		}
	} else {
		grnNo = fmt.Sprintf("GR%s%04d", currentDate, 1)
	}

	return grnNo, nil
}

type GRNListRow struct {
	ID           uint   `json:"id"`
	GrnNo        string `json:"grn_no"`
	PoNo         string `json:"po_no"`
	SupplierName string `json:"supplier_name"`
	GrnDate      string `json:"grn_date"`
	Status       string `json:"status"`
	TotalLine    int    `json:"total_line"`
	CreatedAt    string `json:"created_at"`
}

func (r *GRNRepository) ListGRNs() ([]GRNListRow, error) {
	var rows []GRNListRow
	sql := `WITH detail AS (
				SELECT grn_header_id, COUNT(item_code) AS total_line
				FROM grn_items
				WHERE deleted_at IS NULL
				GROUP BY grn_header_id
			)
			SELECT a.id, a.grn_no, a.grn_date, a.status, a.created_at,
			b.po_no, b.supplier_name,
			COALESCE(d.total_line, 0) AS total_line
			FROM grn_headers a
			LEFT JOIN purchase_orders b ON a.purchase_order_id = b.id
			LEFT JOIN detail d ON a.id = d.grn_header_id
			WHERE a.deleted_at IS NULL
			ORDER BY a.created_at DESC`

	if err := r.db.Raw(sql).Scan(&rows).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return rows, nil
}
