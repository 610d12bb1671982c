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

type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) GetShipment(shipmentID uint) (*models.ShipmentOrder, error) {
	var shipment models.ShipmentOrder
	err := r.db.Preload("Items").First(&shipment, shipmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("shipment order %d not found", shipmentID)
		}
		return nil, apperr.Persistence(err)
	}
	return &shipment, nil
}

func (r *ShipmentRepository) SaveShipment(shipment *models.ShipmentOrder) error {
	if err := r.db.Save(shipment).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (r *ShipmentRepository) AppendTrackingLog(shipmentID uint, from, to models.ShipmentStatus, remarks string, userID int) error {
	logEntry := models.ShipmentTrackingLog{
		ShipmentOrderID: shipmentID,
		FromStatus:      from,
		ToStatus:        to,
		Remarks:         remarks,
		CreatedBy:       userID,
	}
	if err := r.db.Create(&logEntry).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (r *ShipmentRepository) GetChallansForShipment(shipmentID uint) ([]models.DeliveryChallan, error) {
	var challans []models.DeliveryChallan
	err := r.db.Preload("Items").Where("shipment_order_id = ?", shipmentID).Find(&challans).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return challans, nil
}

// DeleteShipmentCascade removes the shipment with its tracking logs, line
// items and challans. The compensating sales-order revert is the service's
// responsibility; this only clears the dependent rows.
func (r *ShipmentRepository) DeleteShipmentCascade(shipment *models.ShipmentOrder, userID int) error {
	challans, err := r.GetChallansForShipment(shipment.ID)
	if err != nil {
		return err
	}
	for _, challan := range challans {
		if err := r.db.Where("delivery_challan_id = ?", challan.ID).
			Delete(&models.DeliveryChallanItem{}).Error; err != nil {
			return apperr.Persistence(err)
		}
		if err := r.db.Delete(&models.DeliveryChallan{}, challan.ID).Error; err != nil {
			return apperr.Persistence(err)
		}
	}

	if err := r.db.Where("shipment_order_id = ?", shipment.ID).
		Delete(&models.ShipmentTrackingLog{}).Error; err != nil {
		return apperr.Persistence(err)
	}
	if err := r.db.Where("shipment_order_id = ?", shipment.ID).
		Delete(&models.ShipmentItem{}).Error; err != nil {
		return apperr.Persistence(err)
	}

	if err := r.db.Model(shipment).Update("deleted_by", userID).Error; err != nil {
		return apperr.Persistence(err)
	}
	if err := r.db.Delete(shipment).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (r *ShipmentRepository) GenerateShipmentNo() (string, error) {
	var lastShipment models.ShipmentOrder
	if err := r.db.Last(&lastShipment).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Persistence(err)
	}

	currentDate := time.Now().Format("060102")

	if lastShipment.ShipmentNo != "" && len(lastShipment.ShipmentNo) >= 12 {
		lastDatePart := lastShipment.ShipmentNo[2:8]
		lastSequenceStr := lastShipment.ShipmentNo[len(lastShipment.ShipmentNo)-4:]

		if currentDate == lastDatePart {
			lastSequenceInt, _ := strconv.Atoi(lastSequenceStr)
			return fmt.Sprintf("SH%s%04d", currentDate, lastSequenceInt+1), nil
		}
	}

	return fmt.Sprintf("SH%s%04d", currentDate, 1), nil
}

func (r *ShipmentRepository) GenerateChallanNo() (string, error) {
	var lastChallan models.DeliveryChallan
	if err := r.db.Last(&lastChallan).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Persistence(err)
	}

	currentDate := time.Now().Format("060102")

	if lastChallan.ChallanNo != "" && len(lastChallan.ChallanNo) >= 12 {
		lastDatePart := lastChallan.ChallanNo[2:8]
		lastSequenceStr := lastChallan.ChallanNo[len(lastChallan.ChallanNo)-4:]

		if currentDate == lastDatePart {
			lastSequenceInt, _ := strconv.Atoi(lastSequenceStr)
			return fmt.Sprintf("DC%s%04d", currentDate, lastSequenceInt+1), nil
		}
	}

	return fmt.Sprintf("DC%s%04d", currentDate, 1), nil
}

type ShipmentListRow struct {
	ID              uint   `json:"id"`
	ShipmentNo      string `json:"shipment_no"`
	OrderNo         string `json:"order_no"`
	CustomerName    string `json:"customer_name"`
	Status          string `json:"status"`
	TotalLine       int    `json:"total_line"`
	TransporterName string `json:"transporter_name"`
}

func (r *ShipmentRepository) ListShipments() ([]ShipmentListRow, error) {
	var rows []ShipmentListRow
	sql := `WITH detail AS (
				SELECT shipment_order_id, COUNT(item_code) AS total_line
				FROM shipment_items
				WHERE deleted_at IS NULL
				GROUP BY shipment_order_id
			)
			SELECT a.id, a.shipment_no, a.customer_name, a.status, a.transporter_name,
			COALESCE(b.order_no, '') AS order_no,
			COALESCE(d.total_line, 0) AS total_line
			FROM shipment_orders a
			LEFT JOIN sales_orders b ON a.sales_order_id = b.id
			LEFT JOIN detail d ON a.id = d.shipment_order_id
			WHERE a.deleted_at IS NULL
			ORDER BY a.created_at DESC`

	if err := r.db.Raw(sql).Scan(&rows).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return rows, nil
}
