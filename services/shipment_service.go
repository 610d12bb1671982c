package services

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
)

// shipmentTransitions is the dispatch lifecycle plus the return sub-chain as
// data: target statuses reachable from each status. Statuses with no entry
// are terminal.
var shipmentTransitions = map[models.ShipmentStatus][]models.ShipmentStatus{
	models.ShipmentPendingAcceptance: {models.ShipmentAccepted, models.ShipmentRejected, models.ShipmentCancelled},
	models.ShipmentAccepted:          {models.ShipmentPlanning, models.ShipmentReadyToDispatch, models.ShipmentCancelled},
	models.ShipmentPlanning:          {models.ShipmentPlanned, models.ShipmentCancelled},
	models.ShipmentPlanned:           {models.ShipmentReadyToDispatch, models.ShipmentCancelled},
	models.ShipmentReadyToDispatch:   {models.ShipmentDispatched, models.ShipmentCancelled},
	models.ShipmentDispatched:        {models.ShipmentInTransit, models.ShipmentReturnInitiated},
	models.ShipmentInTransit:         {models.ShipmentOutForDelivery, models.ShipmentReturnInitiated},
	models.ShipmentOutForDelivery:    {models.ShipmentDelivered, models.ShipmentReturnInitiated},
	models.ShipmentDelivered:         {models.ShipmentClosed, models.ShipmentReturnInitiated},

	models.ShipmentReturnInitiated:      {models.ShipmentReturnPickupAssigned},
	models.ShipmentReturnPickupAssigned: {models.ShipmentReturnInTransit},
	models.ShipmentReturnInTransit:      {models.ShipmentReturnReceived},
	models.ShipmentReturnReceived:       {models.ShipmentReturnCompleted},
}

// CanTransitionShipment reports whether the status change is allowed.
func CanTransitionShipment(from, to models.ShipmentStatus) bool {
	return slices.Contains(shipmentTransitions[from], to)
}

// dispatchedStatuses are the points past which stock has already left the
// warehouse, so deletion must not revert the linked sales order.
var dispatchedStatuses = []models.ShipmentStatus{
	models.ShipmentDispatched, models.ShipmentInTransit, models.ShipmentOutForDelivery,
	models.ShipmentDelivered, models.ShipmentClosed,
}

type ShipmentService struct {
	db *gorm.DB
}

func NewShipmentService(db *gorm.DB) *ShipmentService {
	return &ShipmentService{db: db}
}

type ShipmentItemInput struct {
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity"`
	Uom      string `json:"uom"`
	WhsCode  string `json:"whs_code"`
}

type CreateShipmentInput struct {
	ShippingAddress     string              `json:"shipping_address"`
	PlannedDispatchDate string              `json:"planned_dispatch_date"`
	TransporterName     string              `json:"transporter_name"`
	VehicleNo           string              `json:"vehicle_no"`
	Remarks             string              `json:"remarks"`
	Items               []ShipmentItemInput `json:"items"`
}

// CompleteFinalQC passes the order's quality stage.
func (s *ShipmentService) CompleteFinalQC(orderID uint, userID int) (*models.SalesOrder, error) {
	var order *models.SalesOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewSalesOrderRepository(tx)

		var err error
		order, err = repo.GetOrder(orderID)
		if err != nil {
			return err
		}

		if order.Status != models.OrderQCInProgress {
			return apperr.Conflict("order %s is %s, final QC completion requires %s",
				order.OrderNo, order.Status, models.OrderQCInProgress)
		}

		prevStatus := order.Status
		order.Status = models.OrderQCApproved
		order.UpdatedBy = userID

		if err := repo.SaveOrder(order); err != nil {
			return err
		}
		return repo.AppendStatusLog(order.ID, prevStatus, order.Status, models.DeptQuality, "final QC passed", userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateShipmentForOrder snapshots the customer fields and the accepted
// finished-goods lines into a new PENDING_ACCEPTANCE shipment. The linked
// order moves to shipment ownership when the shipment is accepted, not here.
func (s *ShipmentService) CreateShipmentForOrder(orderID uint, input CreateShipmentInput, userID int) (*models.ShipmentOrder, error) {
	var shipment *models.ShipmentOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := repositories.NewSalesOrderRepository(tx)
		shipmentRepo := repositories.NewShipmentRepository(tx)

		order, err := orderRepo.GetOrder(orderID)
		if err != nil {
			return err
		}

		if order.Status != models.OrderQCApproved && order.Status != models.OrderReadyForShipment {
			return apperr.Conflict("order %s is %s, shipment creation requires quality approval first",
				order.OrderNo, order.Status)
		}

		shipmentNo, err := shipmentRepo.GenerateShipmentNo()
		if err != nil {
			return err
		}

		orderID := order.ID
		created := models.ShipmentOrder{
			ShipmentNo:          shipmentNo,
			SalesOrderID:        &orderID,
			Status:              models.ShipmentPendingAcceptance,
			CustomerName:        order.CustomerName,
			ShippingAddress:     input.ShippingAddress,
			PlannedDispatchDate: input.PlannedDispatchDate,
			TransporterName:     input.TransporterName,
			VehicleNo:           input.VehicleNo,
			Remarks:             input.Remarks,
			CreatedBy:           userID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperr.Persistence(err)
		}

		items, err := s.buildShipmentItems(created.ID, order, input.Items, userID)
		if err != nil {
			return err
		}
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return apperr.Persistence(err)
			}
		}

		if err := shipmentRepo.AppendTrackingLog(created.ID, "", created.Status, "shipment created", userID); err != nil {
			return err
		}

		created.Items = items
		shipment = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// buildShipmentItems prefers the explicit line set from the request and
// falls back to the order's accepted finished-goods lines.
func (s *ShipmentService) buildShipmentItems(shipmentID uint, order *models.SalesOrder, inputs []ShipmentItemInput, userID int) ([]models.ShipmentItem, error) {
	var items []models.ShipmentItem

	if len(inputs) > 0 {
		for i, input := range inputs {
			qty, perr := parseDecimalField(fmt.Sprintf("items[%d].quantity", i), input.Quantity)
			if perr != nil {
				return nil, perr
			}
			whsCode := input.WhsCode
			if whsCode == "" {
				whsCode = config.DefaultWhsCode
			}
			items = append(items, models.ShipmentItem{
				ShipmentOrderID: shipmentID,
				ItemCode:        input.ItemCode,
				ItemName:        input.ItemName,
				Quantity:        qty,
				Uom:             input.Uom,
				WhsCode:         whsCode,
				CreatedBy:       userID,
			})
		}
		return items, nil
	}

	for _, orderItem := range order.Items {
		if orderItem.Status == models.ItemRejected {
			continue
		}
		if orderItem.ItemType != models.ItemTypeFG {
			continue
		}
		whsCode := orderItem.WhsCode
		if whsCode == "" {
			whsCode = config.DefaultWhsCode
		}
		items = append(items, models.ShipmentItem{
			ShipmentOrderID: shipmentID,
			ItemCode:        orderItem.ItemCode,
			ItemName:        orderItem.ItemName,
			Quantity:        orderItem.Quantity,
			Uom:             orderItem.Uom,
			WhsCode:         whsCode,
			CreatedBy:       userID,
		})
	}

	if len(items) == 0 {
		return nil, apperr.Conflict("order %s has no finished-goods lines to ship", order.OrderNo)
	}
	return items, nil
}

// CreateVendorReturnShipment creates a QC-only shipment that is not tied to
// a sales order, used to return rejected material to a vendor.
func (s *ShipmentService) CreateVendorReturnShipment(qcInspectionNo, vendorName string, input CreateShipmentInput, userID int) (*models.ShipmentOrder, error) {
	if len(input.Items) == 0 {
		return nil, apperr.Validation("vendor return shipment needs line items", []apperr.FieldViolation{
			{Field: "items", Message: "at least one line item is required"},
		})
	}

	var shipment *models.ShipmentOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		shipmentRepo := repositories.NewShipmentRepository(tx)

		shipmentNo, err := shipmentRepo.GenerateShipmentNo()
		if err != nil {
			return err
		}

		created := models.ShipmentOrder{
			ShipmentNo:          shipmentNo,
			QCInspectionNo:      qcInspectionNo,
			Status:              models.ShipmentPendingAcceptance,
			CustomerName:        vendorName,
			ShippingAddress:     input.ShippingAddress,
			PlannedDispatchDate: input.PlannedDispatchDate,
			TransporterName:     input.TransporterName,
			VehicleNo:           input.VehicleNo,
			Remarks:             input.Remarks,
			CreatedBy:           userID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperr.Persistence(err)
		}

		items, err := s.buildShipmentItems(created.ID, &models.SalesOrder{}, input.Items, userID)
		if err != nil {
			return err
		}
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return apperr.Persistence(err)
			}
		}

		if err := shipmentRepo.AppendTrackingLog(created.ID, "", created.Status, "vendor return shipment created", userID); err != nil {
			return err
		}

		created.Items = items
		shipment = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// UpdateShipmentStatus drives the shipment lifecycle. Each target status has
// a fixed side effect executed in the same transaction as the status write;
// notification delivery is deferred to the outbox worker after commit.
func (s *ShipmentService) UpdateShipmentStatus(shipmentID uint, newStatus models.ShipmentStatus, userID int) (*models.ShipmentOrder, error) {
	if _, known := shipmentTransitions[newStatus]; !known &&
		newStatus != models.ShipmentClosed &&
		newStatus != models.ShipmentReturnCompleted &&
		newStatus != models.ShipmentRejected &&
		newStatus != models.ShipmentCancelled {
		return nil, apperr.Validation("invalid shipment status", []apperr.FieldViolation{
			{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)},
		})
	}

	var shipment *models.ShipmentOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewShipmentRepository(tx)

		var err error
		shipment, err = repo.GetShipment(shipmentID)
		if err != nil {
			return err
		}

		if !CanTransitionShipment(shipment.Status, newStatus) {
			return apperr.Conflict("shipment %s cannot move from %s to %s",
				shipment.ShipmentNo, shipment.Status, newStatus)
		}

		prevStatus := shipment.Status
		shipment.Status = newStatus
		shipment.UpdatedBy = userID

		switch newStatus {
		case models.ShipmentAccepted:
			if err := s.markOrderReadyForShipment(tx, shipment, userID); err != nil {
				return err
			}
		case models.ShipmentDispatched:
			if err := s.dispatch(tx, shipment, userID); err != nil {
				return err
			}
		case models.ShipmentDelivered:
			now := time.Now().UTC()
			shipment.ActualDeliveryDate = &now
		}

		if err := repo.SaveShipment(shipment); err != nil {
			return err
		}
		return repo.AppendTrackingLog(shipment.ID, prevStatus, newStatus, "", userID)
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentService) markOrderReadyForShipment(tx *gorm.DB, shipment *models.ShipmentOrder, userID int) error {
	if shipment.SalesOrderID == nil {
		return nil
	}

	orderRepo := repositories.NewSalesOrderRepository(tx)
	order, err := orderRepo.GetOrder(*shipment.SalesOrderID)
	if err != nil {
		return err
	}

	prevStatus := order.Status
	order.Status = models.OrderReadyForShipment
	order.CurrentDepartment = models.DeptShipment
	order.UpdatedBy = userID

	if err := orderRepo.SaveOrder(order); err != nil {
		return err
	}
	return orderRepo.AppendStatusLog(order.ID, prevStatus, order.Status, models.DeptShipment,
		"shipment "+shipment.ShipmentNo+" accepted", userID)
}

// dispatch posts one OUT ledger entry per line, creates the delivery challan
// with its line items and queues the dispatch notification. All of it shares
// the caller's transaction; the ledger posting itself carries the balance
// update (see LedgerRepository.Post).
func (s *ShipmentService) dispatch(tx *gorm.DB, shipment *models.ShipmentOrder, userID int) error {
	if len(shipment.Items) == 0 {
		return apperr.Conflict("shipment %s has no line items to dispatch", shipment.ShipmentNo)
	}

	repo := repositories.NewShipmentRepository(tx)
	ledger := repositories.NewLedgerRepository(tx)

	challanNo, err := repo.GenerateChallanNo()
	if err != nil {
		return err
	}

	challan := models.DeliveryChallan{
		ChallanNo:       challanNo,
		ShipmentOrderID: shipment.ID,
		ChallanDate:     time.Now().Format("2006-01-02"),
		CustomerName:    shipment.CustomerName,
		ShippingAddress: shipment.ShippingAddress,
		CreatedBy:       userID,
	}
	if err := tx.Create(&challan).Error; err != nil {
		return apperr.Persistence(err)
	}

	for _, item := range shipment.Items {
		_, err := ledger.Post(repositories.PostingInput{
			ItemCode:      item.ItemCode,
			WhsCode:       item.WhsCode,
			Direction:     models.DirectionOut,
			PostingType:   models.PostingDispatchIssue,
			Quantity:      item.Quantity,
			ReferenceType: "SHIPMENT_ITEM",
			ReferenceID:   item.ID,
			Remarks:       "dispatched under " + challanNo,
			UserID:        userID,
		})
		if err != nil {
			return err
		}

		challanItem := models.DeliveryChallanItem{
			DeliveryChallanID: challan.ID,
			ItemCode:          item.ItemCode,
			ItemName:          item.ItemName,
			Quantity:          item.Quantity,
			Uom:               item.Uom,
			WhsCode:           item.WhsCode,
		}
		if err := tx.Create(&challanItem).Error; err != nil {
			return apperr.Persistence(err)
		}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"shipment_no":   shipment.ShipmentNo,
		"challan_id":    challan.ID,
		"challan_no":    challan.ChallanNo,
		"customer_name": shipment.CustomerName,
	})
	if err != nil {
		return apperr.Persistence(err)
	}

	outbox := repositories.NewOutboxRepository(tx)
	return outbox.Enqueue(models.NotificationOutbox{
		EventType:     "SHIPMENT_DISPATCHED",
		ReferenceType: "DELIVERY_CHALLAN",
		ReferenceID:   challan.ID,
		Subject:       "Shipment " + shipment.ShipmentNo + " dispatched",
		Payload:       string(payload),
	})
}

// DeleteShipmentOrder is a compensating operation: dependent tracking logs
// and challans go with the shipment, and an order whose forward progress was
// conditioned on this shipment returns to quality ownership, unless stock
// already left the warehouse.
func (s *ShipmentService) DeleteShipmentOrder(shipmentID uint, userID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewShipmentRepository(tx)

		shipment, err := repo.GetShipment(shipmentID)
		if err != nil {
			return err
		}

		hadDispatched := slices.Contains(dispatchedStatuses, shipment.Status)

		if err := repo.DeleteShipmentCascade(shipment, userID); err != nil {
			return err
		}

		if hadDispatched || shipment.SalesOrderID == nil {
			return nil
		}

		orderRepo := repositories.NewSalesOrderRepository(tx)
		order, err := orderRepo.GetOrder(*shipment.SalesOrderID)
		if err != nil {
			return err
		}

		prevStatus := order.Status
		order.Status = models.OrderProductionCompleted
		order.CurrentDepartment = models.DeptQuality
		order.UpdatedBy = userID

		if err := orderRepo.SaveOrder(order); err != nil {
			return err
		}
		return orderRepo.AppendStatusLog(order.ID, prevStatus, order.Status, models.DeptQuality,
			"shipment "+shipment.ShipmentNo+" deleted", userID)
	})
}
