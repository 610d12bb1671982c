package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
)

func TestCanTransitionShipment(t *testing.T) {
	assert.True(t, CanTransitionShipment(models.ShipmentPendingAcceptance, models.ShipmentAccepted))
	assert.True(t, CanTransitionShipment(models.ShipmentReadyToDispatch, models.ShipmentDispatched))
	assert.True(t, CanTransitionShipment(models.ShipmentDelivered, models.ShipmentReturnInitiated))
	assert.True(t, CanTransitionShipment(models.ShipmentReturnReceived, models.ShipmentReturnCompleted))

	// No jumping the lifecycle.
	assert.False(t, CanTransitionShipment(models.ShipmentPendingAcceptance, models.ShipmentDispatched))
	assert.False(t, CanTransitionShipment(models.ShipmentAccepted, models.ShipmentDelivered))

	// Terminal statuses are inert.
	assert.False(t, CanTransitionShipment(models.ShipmentClosed, models.ShipmentAccepted))
	assert.False(t, CanTransitionShipment(models.ShipmentCancelled, models.ShipmentAccepted))
	assert.False(t, CanTransitionShipment(models.ShipmentRejected, models.ShipmentAccepted))
	assert.False(t, CanTransitionShipment(models.ShipmentReturnCompleted, models.ShipmentReturnInitiated))
}

func seedShipmentStock(t *testing.T, db *gorm.DB, items []models.ShipmentItem) {
	t.Helper()
	for _, item := range items {
		seedStock(t, db, item.ItemCode, item.WhsCode, item.Quantity.String())
	}
}

func makeShipmentPipeline(t *testing.T, db *gorm.DB) (*ShipmentService, *models.SalesOrder, *models.ShipmentOrder) {
	t.Helper()
	svc := NewShipmentService(db)

	order := makeOrder(t, db, models.OrderQCInProgress, models.DeptQuality,
		models.SalesOrderItem{ItemCode: "FG-WINDOW-01", ItemName: "Casement Window", ItemType: models.ItemTypeFG, Quantity: qty(t, "10"), Uom: "PCS", WhsCode: "WH-MAIN", Status: models.ItemAccepted},
		models.SalesOrderItem{ItemCode: "FG-DOOR-02", ItemName: "Sliding Door", ItemType: models.ItemTypeFG, Quantity: qty(t, "5"), Uom: "PCS", WhsCode: "WH-MAIN", Status: models.ItemAccepted})

	_, err := svc.CompleteFinalQC(order.ID, 1)
	require.NoError(t, err)

	shipment, err := svc.CreateShipmentForOrder(order.ID, CreateShipmentInput{
		ShippingAddress: "14 Industrial Estate, Pune",
	}, 1)
	require.NoError(t, err)
	require.Len(t, shipment.Items, 2)
	return svc, order, shipment
}

func TestCompleteFinalQCRequiresQCInProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewShipmentService(db)

	order := makeOrder(t, db, models.OrderInProduction, models.DeptProduction)

	_, err := svc.CompleteFinalQC(order.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateShipmentSnapshotsOrder(t *testing.T) {
	db := newTestDB(t)
	_, order, shipment := makeShipmentPipeline(t, db)

	assert.Equal(t, models.ShipmentPendingAcceptance, shipment.Status)
	assert.Equal(t, order.CustomerName, shipment.CustomerName)
	require.NotNil(t, shipment.SalesOrderID)
	assert.Equal(t, order.ID, *shipment.SalesOrderID)
	assert.Equal(t, "FG-WINDOW-01", shipment.Items[0].ItemCode)
}

func TestAcceptShipmentMovesOrderToShipment(t *testing.T) {
	db := newTestDB(t)
	svc, order, shipment := makeShipmentPipeline(t, db)

	updated, err := svc.UpdateShipmentStatus(shipment.ID, models.ShipmentAccepted, 2)
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentAccepted, updated.Status)

	var reloadedOrder models.SalesOrder
	require.NoError(t, db.First(&reloadedOrder, order.ID).Error)
	assert.Equal(t, models.OrderReadyForShipment, reloadedOrder.Status)
	assert.Equal(t, models.DeptShipment, reloadedOrder.CurrentDepartment)
}

func TestDispatchPostsLedgerChallanAndOutbox(t *testing.T) {
	db := newTestDB(t)
	svc, _, shipment := makeShipmentPipeline(t, db)
	seedShipmentStock(t, db, shipment.Items)

	for _, status := range []models.ShipmentStatus{models.ShipmentAccepted, models.ShipmentReadyToDispatch} {
		_, err := svc.UpdateShipmentStatus(shipment.ID, status, 2)
		require.NoError(t, err)
	}

	updated, err := svc.UpdateShipmentStatus(shipment.ID, models.ShipmentDispatched, 2)
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentDispatched, updated.Status)

	ledger := repositories.NewLedgerRepository(db)

	// One OUT entry per line, for exactly the shipped quantities.
	var outEntries []models.LedgerEntry
	require.NoError(t, db.Where("posting_type = ?", models.PostingDispatchIssue).Find(&outEntries).Error)
	require.Len(t, outEntries, 2)
	for _, entry := range outEntries {
		assert.Equal(t, models.DirectionOut, entry.Direction)
		assert.Equal(t, "SHIPMENT_ITEM", entry.ReferenceType)
	}

	balance, err := ledger.GetBalance("FG-WINDOW-01", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "stock should be fully issued, got %s", balance)

	var challan models.DeliveryChallan
	require.NoError(t, db.Preload("Items").Where("shipment_order_id = ?", shipment.ID).First(&challan).Error)
	assert.Len(t, challan.Items, 2)
	assert.NotEmpty(t, challan.ChallanNo)

	var outbox models.NotificationOutbox
	require.NoError(t, db.Where("event_type = ?", "SHIPMENT_DISPATCHED").First(&outbox).Error)
	assert.Equal(t, models.OutboxPending, outbox.Status)
	assert.Equal(t, "DELIVERY_CHALLAN", outbox.ReferenceType)
	assert.Equal(t, challan.ID, outbox.ReferenceID)
}

func TestDispatchTwiceIsRefused(t *testing.T) {
	db := newTestDB(t)
	svc, _, shipment := makeShipmentPipeline(t, db)
	seedShipmentStock(t, db, shipment.Items)

	for _, status := range []models.ShipmentStatus{models.ShipmentAccepted, models.ShipmentReadyToDispatch, models.ShipmentDispatched} {
		_, err := svc.UpdateShipmentStatus(shipment.ID, status, 2)
		require.NoError(t, err)
	}

	_, err := svc.UpdateShipmentStatus(shipment.ID, models.ShipmentDispatched, 2)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).
		Where("posting_type = ?", models.PostingDispatchIssue).Count(&count).Error)
	assert.EqualValues(t, 2, count, "refused dispatch must not add ledger entries")
}

func TestDeliveredSetsActualDate(t *testing.T) {
	db := newTestDB(t)
	svc, _, shipment := makeShipmentPipeline(t, db)
	seedShipmentStock(t, db, shipment.Items)

	chain := []models.ShipmentStatus{
		models.ShipmentAccepted, models.ShipmentReadyToDispatch, models.ShipmentDispatched,
		models.ShipmentInTransit, models.ShipmentOutForDelivery, models.ShipmentDelivered,
	}
	var updated *models.ShipmentOrder
	var err error
	for _, status := range chain {
		updated, err = svc.UpdateShipmentStatus(shipment.ID, status, 2)
		require.NoError(t, err)
	}

	require.NotNil(t, updated.ActualDeliveryDate)

	var logCount int64
	require.NoError(t, db.Model(&models.ShipmentTrackingLog{}).
		Where("shipment_order_id = ?", shipment.ID).Count(&logCount).Error)
	// creation log plus one per transition
	assert.EqualValues(t, int64(len(chain))+1, logCount)
}

func TestDeleteShipmentRevertsOrderBeforeDispatch(t *testing.T) {
	db := newTestDB(t)
	svc, order, shipment := makeShipmentPipeline(t, db)

	_, err := svc.UpdateShipmentStatus(shipment.ID, models.ShipmentAccepted, 2)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteShipmentOrder(shipment.ID, 2))

	var reloadedOrder models.SalesOrder
	require.NoError(t, db.First(&reloadedOrder, order.ID).Error)
	assert.Equal(t, models.OrderProductionCompleted, reloadedOrder.Status)
	assert.Equal(t, models.DeptQuality, reloadedOrder.CurrentDepartment)

	var count int64
	require.NoError(t, db.Model(&models.ShipmentItem{}).
		Where("shipment_order_id = ?", shipment.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteDispatchedShipmentKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	svc, order, shipment := makeShipmentPipeline(t, db)
	seedShipmentStock(t, db, shipment.Items)

	for _, status := range []models.ShipmentStatus{models.ShipmentAccepted, models.ShipmentReadyToDispatch, models.ShipmentDispatched} {
		_, err := svc.UpdateShipmentStatus(shipment.ID, status, 2)
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteShipmentOrder(shipment.ID, 2))

	// Stock already left the warehouse; the order must not fall back.
	var reloadedOrder models.SalesOrder
	require.NoError(t, db.First(&reloadedOrder, order.ID).Error)
	assert.Equal(t, models.OrderReadyForShipment, reloadedOrder.Status)
}

func TestVendorReturnShipmentHasNoSalesOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewShipmentService(db)

	shipment, err := svc.CreateVendorReturnShipment("QC-INS-0042", "Trident Alloys", CreateShipmentInput{
		ShippingAddress: "Supplier yard, Nashik",
		Items: []ShipmentItemInput{
			{ItemCode: "RM-COIL-09", ItemName: "Alloy Coil", Quantity: "12", Uom: "KG", WhsCode: "WH-MAIN"},
		},
	}, 3)
	require.NoError(t, err)

	assert.Nil(t, shipment.SalesOrderID)
	assert.Equal(t, "QC-INS-0042", shipment.QCInspectionNo)
	require.Len(t, shipment.Items, 1)

	_, err = svc.CreateVendorReturnShipment("QC-INS-0043", "Trident Alloys", CreateShipmentInput{}, 3)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateShipmentStatusUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc, _, shipment := makeShipmentPipeline(t, db)

	_, err := svc.UpdateShipmentStatus(shipment.ID, "TELEPORTED", 2)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
