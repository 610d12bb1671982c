package migration

import (
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/models"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.SalesOrder{},
		&models.SalesOrderItem{},
		&models.OrderRejection{},
		&models.OrderStatusLog{},
		&models.DesignOrder{},
		&models.Quotation{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.GRNHeader{},
		&models.GRNItem{},
		&models.GrnExcessApproval{},
		&models.LedgerEntry{},
		&models.StockBalance{},
		&models.ShipmentOrder{},
		&models.ShipmentItem{},
		&models.ShipmentTrackingLog{},
		&models.DeliveryChallan{},
		&models.DeliveryChallanItem{},
		&models.NotificationOutbox{},
	)
}
