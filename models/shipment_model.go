package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShipmentOrder snapshots the customer name and address at creation time so
// the shipping record stays stable when the live customer record changes.
type ShipmentOrder struct {
	gorm.Model
	ShipmentNo          string         `json:"shipment_no" gorm:"unique"`
	SalesOrderID        *uint          `json:"sales_order_id" gorm:"default:null"`
	QCInspectionNo      string         `json:"qc_inspection_no"`
	Status              ShipmentStatus `json:"status" gorm:"default:'PENDING_ACCEPTANCE'"`
	CustomerName        string         `json:"customer_name"`
	ShippingAddress     string         `json:"shipping_address"`
	PlannedDispatchDate string         `json:"planned_dispatch_date" gorm:"type:date"`
	ActualDeliveryDate  *time.Time     `json:"actual_delivery_date" gorm:"default:null"`
	TransporterName     string         `json:"transporter_name"`
	VehicleNo           string         `json:"vehicle_no"`
	Remarks             string         `json:"remarks"`
	CreatedBy           int
	UpdatedBy           int
	DeletedBy           int

	Items        []ShipmentItem        `gorm:"foreignKey:ShipmentOrderID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
	TrackingLogs []ShipmentTrackingLog `gorm:"foreignKey:ShipmentOrderID;references:ID;constraint:OnDelete:CASCADE" json:"tracking_logs"`
}

type ShipmentItem struct {
	gorm.Model
	ShipmentOrderID uint            `json:"shipment_order_id"`
	ItemCode        string          `json:"item_code"`
	ItemName        string          `json:"item_name"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);default:0"`
	Uom             string          `json:"uom"`
	WhsCode         string          `json:"whs_code"`
	CreatedBy       int
}

type ShipmentTrackingLog struct {
	gorm.Model
	ShipmentOrderID uint           `json:"shipment_order_id"`
	FromStatus      ShipmentStatus `json:"from_status"`
	ToStatus        ShipmentStatus `json:"to_status"`
	Remarks         string         `json:"remarks"`
	CreatedBy       int
}

type DeliveryChallan struct {
	gorm.Model
	ChallanNo       string `json:"challan_no" gorm:"unique"`
	ShipmentOrderID uint   `json:"shipment_order_id"`
	ChallanDate     string `json:"challan_date" gorm:"type:date"`
	CustomerName    string `json:"customer_name"`
	ShippingAddress string `json:"shipping_address"`
	CreatedBy       int

	Items []DeliveryChallanItem `gorm:"foreignKey:DeliveryChallanID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

type DeliveryChallanItem struct {
	gorm.Model
	DeliveryChallanID uint            `json:"delivery_challan_id"`
	ItemCode          string          `json:"item_code"`
	ItemName          string          `json:"item_name"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);default:0"`
	Uom               string          `json:"uom"`
	WhsCode           string          `json:"whs_code"`
}
