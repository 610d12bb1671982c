package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesOrder struct {
	gorm.Model
	OrderNo           string      `json:"order_no" gorm:"unique"`
	CustomerName      string      `json:"customer_name"`
	CustomerPoNo      string      `json:"customer_po_no"`
	QuotationID       *uint       `json:"quotation_id" gorm:"default:null"`
	Status            OrderStatus `json:"status" gorm:"default:'CREATED'"`
	CurrentDepartment Department  `json:"current_department" gorm:"default:'SALES'"`
	RequestAccepted   bool        `json:"request_accepted" gorm:"default:false"`
	OrderDate         string      `json:"order_date" gorm:"type:date"`
	Remarks           string      `json:"remarks"`
	CreatedBy         int
	UpdatedBy         int
	DeletedBy         int

	// Relations
	Items      []SalesOrderItem `gorm:"foreignKey:SalesOrderID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
	StatusLogs []OrderStatusLog `gorm:"foreignKey:SalesOrderID;references:ID;constraint:OnDelete:CASCADE" json:"status_logs"`
}

type SalesOrderItem struct {
	gorm.Model
	SalesOrderID uint            `json:"sales_order_id"`
	ItemCode     string          `json:"item_code"`
	ItemName     string          `json:"item_name"`
	ItemType     ItemType        `json:"item_type"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);default:0"`
	Uom          string          `json:"uom"`
	Status       ItemStatus      `json:"status" gorm:"default:'PENDING'"`
	WhsCode      string          `json:"whs_code"`
	Remarks      string          `json:"remarks"`
	CreatedBy    int
	UpdatedBy    int
}

// OrderRejection is immutable once written; rejections are never edited or
// deleted, a fresh row is appended instead.
type OrderRejection struct {
	gorm.Model
	SalesOrderID     uint       `json:"sales_order_id"`
	SalesOrderItemID *uint      `json:"sales_order_item_id" gorm:"default:null"`
	Department       Department `json:"department"`
	Reason           string     `json:"reason"`
	RejectedBy       int        `json:"rejected_by"`
}

type OrderStatusLog struct {
	gorm.Model
	SalesOrderID uint        `json:"sales_order_id"`
	FromStatus   OrderStatus `json:"from_status"`
	ToStatus     OrderStatus `json:"to_status"`
	Department   Department  `json:"department"`
	Remarks      string      `json:"remarks"`
	CreatedBy    int
}

type DesignOrder struct {
	gorm.Model
	DesignNo     string            `json:"design_no" gorm:"unique"`
	SalesOrderID uint              `json:"sales_order_id"`
	Status       DesignOrderStatus `json:"status" gorm:"default:'IN_DESIGN'"`
	Remarks      string            `json:"remarks"`
	CreatedBy    int
	UpdatedBy    int
}

type Quotation struct {
	gorm.Model
	QuotationNo  string          `json:"quotation_no" gorm:"unique"`
	SalesOrderID uint            `json:"sales_order_id"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(18,4);default:0"`
	Status       string          `json:"status" gorm:"default:'DRAFT'"`
	Remarks      string          `json:"remarks"`
	CreatedBy    int
}
