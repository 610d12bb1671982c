package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOrder struct {
	gorm.Model
	PoNo         string   `json:"po_no" gorm:"unique"`
	SupplierName string   `json:"supplier_name"`
	PoDate       string   `json:"po_date" gorm:"type:date"`
	Status       POStatus `json:"status" gorm:"default:'ORDERED'"`
	Remarks      string   `json:"remarks"`
	CreatedBy    int
	UpdatedBy    int

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

// PurchaseOrderItem carries the ordered quantity only. Its balance and status
// are projections over the GRN items referencing it, recomputed from history,
// never incremented in place.
type PurchaseOrderItem struct {
	gorm.Model
	PurchaseOrderID uint            `json:"purchase_order_id"`
	ItemCode        string          `json:"item_code"`
	ItemName        string          `json:"item_name"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);default:0"`
	Uom             string          `json:"uom"`
	WhsCode         string          `json:"whs_code"`
	Status          POItemStatus    `json:"status" gorm:"default:'OPEN'"`
	CreatedBy       int
	UpdatedBy       int
}
