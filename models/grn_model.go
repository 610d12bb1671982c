package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GRNHeader struct {
	gorm.Model
	GrnNo           string    `json:"grn_no" gorm:"unique"`
	PurchaseOrderID uint      `json:"purchase_order_id"`
	ReceiptNo       string    `json:"receipt_no"`
	GrnDate         string    `json:"grn_date" gorm:"type:date"`
	Status          GRNStatus `json:"status" gorm:"default:'RECEIVED'"`
	Notes           string    `json:"notes"`
	CreatedBy       int
	UpdatedBy       int

	Items []GRNItem `gorm:"foreignKey:GRNHeaderID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

type GRNItem struct {
	gorm.Model
	GRNHeaderID         uint            `json:"grn_header_id"`
	PurchaseOrderItemID uint            `json:"purchase_order_item_id"`
	ItemCode            string          `json:"item_code"`
	WhsCode             string          `json:"whs_code"`
	PoQty               decimal.Decimal `json:"po_qty" gorm:"type:decimal(18,4);default:0"`
	ReceivedQty         decimal.Decimal `json:"received_qty" gorm:"type:decimal(18,4);default:0"`
	AcceptedQty         decimal.Decimal `json:"accepted_qty" gorm:"type:decimal(18,4);default:0"`
	RejectedQty         decimal.Decimal `json:"rejected_qty" gorm:"type:decimal(18,4);default:0"`
	ShortageQty         decimal.Decimal `json:"shortage_qty" gorm:"type:decimal(18,4);default:0"`
	OverageQty          decimal.Decimal `json:"overage_qty" gorm:"type:decimal(18,4);default:0"`
	Status              GRNItemStatus   `json:"status" gorm:"default:'RECEIVED'"`
	Remarks             string          `json:"remarks"`
	CreatedBy           int
	UpdatedBy           int
}

// GrnExcessApproval records the explicit decision on quantity received above
// the ordered quantity. The decision is terminal; the overage counts toward
// acceptance only after an APPROVED row exists.
type GrnExcessApproval struct {
	gorm.Model
	GRNItemID uint                 `json:"grn_item_id"`
	ExcessQty decimal.Decimal      `json:"excess_qty" gorm:"type:decimal(18,4);default:0"`
	Status    ExcessApprovalStatus `json:"status" gorm:"default:'PENDING'"`
	Notes     string               `json:"notes"`
	DecidedBy int                  `json:"decided_by"`
}
