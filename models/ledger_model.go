package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/controllers/idgen"
)

// LedgerEntry is an immutable quantity movement for one item in one
// warehouse. Corrections append a new entry; rows are never updated.
type LedgerEntry struct {
	gorm.Model
	EntryNo       int64           `json:"entry_no" gorm:"uniqueIndex"`
	ItemCode      string          `json:"item_code" gorm:"index:idx_ledger_item_whs"`
	WhsCode       string          `json:"whs_code" gorm:"index:idx_ledger_item_whs"`
	Direction     LedgerDirection `json:"direction"`
	PostingType   PostingType     `json:"posting_type"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);default:0"`
	ReferenceType string          `json:"reference_type" gorm:"index:idx_ledger_reference"`
	ReferenceID   uint            `json:"reference_id" gorm:"index:idx_ledger_reference"`
	Remarks       string          `json:"remarks"`
	CreatedBy     int
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.EntryNo == 0 {
		e.EntryNo = idgen.GenerateID()
	}
	return
}

// StockBalance caches the signed sum of a pair's ledger entries. It is
// updated in the same transaction as the entry that justifies it and can be
// recomputed from the ledger at any time.
type StockBalance struct {
	gorm.Model
	ItemCode       string          `json:"item_code" gorm:"uniqueIndex:idx_balance_item_whs"`
	WhsCode        string          `json:"whs_code" gorm:"uniqueIndex:idx_balance_item_whs"`
	CurrentBalance decimal.Decimal `json:"current_balance" gorm:"type:decimal(18,4);default:0"`
	UpdatedBy      int
}
