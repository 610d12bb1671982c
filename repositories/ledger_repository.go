package repositories

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/models"
)

type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository wraps the given handle, which may be a transaction.
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

type PostingInput struct {
	ItemCode      string
	WhsCode       string
	Direction     models.LedgerDirection
	PostingType   models.PostingType
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   uint
	Remarks       string
	UserID        int
}

// guardedPostingTypes are document postings that must never repeat for the
// same (reference, item). Adjustments and rejection annotations legitimately
// recur, so they stay outside the guard.
var guardedPostingTypes = map[models.PostingType]bool{
	models.PostingGRNReceipt:    true,
	models.PostingExcessReceipt: true,
	models.PostingDispatchIssue: true,
}

// Post inserts the ledger entry and applies the signed quantity to the
// (item, warehouse) stock balance in one call. The balance write is derived
// here from the entry itself, never left to the caller, so an entry without
// its balance update cannot exist.
func (r *LedgerRepository) Post(input PostingInput) (*models.LedgerEntry, error) {
	if input.ItemCode == "" || input.WhsCode == "" {
		return nil, apperr.Validation("invalid posting input", []apperr.FieldViolation{
			{Field: "item_code", Message: "item_code and whs_code are required"},
		})
	}

	switch input.Direction {
	case models.DirectionIn, models.DirectionOut:
		if !input.Quantity.IsPositive() {
			return nil, apperr.Validation("invalid posting input", []apperr.FieldViolation{
				{Field: "quantity", Message: "quantity must be greater than zero for IN/OUT postings"},
			})
		}
	case models.DirectionAdjustment:
		if input.Quantity.IsZero() {
			return nil, apperr.Validation("invalid posting input", []apperr.FieldViolation{
				{Field: "quantity", Message: "adjustment quantity must not be zero"},
			})
		}
	default:
		return nil, apperr.Validation("invalid posting input", []apperr.FieldViolation{
			{Field: "direction", Message: "direction must be IN, OUT or ADJUSTMENT"},
		})
	}

	if guardedPostingTypes[input.PostingType] {
		var count int64
		err := r.db.Model(&models.LedgerEntry{}).
			Where("reference_type = ? AND reference_id = ? AND item_code = ? AND posting_type = ?",
				input.ReferenceType, input.ReferenceID, input.ItemCode, input.PostingType).
			Count(&count).Error
		if err != nil {
			return nil, apperr.Persistence(err)
		}
		if count > 0 {
			return nil, apperr.Conflict("ledger entry already posted for %s %d item %s",
				input.ReferenceType, input.ReferenceID, input.ItemCode)
		}
	}

	entry := models.LedgerEntry{
		ItemCode:      input.ItemCode,
		WhsCode:       input.WhsCode,
		Direction:     input.Direction,
		PostingType:   input.PostingType,
		Quantity:      input.Quantity,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		Remarks:       input.Remarks,
		CreatedBy:     input.UserID,
	}

	if err := r.db.Create(&entry).Error; err != nil {
		return nil, apperr.Persistence(err)
	}

	// Rejection entries are audit annotations only.
	if input.PostingType == models.PostingRejection {
		return &entry, nil
	}

	delta := input.Quantity
	if input.Direction == models.DirectionOut {
		delta = delta.Neg()
	}

	if err := r.applyBalanceDelta(input.ItemCode, input.WhsCode, delta, input.UserID); err != nil {
		return nil, err
	}

	return &entry, nil
}

// applyBalanceDelta increments the cached balance with a SQL expression so
// concurrent postings inside separate transactions cannot lose updates.
func (r *LedgerRepository) applyBalanceDelta(itemCode, whsCode string, delta decimal.Decimal, userID int) error {
	balance := models.StockBalance{
		ItemCode: itemCode,
		WhsCode:  whsCode,
	}

	// Missing rows are lazily created at zero on first posting.
	if err := r.db.Where("item_code = ? AND whs_code = ?", itemCode, whsCode).
		FirstOrCreate(&balance).Error; err != nil {
		return apperr.Persistence(err)
	}

	err := r.db.Model(&models.StockBalance{}).
		Where("item_code = ? AND whs_code = ?", itemCode, whsCode).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance + ?", delta),
			"updated_by":      userID,
		}).Error
	if err != nil {
		return apperr.Persistence(err)
	}

	return nil
}

// GetBalance returns the cached balance for the pair, zero when no row exists.
func (r *LedgerRepository) GetBalance(itemCode, whsCode string) (decimal.Decimal, error) {
	var balance models.StockBalance
	err := r.db.Where("item_code = ? AND whs_code = ?", itemCode, whsCode).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperr.Persistence(err)
	}
	return balance.CurrentBalance, nil
}

// SignedSum recomputes the authoritative balance from the ledger entries,
// skipping rejection annotations.
func (r *LedgerRepository) SignedSum(itemCode, whsCode string) (decimal.Decimal, error) {
	var entries []models.LedgerEntry
	err := r.db.Where("item_code = ? AND whs_code = ? AND posting_type <> ?",
		itemCode, whsCode, models.PostingRejection).Find(&entries).Error
	if err != nil {
		return decimal.Zero, apperr.Persistence(err)
	}

	sum := decimal.Zero
	for _, e := range entries {
		if e.Direction == models.DirectionOut {
			sum = sum.Sub(e.Quantity)
		} else {
			sum = sum.Add(e.Quantity)
		}
	}
	return sum, nil
}

func (r *LedgerRepository) GetEntriesByReference(refType string, refID uint) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("id ASC").Find(&entries).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return entries, nil
}

func (r *LedgerRepository) ListEntries(itemCode, whsCode string, limit int) ([]models.LedgerEntry, error) {
	query := r.db.Model(&models.LedgerEntry{}).Order("id DESC")
	if itemCode != "" {
		query = query.Where("item_code = ?", itemCode)
	}
	if whsCode != "" {
		query = query.Where("whs_code = ?", whsCode)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return entries, nil
}

func (r *LedgerRepository) ListBalances() ([]models.StockBalance, error) {
	var balances []models.StockBalance
	if err := r.db.Order("item_code ASC, whs_code ASC").Find(&balances).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return balances, nil
}
