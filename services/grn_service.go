package services

import (
	"fmt"

	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
)

type GRNService struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewGRNService(db *gorm.DB) *GRNService {
	return &GRNService{db: db, validate: validator.New()}
}

type GRNItemInput struct {
	PoItemID    uint            `json:"po_item_id"`
	ItemCode    string          `json:"item_code"`
	PoQty       decimal.Decimal `json:"po_qty"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	AcceptedQty decimal.Decimal `json:"accepted_qty"`
	RejectedQty decimal.Decimal `json:"rejected_qty"`
	WhsCode     string          `json:"whs_code"`
	Remarks     string          `json:"remarks"`
}

type CreateGRNInput struct {
	PoID      uint           `json:"po_id" validate:"required"`
	ReceiptNo string         `json:"receipt_no"`
	GrnDate   string         `json:"grn_date"`
	Notes     string         `json:"notes"`
	Items     []GRNItemInput `json:"items" validate:"required,min=1"`
}

// ValidateGRNItemInput checks one raw GRN line and returns every violation
// it finds, so the caller can surface field-level detail instead of a
// generic message.
func ValidateGRNItemInput(input GRNItemInput) []apperr.FieldViolation {
	var violations []apperr.FieldViolation

	if input.PoItemID == 0 && input.ItemCode == "" {
		violations = append(violations, apperr.FieldViolation{
			Field: "po_item_id", Message: "either po_item_id or item_code is required",
		})
	}
	if input.PoQty.IsNegative() {
		violations = append(violations, apperr.FieldViolation{
			Field: "po_qty", Message: "po_qty must not be negative",
		})
	}
	if input.ReceivedQty.IsNegative() {
		violations = append(violations, apperr.FieldViolation{
			Field: "received_qty", Message: "received_qty must not be negative",
		})
	}
	if input.AcceptedQty.IsNegative() {
		violations = append(violations, apperr.FieldViolation{
			Field: "accepted_qty", Message: "accepted_qty must not be negative",
		})
	}
	if input.RejectedQty.IsNegative() {
		violations = append(violations, apperr.FieldViolation{
			Field: "rejected_qty", Message: "rejected_qty must not be negative",
		})
	}
	if input.AcceptedQty.Add(input.RejectedQty).GreaterThan(input.ReceivedQty) {
		violations = append(violations, apperr.FieldViolation{
			Field: "accepted_qty", Message: "accepted_qty + rejected_qty must not exceed received_qty",
		})
	}

	return violations
}

// ItemBalance is the derived reconciliation of one PO line against all GRN
// lines referencing it.
type ItemBalance struct {
	POItemID      uint                `json:"po_item_id"`
	ItemCode      string              `json:"item_code"`
	PoQty         decimal.Decimal     `json:"po_qty"`
	TotalAccepted decimal.Decimal     `json:"total_accepted"`
	TotalRejected decimal.Decimal     `json:"total_rejected"`
	BalanceQty    decimal.Decimal     `json:"balance_qty"`
	Status        models.POItemStatus `json:"status"`
}

// ReconcileItem derives the PO line balance from GRN history. Only statuses
// in the accepted set contribute to total_accepted; rejected totals come
// from REJECTED lines only.
func ReconcileItem(poItem *models.PurchaseOrderItem, grnItems []models.GRNItem) ItemBalance {
	totalAccepted := decimal.Zero
	totalRejected := decimal.Zero

	for _, grnItem := range grnItems {
		if slices.Contains(models.AcceptedGRNItemStatuses, grnItem.Status) {
			totalAccepted = totalAccepted.Add(grnItem.AcceptedQty)
		}
		if grnItem.Status == models.GRNItemRejected {
			totalRejected = totalRejected.Add(grnItem.RejectedQty)
		}
	}

	balanceQty := poItem.Quantity.Sub(totalAccepted)

	var status models.POItemStatus
	switch {
	case balanceQty.IsPositive():
		status = models.POItemOpen
	case balanceQty.IsZero():
		status = models.POItemClosed
	default:
		status = models.POItemExcess
	}

	return ItemBalance{
		POItemID:      poItem.ID,
		ItemCode:      poItem.ItemCode,
		PoQty:         poItem.Quantity,
		TotalAccepted: totalAccepted,
		TotalRejected: totalRejected,
		BalanceQty:    balanceQty,
		Status:        status,
	}
}

type POBalance struct {
	POID   uint            `json:"po_id"`
	PoNo   string          `json:"po_no"`
	Status models.POStatus `json:"status"`
	Items  []ItemBalance   `json:"items"`
}

// ReconcilePO aggregates line balances into the order-level status. Lines in
// EXCESS count as fully received, so EXCESS plus CLOSED still completes the
// order; an order with nothing accepted stays ORDERED.
func ReconcilePO(po *models.PurchaseOrder, grnItemsByLine map[uint][]models.GRNItem) POBalance {
	result := POBalance{POID: po.ID, PoNo: po.PoNo}

	allReceived := len(po.Items) > 0
	anyOpen := false
	anyAccepted := false

	for i := range po.Items {
		line := ReconcileItem(&po.Items[i], grnItemsByLine[po.Items[i].ID])
		result.Items = append(result.Items, line)

		if line.Status == models.POItemOpen {
			anyOpen = true
			allReceived = false
		}
		if line.TotalAccepted.IsPositive() {
			anyAccepted = true
		}
	}

	switch {
	case allReceived:
		result.Status = models.POCompleted
	case anyOpen && anyAccepted:
		result.Status = models.POPartiallyReceived
	default:
		result.Status = models.POOrdered
	}

	return result
}

// ReconcileGRNStatus derives the receipt header status from its lines:
// REJECTED when every line was rejected, PARTIALLY_ACCEPTED when any line
// was rejected or short, RECEIVED otherwise.
func ReconcileGRNStatus(items []models.GRNItem) models.GRNStatus {
	if len(items) == 0 {
		return models.GRNReceived
	}

	rejected := 0
	short := false
	for _, item := range items {
		switch item.Status {
		case models.GRNItemRejected:
			rejected++
		case models.GRNItemShortage:
			short = true
		}
	}

	switch {
	case rejected == len(items):
		return models.GRNRejected
	case rejected > 0 || short:
		return models.GRNPartiallyAccepted
	default:
		return models.GRNReceived
	}
}

type GRNResult struct {
	GrnID   uint             `json:"grn_id"`
	GrnNo   string           `json:"grn_no"`
	Status  models.GRNStatus `json:"status"`
	Items   []models.GRNItem `json:"items"`
	Summary POBalance        `json:"summary"`
}

// CreateGRNWithItems records the receipt, posts inventory for each accepted
// quantity and recomputes the PO's derived statuses, all in one transaction.
func (s *GRNService) CreateGRNWithItems(input CreateGRNInput, userID int) (*GRNResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, structValidationError(err)
	}

	var violations []apperr.FieldViolation
	for i, item := range input.Items {
		for _, v := range ValidateGRNItemInput(item) {
			violations = append(violations, apperr.FieldViolation{
				Field:   fmt.Sprintf("items[%d].%s", i, v.Field),
				Message: v.Message,
			})
		}
	}
	if len(violations) > 0 {
		return nil, apperr.Validation("invalid GRN item quantities", violations)
	}

	var result *GRNResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewGRNRepository(tx)
		ledger := repositories.NewLedgerRepository(tx)

		po, err := repo.GetPOWithItems(input.PoID)
		if err != nil {
			return err
		}

		poItemsByID := make(map[uint]*models.PurchaseOrderItem)
		poItemsByCode := make(map[string]*models.PurchaseOrderItem)
		for i := range po.Items {
			poItemsByID[po.Items[i].ID] = &po.Items[i]
			poItemsByCode[po.Items[i].ItemCode] = &po.Items[i]
		}

		grnNo, err := repo.GenerateGrnNo()
		if err != nil {
			return err
		}

		header := models.GRNHeader{
			GrnNo:           grnNo,
			PurchaseOrderID: po.ID,
			ReceiptNo:       input.ReceiptNo,
			GrnDate:         input.GrnDate,
			Notes:           input.Notes,
			CreatedBy:       userID,
		}
		if err := tx.Create(&header).Error; err != nil {
			return apperr.Persistence(err)
		}

		var createdItems []models.GRNItem
		for _, itemInput := range input.Items {
			poItem := poItemsByID[itemInput.PoItemID]
			if poItem == nil {
				poItem = poItemsByCode[itemInput.ItemCode]
			}
			if poItem == nil {
				return apperr.NotFound("PO line not found for po_item_id %d / item_code %q",
					itemInput.PoItemID, itemInput.ItemCode)
			}

			grnItem, err := s.createGRNItem(tx, ledger, &header, poItem, itemInput, userID)
			if err != nil {
				return err
			}
			createdItems = append(createdItems, *grnItem)
		}

		headerStatus, err := s.updateGRNStatusTx(tx, header.ID, userID)
		if err != nil {
			return err
		}

		summary, err := s.updatePOStatusTx(tx, po.ID, userID)
		if err != nil {
			return err
		}

		result = &GRNResult{
			GrnID:   header.ID,
			GrnNo:   header.GrnNo,
			Status:  headerStatus,
			Items:   createdItems,
			Summary: *summary,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// createGRNItem writes one GRN line and its ledger postings. Quantity above
// the PO line's remaining balance is held back as overage pending an
// explicit excess decision.
func (s *GRNService) createGRNItem(tx *gorm.DB, ledger *repositories.LedgerRepository, header *models.GRNHeader, poItem *models.PurchaseOrderItem, input GRNItemInput, userID int) (*models.GRNItem, error) {
	repo := repositories.NewGRNRepository(tx)

	previous, err := repo.GetGRNItemsForPOItem(poItem.ID)
	if err != nil {
		return nil, err
	}
	alreadyAccepted := decimal.Zero
	for _, prev := range previous {
		if slices.Contains(models.AcceptedGRNItemStatuses, prev.Status) {
			alreadyAccepted = alreadyAccepted.Add(prev.AcceptedQty)
		}
	}

	remaining := poItem.Quantity.Sub(alreadyAccepted)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	acceptedQty := input.AcceptedQty
	if acceptedQty.GreaterThan(remaining) {
		acceptedQty = remaining
	}
	acceptOverflow := input.AcceptedQty.Sub(acceptedQty)

	// Excess is anything physically received beyond the line's remaining
	// balance, whether or not the caller tried to accept it. Rejected goods
	// do not consume the line, so a redelivery after rejection is not excess.
	overageQty := acceptOverflow
	goodReceived := input.ReceivedQty.Sub(input.RejectedQty)
	if recvOverage := goodReceived.Sub(remaining); recvOverage.GreaterThan(overageQty) {
		overageQty = recvOverage
	}

	// Shortage is genuine under-delivery only: received quantity that is
	// neither accepted, rejected, nor parked as pending excess.
	shortageQty := input.ReceivedQty.Sub(input.AcceptedQty).Sub(input.RejectedQty).
		Sub(overageQty.Sub(acceptOverflow))
	if shortageQty.IsNegative() {
		shortageQty = decimal.Zero
	}

	status := models.GRNItemReceived
	switch {
	case input.RejectedQty.Equal(input.ReceivedQty) && input.ReceivedQty.IsPositive():
		status = models.GRNItemRejected
	case shortageQty.IsPositive():
		status = models.GRNItemShortage
	}

	whsCode := input.WhsCode
	if whsCode == "" {
		whsCode = poItem.WhsCode
	}
	if whsCode == "" {
		whsCode = config.DefaultWhsCode
	}

	grnItem := models.GRNItem{
		GRNHeaderID:         header.ID,
		PurchaseOrderItemID: poItem.ID,
		ItemCode:            poItem.ItemCode,
		WhsCode:             whsCode,
		PoQty:               poItem.Quantity,
		ReceivedQty:         input.ReceivedQty,
		AcceptedQty:         acceptedQty,
		RejectedQty:         input.RejectedQty,
		ShortageQty:         shortageQty,
		OverageQty:          overageQty,
		Status:              status,
		Remarks:             input.Remarks,
		CreatedBy:           userID,
	}
	if err := tx.Create(&grnItem).Error; err != nil {
		return nil, apperr.Persistence(err)
	}

	if overageQty.IsPositive() {
		approval := models.GrnExcessApproval{
			GRNItemID: grnItem.ID,
			ExcessQty: overageQty,
			Status:    models.ExcessPending,
		}
		if err := tx.Create(&approval).Error; err != nil {
			return nil, apperr.Persistence(err)
		}
	}

	if grnItem.AcceptedQty.IsPositive() && grnItem.Status != models.GRNItemRejected {
		_, err := ledger.Post(repositories.PostingInput{
			ItemCode:      grnItem.ItemCode,
			WhsCode:       grnItem.WhsCode,
			Direction:     models.DirectionIn,
			PostingType:   models.PostingGRNReceipt,
			Quantity:      grnItem.AcceptedQty,
			ReferenceType: "GRN_ITEM",
			ReferenceID:   grnItem.ID,
			Remarks:       "goods receipt " + header.GrnNo,
			UserID:        userID,
		})
		if err != nil {
			return nil, err
		}
	}

	if grnItem.RejectedQty.IsPositive() {
		_, err := ledger.Post(repositories.PostingInput{
			ItemCode:      grnItem.ItemCode,
			WhsCode:       grnItem.WhsCode,
			Direction:     models.DirectionAdjustment,
			PostingType:   models.PostingRejection,
			Quantity:      grnItem.RejectedQty,
			ReferenceType: "GRN_ITEM",
			ReferenceID:   grnItem.ID,
			Remarks:       "rejected on receipt " + header.GrnNo,
			UserID:        userID,
		})
		if err != nil {
			return nil, err
		}
	}

	return &grnItem, nil
}

// CalculateItemBalance is the read-only projection of one PO line.
func (s *GRNService) CalculateItemBalance(poItemID uint) (*ItemBalance, error) {
	repo := repositories.NewGRNRepository(s.db)

	poItem, err := repo.GetPOItem(poItemID)
	if err != nil {
		return nil, err
	}
	grnItems, err := repo.GetGRNItemsForPOItem(poItemID)
	if err != nil {
		return nil, err
	}

	balance := ReconcileItem(poItem, grnItems)
	return &balance, nil
}

// CalculatePOBalance is the read-only projection of a whole PO.
func (s *GRNService) CalculatePOBalance(poID uint) (*POBalance, error) {
	return s.calculatePOBalance(s.db, poID)
}

func (s *GRNService) calculatePOBalance(db *gorm.DB, poID uint) (*POBalance, error) {
	repo := repositories.NewGRNRepository(db)

	po, err := repo.GetPOWithItems(poID)
	if err != nil {
		return nil, err
	}

	grnItemsByLine := make(map[uint][]models.GRNItem)
	for _, poItem := range po.Items {
		grnItems, err := repo.GetGRNItemsForPOItem(poItem.ID)
		if err != nil {
			return nil, err
		}
		grnItemsByLine[poItem.ID] = grnItems
	}

	balance := ReconcilePO(po, grnItemsByLine)
	return &balance, nil
}

// UpdatePOStatus recomputes every derived status from GRN history and writes
// the result back in one transaction. Recomputing with no new GRN activity
// leaves the stored values untouched.
func (s *GRNService) UpdatePOStatus(poID uint, userID int) (*POBalance, error) {
	var balance *POBalance
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = s.updatePOStatusTx(tx, poID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *GRNService) updatePOStatusTx(tx *gorm.DB, poID uint, userID int) (*POBalance, error) {
	// Totals are re-read inside this transaction: values computed before it
	// began must not be trusted under concurrent GRN processing.
	balance, err := s.calculatePOBalance(tx, poID)
	if err != nil {
		return nil, err
	}

	for _, line := range balance.Items {
		err := tx.Model(&models.PurchaseOrderItem{}).
			Where("id = ? AND status <> ?", line.POItemID, line.Status).
			Updates(map[string]interface{}{
				"status":     line.Status,
				"updated_by": userID,
			}).Error
		if err != nil {
			return nil, apperr.Persistence(err)
		}
	}

	err = tx.Model(&models.PurchaseOrder{}).
		Where("id = ? AND status <> ?", poID, balance.Status).
		Updates(map[string]interface{}{
			"status":     balance.Status,
			"updated_by": userID,
		}).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	return balance, nil
}

// updateGRNStatusTx re-derives the header status from the receipt's stored
// lines and writes it back only when it changed.
func (s *GRNService) updateGRNStatusTx(tx *gorm.DB, grnID uint, userID int) (models.GRNStatus, error) {
	repo := repositories.NewGRNRepository(tx)

	header, err := repo.GetGRNHeader(grnID)
	if err != nil {
		return "", err
	}

	status := ReconcileGRNStatus(header.Items)
	err = tx.Model(&models.GRNHeader{}).
		Where("id = ? AND status <> ?", grnID, status).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": userID,
		}).Error
	if err != nil {
		return "", apperr.Persistence(err)
	}

	return status, nil
}

type GRNItemPatch struct {
	ReceivedQty *decimal.Decimal `json:"received_qty"`
	AcceptedQty *decimal.Decimal `json:"accepted_qty"`
	RejectedQty *decimal.Decimal `json:"rejected_qty"`
	Remarks     *string          `json:"remarks"`
}

// UpdateGRNItem applies a partial quantity correction. The accepted-quantity
// delta is posted as a ledger adjustment so the stock balance follows the
// correction, then GRN and PO statuses are recomputed.
func (s *GRNService) UpdateGRNItem(grnItemID uint, patch GRNItemPatch, userID int) (*models.GRNItem, error) {
	var updated *models.GRNItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewGRNRepository(tx)
		ledger := repositories.NewLedgerRepository(tx)

		grnItem, err := repo.GetGRNItem(grnItemID)
		if err != nil {
			return err
		}

		previousAccepted := grnItem.AcceptedQty

		if patch.ReceivedQty != nil {
			grnItem.ReceivedQty = *patch.ReceivedQty
		}
		if patch.AcceptedQty != nil {
			grnItem.AcceptedQty = *patch.AcceptedQty
		}
		if patch.RejectedQty != nil {
			grnItem.RejectedQty = *patch.RejectedQty
		}
		if patch.Remarks != nil {
			grnItem.Remarks = *patch.Remarks
		}

		violations := ValidateGRNItemInput(GRNItemInput{
			PoItemID:    grnItem.PurchaseOrderItemID,
			PoQty:       grnItem.PoQty,
			ReceivedQty: grnItem.ReceivedQty,
			AcceptedQty: grnItem.AcceptedQty,
			RejectedQty: grnItem.RejectedQty,
		})
		if len(violations) > 0 {
			return apperr.Validation("invalid GRN item quantities", violations)
		}

		// Quantity already held back as excess is not a shortage.
		grnItem.ShortageQty = grnItem.ReceivedQty.Sub(grnItem.AcceptedQty).
			Sub(grnItem.RejectedQty).Sub(grnItem.OverageQty)
		if grnItem.ShortageQty.IsNegative() {
			grnItem.ShortageQty = decimal.Zero
		}

		if grnItem.Status != models.GRNItemExcessAccepted {
			switch {
			case grnItem.RejectedQty.Equal(grnItem.ReceivedQty) && grnItem.ReceivedQty.IsPositive():
				grnItem.Status = models.GRNItemRejected
			case grnItem.ShortageQty.IsPositive():
				grnItem.Status = models.GRNItemShortage
			default:
				grnItem.Status = models.GRNItemReceived
			}
		}

		grnItem.UpdatedBy = userID
		if err := tx.Save(grnItem).Error; err != nil {
			return apperr.Persistence(err)
		}

		delta := grnItem.AcceptedQty.Sub(previousAccepted)
		if !delta.IsZero() {
			_, err := ledger.Post(repositories.PostingInput{
				ItemCode:      grnItem.ItemCode,
				WhsCode:       grnItem.WhsCode,
				Direction:     models.DirectionAdjustment,
				PostingType:   models.PostingAdjustment,
				Quantity:      delta,
				ReferenceType: "GRN_ITEM",
				ReferenceID:   grnItem.ID,
				Remarks:       "accepted quantity corrected",
				UserID:        userID,
			})
			if err != nil {
				return err
			}
		}

		header, err := repo.GetGRNHeader(grnItem.GRNHeaderID)
		if err != nil {
			return err
		}
		if _, err := s.updateGRNStatusTx(tx, header.ID, userID); err != nil {
			return err
		}
		if _, err := s.updatePOStatusTx(tx, header.PurchaseOrderID, userID); err != nil {
			return err
		}

		updated = grnItem
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApproveExcessGRNItem counts the held-back overage into acceptance. The
// decision is terminal.
func (s *GRNService) ApproveExcessGRNItem(grnItemID uint, notes string, userID int) (*models.GRNItem, error) {
	var updated *models.GRNItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewGRNRepository(tx)
		ledger := repositories.NewLedgerRepository(tx)

		grnItem, err := repo.GetGRNItem(grnItemID)
		if err != nil {
			return err
		}

		approval, err := s.requirePendingApproval(tx, repo, grnItemID)
		if err != nil {
			return err
		}

		approval.Status = models.ExcessApproved
		approval.Notes = notes
		approval.DecidedBy = userID
		if err := tx.Save(approval).Error; err != nil {
			return apperr.Persistence(err)
		}

		grnItem.AcceptedQty = grnItem.AcceptedQty.Add(approval.ExcessQty)
		grnItem.Status = models.GRNItemExcessAccepted
		grnItem.UpdatedBy = userID
		if err := tx.Save(grnItem).Error; err != nil {
			return apperr.Persistence(err)
		}

		approvalID := approval.ID
		_, err = ledger.Post(repositories.PostingInput{
			ItemCode:      grnItem.ItemCode,
			WhsCode:       grnItem.WhsCode,
			Direction:     models.DirectionIn,
			PostingType:   models.PostingExcessReceipt,
			Quantity:      approval.ExcessQty,
			ReferenceType: "GRN_EXCESS_APPROVAL",
			ReferenceID:   approvalID,
			Remarks:       "approved excess receipt",
			UserID:        userID,
		})
		if err != nil {
			return err
		}

		header, err := repo.GetGRNHeader(grnItem.GRNHeaderID)
		if err != nil {
			return err
		}
		if _, err := s.updateGRNStatusTx(tx, header.ID, userID); err != nil {
			return err
		}
		if _, err := s.updatePOStatusTx(tx, header.PurchaseOrderID, userID); err != nil {
			return err
		}

		updated = grnItem
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RejectExcessGRNItem returns the overage to the vendor: it moves into the
// rejected total and is annotated on the ledger without moving stock.
func (s *GRNService) RejectExcessGRNItem(grnItemID uint, reason string, userID int) (*models.GRNItem, error) {
	var updated *models.GRNItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewGRNRepository(tx)
		ledger := repositories.NewLedgerRepository(tx)

		grnItem, err := repo.GetGRNItem(grnItemID)
		if err != nil {
			return err
		}

		approval, err := s.requirePendingApproval(tx, repo, grnItemID)
		if err != nil {
			return err
		}

		approval.Status = models.ExcessRejected
		approval.Notes = reason
		approval.DecidedBy = userID
		if err := tx.Save(approval).Error; err != nil {
			return apperr.Persistence(err)
		}

		grnItem.RejectedQty = grnItem.RejectedQty.Add(approval.ExcessQty)
		grnItem.UpdatedBy = userID
		if err := tx.Save(grnItem).Error; err != nil {
			return apperr.Persistence(err)
		}

		approvalID := approval.ID
		_, err = ledger.Post(repositories.PostingInput{
			ItemCode:      grnItem.ItemCode,
			WhsCode:       grnItem.WhsCode,
			Direction:     models.DirectionAdjustment,
			PostingType:   models.PostingRejection,
			Quantity:      approval.ExcessQty,
			ReferenceType: "GRN_EXCESS_APPROVAL",
			ReferenceID:   approvalID,
			Remarks:       "rejected excess receipt",
			UserID:        userID,
		})
		if err != nil {
			return err
		}

		header, err := repo.GetGRNHeader(grnItem.GRNHeaderID)
		if err != nil {
			return err
		}
		if _, err := s.updateGRNStatusTx(tx, header.ID, userID); err != nil {
			return err
		}
		if _, err := s.updatePOStatusTx(tx, header.PurchaseOrderID, userID); err != nil {
			return err
		}

		updated = grnItem
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// requirePendingApproval distinguishes "never had an excess" (not found)
// from "already decided" (conflict, the decision is terminal).
func (s *GRNService) requirePendingApproval(tx *gorm.DB, repo *repositories.GRNRepository, grnItemID uint) (*models.GrnExcessApproval, error) {
	approval, err := repo.GetPendingExcessApproval(grnItemID)
	if err == nil {
		return approval, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	var decided int64
	if countErr := tx.Model(&models.GrnExcessApproval{}).
		Where("grn_item_id = ? AND status <> ?", grnItemID, models.ExcessPending).
		Count(&decided).Error; countErr != nil {
		return nil, apperr.Persistence(countErr)
	}
	if decided > 0 {
		return nil, apperr.Conflict("excess for GRN item %d has already been decided", grnItemID)
	}
	return nil, err
}
