package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
)

func TestValidateGRNItemInput(t *testing.T) {
	valid := GRNItemInput{
		PoItemID:    1,
		PoQty:       decimal.NewFromInt(100),
		ReceivedQty: decimal.NewFromInt(90),
		AcceptedQty: decimal.NewFromInt(80),
		RejectedQty: decimal.NewFromInt(10),
	}
	assert.Empty(t, ValidateGRNItemInput(valid))

	tests := []struct {
		name      string
		mutate    func(*GRNItemInput)
		wantField string
	}{
		{"negative po qty", func(in *GRNItemInput) { in.PoQty = decimal.NewFromInt(-1) }, "po_qty"},
		{"negative received", func(in *GRNItemInput) { in.ReceivedQty = decimal.NewFromInt(-5) }, "received_qty"},
		{"negative accepted", func(in *GRNItemInput) { in.AcceptedQty = decimal.NewFromInt(-5) }, "accepted_qty"},
		{"negative rejected", func(in *GRNItemInput) { in.RejectedQty = decimal.NewFromInt(-5) }, "rejected_qty"},
		{"accepted plus rejected above received", func(in *GRNItemInput) {
			in.AcceptedQty = decimal.NewFromInt(85)
			in.RejectedQty = decimal.NewFromInt(10)
		}, "accepted_qty"},
		{"no line reference", func(in *GRNItemInput) {
			in.PoItemID = 0
			in.ItemCode = ""
		}, "po_item_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			violations := ValidateGRNItemInput(input)
			require.NotEmpty(t, violations)

			found := false
			for _, v := range violations {
				if v.Field == tt.wantField {
					found = true
				}
			}
			assert.True(t, found, "expected a violation on %s, got %+v", tt.wantField, violations)
		})
	}
}

func TestReconcileItem(t *testing.T) {
	poItem := &models.PurchaseOrderItem{ItemCode: "RM-COIL-01", Quantity: decimal.NewFromInt(100)}
	poItem.ID = 11

	t.Run("no receipts stays open", func(t *testing.T) {
		balance := ReconcileItem(poItem, nil)
		assert.True(t, balance.BalanceQty.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, models.POItemOpen, balance.Status)
	})

	t.Run("full acceptance closes the line", func(t *testing.T) {
		balance := ReconcileItem(poItem, []models.GRNItem{
			{Status: models.GRNItemReceived, AcceptedQty: decimal.NewFromInt(60)},
			{Status: models.GRNItemPassed, AcceptedQty: decimal.NewFromInt(40)},
		})
		assert.True(t, balance.TotalAccepted.Equal(decimal.NewFromInt(100)))
		assert.True(t, balance.BalanceQty.IsZero())
		assert.Equal(t, models.POItemClosed, balance.Status)
	})

	t.Run("rejected lines do not count toward acceptance", func(t *testing.T) {
		balance := ReconcileItem(poItem, []models.GRNItem{
			{Status: models.GRNItemReceived, AcceptedQty: decimal.NewFromInt(70)},
			{Status: models.GRNItemRejected, AcceptedQty: decimal.Zero, RejectedQty: decimal.NewFromInt(30)},
		})
		assert.True(t, balance.TotalAccepted.Equal(decimal.NewFromInt(70)))
		assert.True(t, balance.TotalRejected.Equal(decimal.NewFromInt(30)))
		assert.True(t, balance.BalanceQty.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, models.POItemOpen, balance.Status)
	})

	t.Run("acceptance above order flips to excess", func(t *testing.T) {
		balance := ReconcileItem(poItem, []models.GRNItem{
			{Status: models.GRNItemExcessAccepted, AcceptedQty: decimal.NewFromInt(105)},
		})
		assert.True(t, balance.BalanceQty.Equal(decimal.NewFromInt(-5)))
		assert.Equal(t, models.POItemExcess, balance.Status)
	})
}

func TestReconcilePO(t *testing.T) {
	po := &models.PurchaseOrder{PoNo: "PO-100"}
	po.ID = 1

	lineA := models.PurchaseOrderItem{ItemCode: "RM-A", Quantity: decimal.NewFromInt(50)}
	lineA.ID = 1
	lineB := models.PurchaseOrderItem{ItemCode: "RM-B", Quantity: decimal.NewFromInt(30)}
	lineB.ID = 2
	po.Items = []models.PurchaseOrderItem{lineA, lineB}

	t.Run("nothing accepted stays ordered", func(t *testing.T) {
		result := ReconcilePO(po, map[uint][]models.GRNItem{})
		assert.Equal(t, models.POOrdered, result.Status)
	})

	t.Run("one line open with acceptance is partially received", func(t *testing.T) {
		result := ReconcilePO(po, map[uint][]models.GRNItem{
			1: {{Status: models.GRNItemReceived, AcceptedQty: decimal.NewFromInt(50)}},
		})
		assert.Equal(t, models.POPartiallyReceived, result.Status)
	})

	t.Run("all lines closed completes the order", func(t *testing.T) {
		result := ReconcilePO(po, map[uint][]models.GRNItem{
			1: {{Status: models.GRNItemReceived, AcceptedQty: decimal.NewFromInt(50)}},
			2: {{Status: models.GRNItemReceived, AcceptedQty: decimal.NewFromInt(30)}},
		})
		assert.Equal(t, models.POCompleted, result.Status)
	})

	t.Run("excess next to closed still completes", func(t *testing.T) {
		result := ReconcilePO(po, map[uint][]models.GRNItem{
			1: {{Status: models.GRNItemExcessAccepted, AcceptedQty: decimal.NewFromInt(55)}},
			2: {{Status: models.GRNItemReceived, AcceptedQty: decimal.NewFromInt(30)}},
		})
		assert.Equal(t, models.POCompleted, result.Status)
	})
}

func TestCreateGRNFullAcceptance(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-01", Quantity: qty(t, "100")})

	result, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "100"),
			ReceivedQty: qty(t, "100"),
			AcceptedQty: qty(t, "100"),
		}},
	}, 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, models.GRNItemReceived, result.Items[0].Status)

	line := result.Summary.Items[0]
	assert.True(t, line.BalanceQty.IsZero())
	assert.Equal(t, models.POItemClosed, line.Status)
	assert.Equal(t, models.POCompleted, result.Summary.Status)

	// The accepted quantity must be on the shelf.
	ledger := repositories.NewLedgerRepository(db)
	balance, err := ledger.GetBalance("RM-SHEET-01", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(qty(t, "100")))

	var reloadedPO models.PurchaseOrder
	require.NoError(t, db.First(&reloadedPO, po.ID).Error)
	assert.Equal(t, models.POCompleted, reloadedPO.Status)
}

func TestCreateGRNShortageThenTopUp(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-02", Quantity: qty(t, "100")})

	first, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "100"),
			ReceivedQty: qty(t, "60"),
			AcceptedQty: qty(t, "60"),
		}},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.POPartiallyReceived, first.Summary.Status)
	assert.True(t, first.Summary.Items[0].BalanceQty.Equal(qty(t, "40")))

	second, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "100"),
			ReceivedQty: qty(t, "40"),
			AcceptedQty: qty(t, "40"),
		}},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.POCompleted, second.Summary.Status)
	assert.True(t, second.Summary.Items[0].BalanceQty.IsZero())

	ledger := repositories.NewLedgerRepository(db)
	balance, err := ledger.GetBalance("RM-SHEET-02", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(qty(t, "100")))
}

func TestCreateGRNExcessNeedsApproval(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-03", Quantity: qty(t, "50")})

	result, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "50"),
			ReceivedQty: qty(t, "55"),
			AcceptedQty: qty(t, "55"),
		}},
	}, 1)
	require.NoError(t, err)

	grnItem := result.Items[0]
	// Acceptance is capped at the remaining balance; the overage waits.
	assert.True(t, grnItem.AcceptedQty.Equal(qty(t, "50")))
	assert.True(t, grnItem.OverageQty.Equal(qty(t, "5")))

	var approval models.GrnExcessApproval
	require.NoError(t, db.Where("grn_item_id = ?", grnItem.ID).First(&approval).Error)
	assert.Equal(t, models.ExcessPending, approval.Status)
	assert.True(t, approval.ExcessQty.Equal(qty(t, "5")))

	ledger := repositories.NewLedgerRepository(db)
	balance, err := ledger.GetBalance("RM-SHEET-03", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(qty(t, "50")))

	t.Run("approval books the overage", func(t *testing.T) {
		updated, err := svc.ApproveExcessGRNItem(grnItem.ID, "supplier credit agreed", 2)
		require.NoError(t, err)
		assert.Equal(t, models.GRNItemExcessAccepted, updated.Status)
		assert.True(t, updated.AcceptedQty.Equal(qty(t, "55")))

		balance, err := ledger.GetBalance("RM-SHEET-03", "WH-MAIN")
		require.NoError(t, err)
		assert.True(t, balance.Equal(qty(t, "55")))

		itemBalance, err := svc.CalculateItemBalance(po.Items[0].ID)
		require.NoError(t, err)
		assert.True(t, itemBalance.TotalAccepted.Equal(qty(t, "55")))
		assert.Equal(t, models.POItemExcess, itemBalance.Status)

		poBalance, err := svc.CalculatePOBalance(po.ID)
		require.NoError(t, err)
		assert.Equal(t, models.POCompleted, poBalance.Status)
	})

	t.Run("second decision conflicts", func(t *testing.T) {
		_, err := svc.ApproveExcessGRNItem(grnItem.ID, "again", 2)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestRejectExcessKeepsBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-04", Quantity: qty(t, "50")})

	result, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "50"),
			ReceivedQty: qty(t, "58"),
			AcceptedQty: qty(t, "58"),
		}},
	}, 1)
	require.NoError(t, err)

	grnItem := result.Items[0]
	_, err = svc.RejectExcessGRNItem(grnItem.ID, "over-delivery not ordered", 2)
	require.NoError(t, err)

	ledger := repositories.NewLedgerRepository(db)
	balance, err := ledger.GetBalance("RM-SHEET-04", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(qty(t, "50")), "rejected excess must not enter stock, got %s", balance)

	var reloaded models.GRNItem
	require.NoError(t, db.First(&reloaded, grnItem.ID).Error)
	assert.True(t, reloaded.RejectedQty.Equal(qty(t, "8")))
}

func TestCreateGRNValidationReportsLineFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-05", Quantity: qty(t, "10")})

	_, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "10"),
			ReceivedQty: qty(t, "5"),
			AcceptedQty: qty(t, "4"),
			RejectedQty: qty(t, "3"),
		}},
	}, 1)
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	appErr := apperr.From(err)
	require.NotEmpty(t, appErr.Fields)
	assert.Equal(t, "items[0].accepted_qty", appErr.Fields[0].Field)
}

// Recomputing the PO status with no new receipts must not change anything.
func TestUpdatePOStatusIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-06", Quantity: qty(t, "20")})

	_, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "20"),
			ReceivedQty: qty(t, "20"),
			AcceptedQty: qty(t, "20"),
		}},
	}, 1)
	require.NoError(t, err)

	first, err := svc.UpdatePOStatus(po.ID, 1)
	require.NoError(t, err)
	second, err := svc.UpdatePOStatus(po.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, models.POCompleted, second.Status)

	var reloaded models.PurchaseOrder
	require.NoError(t, db.First(&reloaded, po.ID).Error)
	assert.Equal(t, models.POCompleted, reloaded.Status)
}

func TestUpdateGRNItemAdjustsStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-07", Quantity: qty(t, "100")})

	result, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "100"),
			ReceivedQty: qty(t, "80"),
			AcceptedQty: qty(t, "80"),
		}},
	}, 1)
	require.NoError(t, err)

	newAccepted := qty(t, "75")
	updated, err := svc.UpdateGRNItem(result.Items[0].ID, GRNItemPatch{AcceptedQty: &newAccepted}, 2)
	require.NoError(t, err)
	assert.True(t, updated.AcceptedQty.Equal(qty(t, "75")))

	// The correction must flow into the cached balance.
	ledger := repositories.NewLedgerRepository(db)
	balance, err := ledger.GetBalance("RM-SHEET-07", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(qty(t, "75")), "got %s", balance)

	sum, err := ledger.SignedSum("RM-SHEET-07", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(sum))
}

func TestExcessDetectedFromReceivedQty(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-08", Quantity: qty(t, "50")})

	// The delivery physically over-shipped; the receiver only accepted up
	// to the ordered quantity. The five extra units are excess, not a
	// shortage, and must wait for an explicit decision.
	result, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "50"),
			ReceivedQty: qty(t, "55"),
			AcceptedQty: qty(t, "50"),
		}},
	}, 1)
	require.NoError(t, err)

	grnItem := result.Items[0]
	assert.Equal(t, models.GRNItemReceived, grnItem.Status)
	assert.True(t, grnItem.AcceptedQty.Equal(qty(t, "50")))
	assert.True(t, grnItem.OverageQty.Equal(qty(t, "5")), "got overage %s", grnItem.OverageQty)
	assert.True(t, grnItem.ShortageQty.IsZero(), "got shortage %s", grnItem.ShortageQty)
	assert.True(t, grnItem.ReceivedQty.LessThanOrEqual(grnItem.PoQty.Add(grnItem.OverageQty)))

	var approval models.GrnExcessApproval
	require.NoError(t, db.Where("grn_item_id = ?", grnItem.ID).First(&approval).Error)
	assert.Equal(t, models.ExcessPending, approval.Status)
	assert.True(t, approval.ExcessQty.Equal(qty(t, "5")))

	updated, err := svc.ApproveExcessGRNItem(grnItem.ID, "kept against next order", 2)
	require.NoError(t, err)
	assert.Equal(t, models.GRNItemExcessAccepted, updated.Status)
	assert.True(t, updated.AcceptedQty.Equal(qty(t, "55")))

	ledger := repositories.NewLedgerRepository(db)
	balance, err := ledger.GetBalance("RM-SHEET-08", "WH-MAIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(qty(t, "55")))
}

func TestShortageIsUnderDeliveryOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-09", Quantity: qty(t, "50")})

	result, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "50"),
			ReceivedQty: qty(t, "45"),
			AcceptedQty: qty(t, "40"),
		}},
	}, 1)
	require.NoError(t, err)

	grnItem := result.Items[0]
	assert.Equal(t, models.GRNItemShortage, grnItem.Status)
	assert.True(t, grnItem.ShortageQty.Equal(qty(t, "5")))
	assert.True(t, grnItem.OverageQty.IsZero())

	var approvals int64
	require.NoError(t, db.Model(&models.GrnExcessApproval{}).
		Where("grn_item_id = ?", grnItem.ID).Count(&approvals).Error)
	assert.Zero(t, approvals)
}

func TestReconcileGRNStatus(t *testing.T) {
	cases := []struct {
		name  string
		items []models.GRNItem
		want  models.GRNStatus
	}{
		{"no lines", nil, models.GRNReceived},
		{"all accepted", []models.GRNItem{
			{Status: models.GRNItemReceived},
			{Status: models.GRNItemExcessAccepted},
		}, models.GRNReceived},
		{"one short line", []models.GRNItem{
			{Status: models.GRNItemReceived},
			{Status: models.GRNItemShortage},
		}, models.GRNPartiallyAccepted},
		{"one rejected line", []models.GRNItem{
			{Status: models.GRNItemReceived},
			{Status: models.GRNItemRejected},
		}, models.GRNPartiallyAccepted},
		{"all rejected", []models.GRNItem{
			{Status: models.GRNItemRejected},
			{Status: models.GRNItemRejected},
		}, models.GRNRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReconcileGRNStatus(tc.items))
		})
	}
}

func TestHeaderStatusStoredAndRecomputed(t *testing.T) {
	db := newTestDB(t)
	svc := NewGRNService(db)

	po := makePO(t, db, models.PurchaseOrderItem{ItemCode: "RM-SHEET-10", Quantity: qty(t, "100")})

	result, err := svc.CreateGRNWithItems(CreateGRNInput{
		PoID: po.ID,
		Items: []GRNItemInput{{
			PoItemID:    po.Items[0].ID,
			PoQty:       qty(t, "100"),
			ReceivedQty: qty(t, "60"),
			AcceptedQty: qty(t, "50"),
		}},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GRNPartiallyAccepted, result.Status)

	var header models.GRNHeader
	require.NoError(t, db.First(&header, result.GrnID).Error)
	assert.Equal(t, models.GRNPartiallyAccepted, header.Status)

	// Correcting the line to full acceptance clears the shortage, so the
	// header follows.
	newAccepted := qty(t, "60")
	_, err = svc.UpdateGRNItem(result.Items[0].ID, GRNItemPatch{AcceptedQty: &newAccepted}, 2)
	require.NoError(t, err)

	require.NoError(t, db.First(&header, result.GrnID).Error)
	assert.Equal(t, models.GRNReceived, header.Status)
}
