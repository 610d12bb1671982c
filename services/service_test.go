package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codigix/Aluminium-erp-sub006/migration"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))
	return db
}

func qty(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

var orderSeq int

func makeOrder(t *testing.T, db *gorm.DB, status models.OrderStatus, dept models.Department, items ...models.SalesOrderItem) *models.SalesOrder {
	t.Helper()

	orderSeq++
	order := models.SalesOrder{
		OrderNo:           fmt.Sprintf("OR-TEST-%04d", orderSeq),
		CustomerName:      "Apex Fabricators",
		Status:            status,
		CurrentDepartment: dept,
	}
	require.NoError(t, db.Create(&order).Error)

	for i := range items {
		items[i].SalesOrderID = order.ID
		if items[i].Status == "" {
			items[i].Status = models.ItemPending
		}
		require.NoError(t, db.Create(&items[i]).Error)
	}
	order.Items = items
	return &order
}

func seedStock(t *testing.T, db *gorm.DB, itemCode, whsCode, quantity string) {
	t.Helper()

	ledger := repositories.NewLedgerRepository(db)
	_, err := ledger.Post(repositories.PostingInput{
		ItemCode:    itemCode,
		WhsCode:     whsCode,
		Direction:   models.DirectionAdjustment,
		PostingType: models.PostingAdjustment,
		Quantity:    qty(t, quantity),
		Remarks:     "opening stock",
	})
	require.NoError(t, err)
}

func makePO(t *testing.T, db *gorm.DB, items ...models.PurchaseOrderItem) *models.PurchaseOrder {
	t.Helper()

	po := models.PurchaseOrder{
		PoNo:         "PO-TEST",
		SupplierName: "Trident Alloys",
		Status:       models.POOrdered,
	}
	require.NoError(t, db.Create(&po).Error)

	for i := range items {
		items[i].PurchaseOrderID = po.ID
		if items[i].Status == "" {
			items[i].Status = models.POItemOpen
		}
		if items[i].WhsCode == "" {
			items[i].WhsCode = "WH-MAIN"
		}
		require.NoError(t, db.Create(&items[i]).Error)
	}
	po.Items = items
	return &po
}
