package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/controllers"
	"github.com/codigix/Aluminium-erp-sub006/middleware"
)

func SetupInventoryRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewInventoryController(db)

	api := app.Group(config.MAIN_ROUTES+"/inventory", middleware.AuthMiddleware)
	api.Get("/balances", controller.GetStockBalances)
	api.Get("/balances/:itemCode", controller.GetStockBalance)
	api.Get("/balances/:itemCode/verify", controller.VerifyBalance)
	api.Get("/ledger", controller.GetLedgerEntries)
	api.Get("/ledger/:refType/:refId", controller.GetEntriesByReference)
	api.Post("/adjustments", controller.CreateAdjustment)
	api.Get("/export/excel", controller.ExportExcel)
}
