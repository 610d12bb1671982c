package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/controllers"
	"github.com/codigix/Aluminium-erp-sub006/middleware"
)

func SetupPurchaseOrderRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewPurchaseOrderController(db)

	api := app.Group(config.MAIN_ROUTES+"/purchase-orders", middleware.AuthMiddleware)
	api.Post("/", controller.CreatePurchaseOrder)
	api.Get("/:id", controller.GetPurchaseOrderByID)
	api.Get("/:id/balance", controller.GetPurchaseOrderBalance)
	api.Post("/:id/refresh-status", controller.RefreshPurchaseOrderStatus)
}
