package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/controllers"
	"github.com/codigix/Aluminium-erp-sub006/middleware"
)

func SetupShipmentRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewShipmentController(db)

	api := app.Group(config.MAIN_ROUTES+"/shipments", middleware.AuthMiddleware)
	api.Get("/orders", controller.GetAllShipments)
	api.Get("/orders/:id", controller.GetShipmentByID)
	api.Patch("/orders/:id/status", controller.UpdateStatus)
	api.Delete("/orders/:id", controller.DeleteShipment)
	api.Get("/orders/:id/challans", controller.GetChallans)
	api.Post("/vendor-returns", controller.CreateVendorReturn)
}
