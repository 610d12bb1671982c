package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/controllers"
	"github.com/codigix/Aluminium-erp-sub006/middleware"
)

func SetupFinalQCRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewFinalQCController(db)

	api := app.Group(config.MAIN_ROUTES+"/final-qc", middleware.AuthMiddleware)
	api.Post("/orders/:id/complete", controller.Complete)
	api.Post("/orders/:id/create-shipment", controller.CreateShipment)
}
