package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/controllers"
	"github.com/codigix/Aluminium-erp-sub006/middleware"
)

func SetupGRNRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewGRNController(db)

	api := app.Group(config.MAIN_ROUTES+"/grn", middleware.AuthMiddleware)
	api.Post("/create-with-items", controller.CreateGRNWithItems)
	api.Get("/", controller.GetAllGRNs)
	api.Get("/:id", controller.GetGRNByID)
	api.Patch("/items/:grnItemId", controller.UpdateGRNItem)
	api.Post("/items/:grnItemId/approve-excess", controller.ApproveExcess)
	api.Post("/items/:grnItemId/reject-excess", controller.RejectExcess)
	api.Get("/po-items/:poItemId/balance", controller.GetPOItemBalance)
}
