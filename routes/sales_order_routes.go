package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/controllers"
	"github.com/codigix/Aluminium-erp-sub006/middleware"
)

func SetupSalesOrderRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewSalesOrderController(db)

	api := app.Group(config.MAIN_ROUTES+"/sales-orders", middleware.AuthMiddleware)
	api.Post("/", controller.CreateSalesOrder)
	api.Get("/", controller.GetAllSalesOrders)
	api.Get("/:id", controller.GetSalesOrderByID)
	api.Post("/:id/accept", controller.AcceptRequest)
	api.Post("/accept", controller.AcceptRequests)
	api.Post("/:id/reject", controller.RejectRequest)
	api.Post("/items/:itemId/reject", controller.RejectItem)
	api.Post("/:id/approve-design", controller.ApproveDesign)
	api.Patch("/:id/status", controller.UpdateStatus)
	api.Patch("/status", controller.UpdateStatuses)
}
