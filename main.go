package main

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/controllers/idgen"
	"github.com/codigix/Aluminium-erp-sub006/database"
	"github.com/codigix/Aluminium-erp-sub006/migration"
	"github.com/codigix/Aluminium-erp-sub006/routes"
)

func main() {
	config.LoadConfig()

	app := fiber.New()

	config.EnsureDatabaseExists(config.DBName)

	db, err := config.OpenDatabaseConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db)
	routes.SetupSalesOrderRoutes(app, db)
	routes.SetupPurchaseOrderRoutes(app, db)
	routes.SetupGRNRoutes(app, db)
	routes.SetupInventoryRoutes(app, db)
	routes.SetupFinalQCRoutes(app, db)
	routes.SetupShipmentRoutes(app, db)

	log.Fatal(app.Listen(":" + config.APP_PORT))
}
