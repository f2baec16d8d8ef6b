package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/movements"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine     *stock.Engine
	Movements  *movements.UseCase
	LevelRepo  repository.StockLevelRepository
	AuditRepo  repository.StockAuditRepository
	MovRepo    repository.MovementRepository
}

// Router registra las rutas de la API. La autenticación corre a cargo de la
// aplicación contenedora; este servicio solo expone el motor de stock.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	stockHandler := NewStockHandler(deps.Engine, deps.LevelRepo, deps.AuditRepo)
	stockGroup := api.Group("/stock")
	stockGroup.Post("/sync", stockHandler.Sync)
	stockGroup.Post("/corrections", stockHandler.Correct)
	stockGroup.Get("/audit/:variantID", stockHandler.Audit)
	stockGroup.Get("/:articleID/levels", stockHandler.Levels)
	stockGroup.Get("/:articleID", stockHandler.Compute)

	movementHandler := NewMovementHandler(deps.Movements, deps.MovRepo)
	movGroup := api.Group("/movements")
	movGroup.Post("/", movementHandler.Register)
	movGroup.Get("/", movementHandler.List)
	movGroup.Post("/:id/validate", movementHandler.Validate)
	movGroup.Post("/:id/void", movementHandler.Void)
}
