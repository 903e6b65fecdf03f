package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cantina-api/internal/application/catalog"
	"github.com/jhoicas/Cantina-api/internal/application/inventory"
	"github.com/jhoicas/Cantina-api/internal/application/ports"
	"github.com/jhoicas/Cantina-api/internal/application/reporting"
	"github.com/jhoicas/Cantina-api/pkg/jwt"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog     *catalog.UseCase
	Engine      *inventory.Engine
	Reporting   *reporting.UseCase
	Idempotency ports.IdempotencyStore // nil = sin soporte de Idempotency-Key
	Logger      *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras además rol.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	adminOnly := RequireRole(jwt.RoleAdmin)

	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Catalog)
	products.Get("/", productHandler.List)
	products.Get("/:code", productHandler.GetByCode)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:code", adminOnly, productHandler.Update)
	products.Delete("/:code", adminOnly, productHandler.Delete)

	// Stock
	stock := protected.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.Reporting)
	stock.Get("/", inventoryHandler.List)
	stock.Get("/low", inventoryHandler.LowStock)
	stock.Get("/:code", inventoryHandler.GetByCode)
	stock.Post("/entries", adminOnly, inventoryHandler.Entry)
	stock.Post("/exits", adminOnly, inventoryHandler.Exit)

	// Sales
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Engine, deps.Reporting)
	sales.Get("/", saleHandler.List)
	sales.Post("/",
		RequireRole(jwt.RoleAdmin, jwt.RoleCaixa),
		Idempotency(deps.Idempotency, log),
		saleHandler.Register,
	)

	// Reports
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.Reporting)
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/sales.pdf", adminOnly, reportHandler.SalesPDF)
}
