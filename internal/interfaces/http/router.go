package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/purchase"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine      *stock.Engine
	Balances    repository.StockBalanceRepository
	Movements   repository.StockMovementRepository
	PurchaseUC  *purchase.UseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	SupplierUC  *usecase.SupplierUseCase
	CategoryUC  *usecase.CategoryUseCase
	DashboardUC *usecase.DashboardUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas las rutas de negocio requieren
// Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solo admin y bodeguero mutan stock y órdenes; lector consulta.
	operator := RequireRole("admin", "bodeguero")

	// Motor de stock (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Engine, deps.Balances, deps.Movements)
	stockGroup.Post("/receive", operator, stockHandler.Receive)
	stockGroup.Post("/issue", operator, stockHandler.Issue)
	stockGroup.Post("/transfer", operator, stockHandler.Transfer)
	stockGroup.Post("/reconcile", stockHandler.Reconcile)
	stockGroup.Get("/balances", stockHandler.GetBalance)
	stockGroup.Get("/movements", stockHandler.ListMovements)

	// Órdenes de compra (protegido)
	orders := protected.Group("/purchase-orders")
	orderHandler := NewPurchaseOrderHandler(deps.PurchaseUC)
	orders.Post("/", operator, orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", operator, orderHandler.Update)
	orders.Post("/:id/complete", operator, orderHandler.Complete)
	orders.Post("/:id/cancel", operator, orderHandler.Cancel)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)
	products.Get("/:id/balances", stockHandler.ListProductBalances)

	// Warehouses (protegido)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Deactivate)
	warehouses.Get("/:id/balances", stockHandler.ListWarehouseBalances)

	// Suppliers (protegido)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Categories (protegido)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	// Dashboard (protegido)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", dashboardHandler.Summary)
}
