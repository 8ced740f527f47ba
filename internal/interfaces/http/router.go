package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/purchases"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC      *usecase.WarehouseUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Ledger           *inventory.LedgerUseCase
	Reconcile        *inventory.ReconcileUseCase
	Fulfillment      *orders.FulfillmentUseCase
	Receiving        *purchases.ReceivingUseCase
	// Verifier valida los tokens del servicio de identidad (secret + issuer de config).
	Verifier *jwt.Verifier
	Logger   zerolog.Logger
	// Metrics es opcional: con nil no se registra /metrics ni el middleware HTTP.
	Metrics        fiber.Handler
	MetricsHandler http.Handler
	// ReconcileQueue es opcional: habilita la reconciliación en segundo plano.
	ReconcileQueue ReconcileQueue
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics)
	}
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	errs := errorMapper{logger: deps.Logger}
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Verifier))
	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	stockRoles := RequireRole(RoleAdmin, RoleBodeguero)
	salesRoles := RequireRole(RoleAdmin, RoleVendedor)
	adminOnly := RequireRole(RoleAdmin)

	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Ledger, deps.Reconcile, errs)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, errs)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)
	warehouses.Get("/:id/stock", anyRole, inventoryHandler.StockByWarehouse)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)
	warehouses.Post("/:id/primary", adminOnly, warehouseHandler.SetPrimary)
	warehouses.Post("/:id/deactivate", adminOnly, warehouseHandler.Deactivate)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)

	protected.Get("/variants/:id/stock", anyRole, inventoryHandler.StockByVariant)

	// Inventory: ajustes, traslados y Kardex
	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", stockRoles, inventoryHandler.Adjust)
	invGroup.Post("/transfers", stockRoles, inventoryHandler.Transfer)
	invGroup.Get("/movements", anyRole, inventoryHandler.ListMovements)
	invGroup.Patch("/movements/:id", stockRoles, inventoryHandler.UpdateNote)
	invGroup.Delete("/movements/:id", adminOnly, inventoryHandler.HideMovement)
	invGroup.Get("/stock", anyRole, inventoryHandler.GetStock)
	invGroup.Get("/kardex", anyRole, inventoryHandler.Kardex)
	invGroup.Get("/kardex/pdf", anyRole, inventoryHandler.KardexPDF)
	invGroup.Post("/reconcile", adminOnly, inventoryHandler.Reconcile)
	if deps.ReconcileQueue != nil {
		invGroup.Post("/reconcile/async", adminOnly, NewReconcileQueueHandler(deps.ReconcileQueue, errs).Enqueue)
	}

	// Orders
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Fulfillment, errs)
	ordersGroup.Get("/", anyRole, orderHandler.List)
	ordersGroup.Get("/:id", anyRole, orderHandler.GetByID)
	ordersGroup.Post("/", salesRoles, orderHandler.Create)
	ordersGroup.Put("/:id/lines", salesRoles, orderHandler.UpdateLines)
	ordersGroup.Patch("/:id/status", salesRoles, orderHandler.ChangeStatus)

	// Purchases
	purchasesGroup := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Receiving, errs)
	purchasesGroup.Get("/", anyRole, purchaseHandler.List)
	purchasesGroup.Get("/:id", anyRole, purchaseHandler.GetByID)
	purchasesGroup.Post("/", stockRoles, purchaseHandler.Create)
	purchasesGroup.Put("/:id/lines", stockRoles, purchaseHandler.UpdateLines)
	purchasesGroup.Patch("/:id/status", stockRoles, purchaseHandler.ChangeStatus)
}
