package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/servitec-api/internal/application/auth"
	"github.com/tu-usuario/servitec-api/internal/application/orders"
	"github.com/tu-usuario/servitec-api/internal/application/stock"
	"github.com/tu-usuario/servitec-api/internal/application/usecase"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	ClientUC       *usecase.ClientUseCase
	EquipmentUC    *usecase.EquipmentUseCase
	PartUC         *usecase.PartUseCase
	CatalogUC      *usecase.CatalogUseCase
	NotificationUC *usecase.NotificationUseCase
	Ledger         *stock.LedgerUseCase
	OrderUC        *orders.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Usuarios (solo lectura de técnicos, para asignar órdenes)
	protected.Get("/users/technicians", authHandler.ListTechnicians)

	// Clientes
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), clientHandler.Update)
	clients.Delete("/:id", RequireRole(entity.RoleAdmin), clientHandler.Retire)

	// Equipos de clientes
	equipment := protected.Group("/equipment")
	equipmentHandler := NewEquipmentHandler(deps.EquipmentUC)
	equipment.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), equipmentHandler.Create)
	equipment.Get("/", equipmentHandler.ListByClient)
	equipment.Get("/:id", equipmentHandler.GetByID)

	// Repuestos y libro de movimientos
	parts := protected.Group("/parts")
	partHandler := NewPartHandler(deps.PartUC)
	stockHandler := NewStockHandler(deps.Ledger)
	parts.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), partHandler.Create)
	parts.Get("/", partHandler.List)
	parts.Get("/low-stock", partHandler.LowStock)
	parts.Get("/:id", partHandler.GetByID)
	parts.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), partHandler.Update)
	parts.Delete("/:id", RequireRole(entity.RoleAdmin), partHandler.Retire)
	parts.Get("/:id/movements", stockHandler.GetHistory)
	parts.Post("/:id/movements", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), stockHandler.ApplyMovement)
	parts.Get("/:id/reconcile", RequireRole(entity.RoleAdmin), stockHandler.Reconcile)

	// Catálogo de servicios
	services := protected.Group("/services")
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	services.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), catalogHandler.Create)
	services.Get("/", catalogHandler.List)
	services.Delete("/:id", RequireRole(entity.RoleAdmin), catalogHandler.Deactivate)

	// Órdenes de servicio (la autorización por transición la decide el gate).
	// El intake está abierto a todo el personal: los técnicos de campo también
	// crean órdenes en sitio.
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", RequireRole(
		entity.RoleAdmin, entity.RoleBackoffice,
		entity.RoleTechInternal, entity.RoleTechField,
	), orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/status", orderHandler.Transition)
	ordersGroup.Post("/:id/items", orderHandler.AddItem)
	ordersGroup.Delete("/:id/items/:itemId", orderHandler.RemoveItem)
	ordersGroup.Post("/:id/recompute-totals", RequireRole(entity.RoleAdmin, entity.RoleBackoffice), orderHandler.RecomputeTotals)

	// Notificaciones
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
}
