package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-lotes/internal/application/auth"
	"github.com/jhoicas/inventario-lotes/internal/application/export"
	"github.com/jhoicas/inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/inventario-lotes/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CompanyUC   *usecase.CompanyUseCase
	UserUC      *usecase.UserUseCase
	WarehouseUC *usecase.WarehouseUseCase
	SupplierUC  *usecase.SupplierUseCase
	MaterialUC  *usecase.MaterialUseCase
	BatchUC     BatchService
	ExportUC    *export.UseCase
	Tokens      TokenParser
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público: alta inicial de la empresa antes del primer usuario)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Tokens))
	can := RequirePermission

	materials := protected.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.BatchUC)
	materials.Get("/", can(access.MaterialsRead), materialHandler.List)
	materials.Get("/:id", can(access.MaterialsRead), materialHandler.GetByID)
	materials.Get("/:id/stock", can(access.MaterialsRead), materialHandler.Stock)
	materials.Post("/", can(access.MaterialsWrite), materialHandler.Create)
	materials.Put("/:id", can(access.MaterialsWrite), materialHandler.Update)
	materials.Delete("/:id", can(access.MaterialsWrite), materialHandler.Delete)

	RegisterBatchRoutes(protected, NewBatchHandler(deps.BatchUC))

	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", can(access.SuppliersRead), supplierHandler.List)
	suppliers.Get("/:id", can(access.SuppliersRead), supplierHandler.GetByID)
	suppliers.Post("/", can(access.SuppliersWrite), supplierHandler.Create)
	suppliers.Put("/:id", can(access.SuppliersWrite), supplierHandler.Update)
	suppliers.Delete("/:id", can(access.SuppliersWrite), supplierHandler.Delete)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", can(access.WarehousesRead), warehouseHandler.List)
	warehouses.Get("/:id", can(access.WarehousesRead), warehouseHandler.GetByID)
	warehouses.Post("/", can(access.WarehousesWrite), warehouseHandler.Create)
	warehouses.Put("/:id", can(access.WarehousesWrite), warehouseHandler.Update)
	warehouses.Delete("/:id", can(access.WarehousesWrite), warehouseHandler.Delete)

	users := protected.Group("/users", can(access.UsersManage))
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)

	exportHandler := NewExportHandler(deps.ExportUC)
	exports := protected.Group("/exports", can(access.ExportsRead))
	exports.Get("/batches", exportHandler.Batches)
	exports.Get("/materials", exportHandler.Materials)
	labels := protected.Group("/labels", can(access.LabelsPrint))
	labels.Post("/batches", exportHandler.BatchLabels)
	labels.Post("/materials", exportHandler.MaterialLabels)
}

// RegisterBatchRoutes monta /batches sobre un grupo ya autenticado.
func RegisterBatchRoutes(protected fiber.Router, h *BatchHandler) {
	can := RequirePermission
	batches := protected.Group("/batches")
	batches.Get("/", can(access.BatchesRead), h.List)
	batches.Get("/:id", can(access.BatchesRead), h.GetByID)
	batches.Post("/", can(access.BatchesWrite), h.Create)
	batches.Put("/:id", can(access.BatchesWrite), h.Update)
	batches.Delete("/:id", can(access.BatchesWrite), h.Delete)
	batches.Post("/:id/consume", can(access.BatchesWrite), h.Consume)
	batches.Patch("/:id/status", can(access.BatchesWrite), h.ChangeStatus)
}
