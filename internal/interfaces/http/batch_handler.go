package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/shopspring/decimal"
)

// BatchService casos de uso de lotes que expone la API. *batch.UseCase lo implementa.
type BatchService interface {
	Create(ctx context.Context, companyID, userID string, in dto.CreateBatchRequest) (*dto.BatchResponse, error)
	GetByID(ctx context.Context, companyID, id string) (*dto.BatchResponse, error)
	List(ctx context.Context, companyID string, in dto.BatchFilterRequest) (*dto.BatchListResponse, error)
	Update(ctx context.Context, companyID, id string, in dto.UpdateBatchRequest) (*dto.BatchResponse, error)
	Consume(ctx context.Context, companyID, id string, amount decimal.Decimal) (*dto.BatchResponse, error)
	ChangeStatus(ctx context.Context, companyID, id, status string) (*dto.BatchResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	StockSummary(ctx context.Context, companyID, materialID string) (*dto.MaterialStockResponse, error)
}

// BatchHandler maneja las peticiones HTTP para lotes (protegido).
type BatchHandler struct {
	uc BatchService
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc BatchService) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar lote
// @Description  remaining_quantity omitido = quantity. Sin barcode se genera a partir del material y el número de lote.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Datos del lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	if in.MaterialID == "" || in.BatchNumber == "" {
		return badRequest(c, CodeValidation, "material_id y batch_number son requeridos")
	}
	if err := errors.Join(
		checkRefID("material_id", in.MaterialID),
		checkRefID("supplier_id", in.SupplierID),
		checkRefID("warehouse_id", in.WarehouseID),
	); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "lote no encontrado")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar lotes
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        material_id      query  string  false  "Material"
// @Param        supplier_id      query  string  false  "Proveedor"
// @Param        warehouse_id     query  string  false  "Bodega"
// @Param        status           query  string  false  "pending|available|locked|expired|disposed"
// @Param        search           query  string  false  "Número de lote, código de barras o material"
// @Param        expiring_before  query  string  false  "Fecha límite de vencimiento (YYYY-MM-DD o RFC3339)"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.BatchListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	in := dto.BatchFilterRequest{
		MaterialID:  c.Query("material_id"),
		SupplierID:  c.Query("supplier_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		PageRequest: pageFrom(c),
	}
	if err := errors.Join(
		checkRefID("material_id", in.MaterialID),
		checkRefID("supplier_id", in.SupplierID),
		checkRefID("warehouse_id", in.WarehouseID),
	); err != nil {
		return respondError(c, err)
	}
	if raw := c.Query("expiring_before"); raw != "" {
		t, ok := parseDate(raw)
		if !ok {
			return badRequest(c, CodeValidation, "expiring_before debe ser YYYY-MM-DD o RFC3339")
		}
		in.ExpiringBefore = &t
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar lote
// @Description  Cambiar quantity sin remaining_quantity conserva lo consumido. remaining_quantity explícito prevalece. Al quedar en 0 el lote pasa a disposed.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.UpdateBatchRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [put]
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	if in.SupplierID != nil {
		if err := checkRefID("supplier_id", *in.SupplierID); err != nil {
			return respondError(c, err)
		}
	}
	if in.WarehouseID != nil {
		if err := checkRefID("warehouse_id", *in.WarehouseID); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Consume godoc
// @Summary      Consumir stock de un lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.ConsumeBatchRequest  true  "Cantidad a consumir"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/consume [post]
func (h *BatchHandler) Consume(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ConsumeBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	out, err := h.uc.Consume(c.UserContext(), GetCompanyID(c), id, in.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado del lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.ChangeBatchStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/status [patch]
func (h *BatchHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ChangeBatchStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	if in.Status == "" {
		return badRequest(c, CodeValidation, "status es requerido")
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), GetCompanyID(c), id, in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar lote
// @Tags         batches
// @Security     Bearer
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		// incluye todo el día indicado
		return t.Add(24*time.Hour - time.Nanosecond), true
	}
	return time.Time{}, false
}
