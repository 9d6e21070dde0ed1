package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/export"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// ExportHandler descargas XLSX e impresión de etiquetas PDF.
type ExportHandler struct {
	uc *export.UseCase
}

func NewExportHandler(uc *export.UseCase) *ExportHandler {
	return &ExportHandler{uc: uc}
}

// Batches godoc
// @Summary      Exportar lotes a Excel
// @Tags         exports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        material_id      query  string  false  "Material"
// @Param        supplier_id      query  string  false  "Proveedor"
// @Param        warehouse_id     query  string  false  "Bodega"
// @Param        status           query  string  false  "Estado"
// @Param        search           query  string  false  "Búsqueda libre"
// @Param        expiring_before  query  string  false  "YYYY-MM-DD o RFC3339"
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/exports/batches [get]
func (h *ExportHandler) Batches(c *fiber.Ctx) error {
	filter := repository.BatchFilter{
		MaterialID:  c.Query("material_id"),
		SupplierID:  c.Query("supplier_id"),
		WarehouseID: c.Query("warehouse_id"),
		Search:      c.Query("search"),
	}
	if err := errors.Join(
		checkRefID("material_id", filter.MaterialID),
		checkRefID("supplier_id", filter.SupplierID),
		checkRefID("warehouse_id", filter.WarehouseID),
	); err != nil {
		return respondError(c, err)
	}
	if raw := c.Query("status"); raw != "" {
		st, err := inventory.ParseBatchStatus(raw)
		if err != nil {
			return respondError(c, err)
		}
		filter.Status = st
	}
	if raw := c.Query("expiring_before"); raw != "" {
		t, ok := parseDate(raw)
		if !ok {
			return badRequest(c, CodeValidation, "expiring_before debe ser YYYY-MM-DD o RFC3339")
		}
		filter.ExpiringBefore = &t
	}
	f, err := h.uc.ExportBatches(c.UserContext(), GetCompanyID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f, true)
}

// Materials godoc
// @Summary      Exportar materiales con stock a Excel
// @Tags         exports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Router       /api/exports/materials [get]
func (h *ExportHandler) Materials(c *fiber.Ctx) error {
	f, err := h.uc.ExportMaterials(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f, true)
}

// BatchLabels godoc
// @Summary      Imprimir etiquetas de lotes
// @Description  PDF con una etiqueta por lote: Code-128 y QR con el código de barras del lote.
// @Tags         labels
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.PrintLabelsRequest  true  "IDs de lotes (máx. 200)"
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/labels/batches [post]
func (h *ExportHandler) BatchLabels(c *fiber.Ctx) error {
	var in dto.PrintLabelsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	if err := checkLabelIDs(in.IDs); err != nil {
		return respondError(c, err)
	}
	f, err := h.uc.PrintBatchLabels(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f, false)
}

// MaterialLabels godoc
// @Summary      Imprimir etiquetas de materiales (EAN-13)
// @Tags         labels
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.PrintLabelsRequest  true  "IDs de materiales (máx. 200)"
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/labels/materials [post]
func (h *ExportHandler) MaterialLabels(c *fiber.Ctx) error {
	var in dto.PrintLabelsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	if err := checkLabelIDs(in.IDs); err != nil {
		return respondError(c, err)
	}
	f, err := h.uc.PrintMaterialLabels(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f, false)
}

// sendFile escribe el documento; attachment fuerza descarga, inline lo abre en el navegador.
func sendFile(c *fiber.Ctx, f *export.File, attachment bool) error {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`%s; filename="%s"`, disposition, f.Name))
	return c.Send(f.Data)
}
