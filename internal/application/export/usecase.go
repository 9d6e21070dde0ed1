package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

const (
	// MaxExportRows tope de filas por archivo exportado.
	MaxExportRows = 10000
	// MaxLabels tope de etiquetas por documento.
	MaxLabels = 200

	exportPage = 500
	dateLayout = "02/01/2006"
)

// File documento generado listo para descargar.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// UseCase exportación a Excel e impresión de etiquetas con código de barras.
type UseCase struct {
	batches   repository.BatchRepository
	materials repository.MaterialRepository
	companies repository.CompanyRepository
	sheets    SpreadsheetWriter
	labels    LabelPrinter
	now       func() time.Time
}

func NewUseCase(
	batches repository.BatchRepository,
	materials repository.MaterialRepository,
	companies repository.CompanyRepository,
	sheets SpreadsheetWriter,
	labels LabelPrinter,
) *UseCase {
	return &UseCase{batches: batches, materials: materials, companies: companies, sheets: sheets, labels: labels, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

var batchHeader = []string{
	"Lote", "Código de barras", "Código material", "Material", "Proveedor",
	"Cantidad", "Remanente", "Consumido", "Estado", "Fecha producción", "Fecha vencimiento", "Creado",
}

// ExportBatches genera lotes_YYYYMMDD_HHMMSS.xlsx con los lotes que cumplen el filtro.
func (uc *UseCase) ExportBatches(ctx context.Context, companyID string, filter repository.BatchFilter) (*File, error) {
	var rows [][]any
	filter.Offset = 0
	filter.Limit = exportPage
	for len(rows) < MaxExportRows {
		list, _, err := uc.batches.List(ctx, companyID, filter)
		if err != nil {
			return nil, err
		}
		for _, b := range list {
			rows = append(rows, batchRow(b))
		}
		if len(list) < filter.Limit {
			break
		}
		filter.Offset += len(list)
	}
	if len(rows) > MaxExportRows {
		rows = rows[:MaxExportRows]
	}
	data, err := uc.sheets.Write(ctx, Sheet{Name: "Lotes", Header: batchHeader, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("export: lotes: %w", err)
	}
	return &File{Name: uc.fileName("lotes", "xlsx"), ContentType: ContentTypeXLSX, Data: data}, nil
}

var materialHeader = []string{"Código", "Nombre", "Categoría", "Unidad", "Código de barras", "Stock mínimo", "Stock disponible"}

// ExportMaterials genera materiales_YYYYMMDD_HHMMSS.xlsx con el stock disponible de cada material.
func (uc *UseCase) ExportMaterials(ctx context.Context, companyID string) (*File, error) {
	var list []*entity.Material
	for offset := 0; len(list) < MaxExportRows; offset += exportPage {
		page, _, err := uc.materials.ListByCompany(ctx, companyID, "", exportPage, offset)
		if err != nil {
			return nil, err
		}
		list = append(list, page...)
		if len(page) < exportPage {
			break
		}
	}
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	stock, err := uc.batches.StockByMaterial(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(list))
	for _, m := range list {
		rows = append(rows, []any{
			m.Code, m.Name, m.Category, m.Unit, m.Barcode,
			m.MinStock.InexactFloat64(), stock[m.ID].Available.InexactFloat64(),
		})
	}
	data, err := uc.sheets.Write(ctx, Sheet{Name: "Materiales", Header: materialHeader, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("export: materiales: %w", err)
	}
	return &File{Name: uc.fileName("materiales", "xlsx"), ContentType: ContentTypeXLSX, Data: data}, nil
}

// PrintBatchLabels PDF con una etiqueta por lote (Code-128 + QR). Todos los IDs deben ser de la empresa.
func (uc *UseCase) PrintBatchLabels(ctx context.Context, companyID string, in dto.PrintLabelsRequest) (*File, error) {
	if err := checkIDs(in.IDs); err != nil {
		return nil, err
	}
	labels := make([]BatchLabel, 0, len(in.IDs))
	units := map[string]string{}
	for _, id := range in.IDs {
		b, err := uc.batches.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if b == nil || b.CompanyID != companyID {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
		}
		unit, ok := units[b.MaterialID]
		if !ok {
			m, err := uc.materials.GetByID(ctx, b.MaterialID)
			if err != nil {
				return nil, err
			}
			if m != nil {
				unit = m.Unit
				if b.MaterialName == "" {
					b.MaterialName, b.MaterialCode = m.Name, m.Code
				}
			}
			units[b.MaterialID] = unit
		}
		labels = append(labels, BatchLabel{
			MaterialCode: b.MaterialCode,
			MaterialName: b.MaterialName,
			BatchNumber:  b.BatchNumber,
			Barcode:      b.Barcode,
			Remaining:    b.RemainingQuantity.String(),
			Unit:         unit,
			Expiry:       formatDate(b.ExpiryDate),
		})
	}
	data, err := uc.labels.BatchLabels(ctx, uc.companyName(ctx, companyID), labels)
	if err != nil {
		return nil, fmt.Errorf("export: etiquetas de lotes: %w", err)
	}
	return &File{Name: uc.fileName("etiquetas_lotes", "pdf"), ContentType: ContentTypePDF, Data: data}, nil
}

// PrintMaterialLabels PDF con el EAN-13 de cada material.
func (uc *UseCase) PrintMaterialLabels(ctx context.Context, companyID string, in dto.PrintLabelsRequest) (*File, error) {
	if err := checkIDs(in.IDs); err != nil {
		return nil, err
	}
	labels := make([]MaterialLabel, 0, len(in.IDs))
	for _, id := range in.IDs {
		m, err := uc.materials.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if m == nil || m.CompanyID != companyID {
			return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
		}
		labels = append(labels, MaterialLabel{Code: m.Code, Name: m.Name, Unit: m.Unit, Barcode: m.Barcode})
	}
	data, err := uc.labels.MaterialLabels(ctx, uc.companyName(ctx, companyID), labels)
	if err != nil {
		return nil, fmt.Errorf("export: etiquetas de materiales: %w", err)
	}
	return &File{Name: uc.fileName("etiquetas_materiales", "pdf"), ContentType: ContentTypePDF, Data: data}, nil
}

func (uc *UseCase) fileName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, uc.now().Format("20060102_150405"), ext)
}

func (uc *UseCase) companyName(ctx context.Context, companyID string) string {
	c, err := uc.companies.GetByID(ctx, companyID)
	if err != nil || c == nil {
		return ""
	}
	return c.Name
}

func checkIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids vacío", domain.ErrInvalidInput)
	}
	if len(ids) > MaxLabels {
		return fmt.Errorf("%w: máximo %d etiquetas", domain.ErrInvalidInput, MaxLabels)
	}
	return nil
}

func batchRow(b *entity.Batch) []any {
	return []any{
		b.BatchNumber,
		b.Barcode,
		b.MaterialCode,
		b.MaterialName,
		b.SupplierName,
		b.Quantity.InexactFloat64(),
		b.RemainingQuantity.InexactFloat64(),
		b.Consumed().InexactFloat64(),
		string(b.Status),
		formatDate(b.ProductionDate),
		formatDate(b.ExpiryDate),
		b.CreatedAt.Format("02/01/2006 15:04"),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
