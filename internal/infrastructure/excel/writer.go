package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/export"
)

var _ export.SpreadsheetWriter = (*Writer)(nil)

// Writer arma libros XLSX con excelize: encabezado en negrita y fila 1 fija.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

// Write crea una hoja por Sheet, en orden.
func (w *Writer) Write(ctx context.Context, sheets ...export.Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel: sin hojas")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}

	for i, s := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("Hoja%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("excel: nueva hoja %s: %w", name, err)
		}
		if err := writeSheet(f, name, s, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, s export.Sheet, headerStyle int) error {
	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("excel: encabezado: %w", err)
	}
	if len(s.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(s.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("excel: estilo encabezado: %w", err)
		}
		lastCol, _, _ := excelize.SplitCellName(last)
		if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
			return fmt.Errorf("excel: ancho: %w", err)
		}
		if err := f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("excel: fijar encabezado: %w", err)
		}
	}

	for i, r := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("excel: fila %d: %w", i+2, err)
		}
	}
	return nil
}
