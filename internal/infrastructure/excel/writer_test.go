package excel_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/export"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/excel"
)

func TestWriter_RoundTrip(t *testing.T) {
	data, err := excel.NewWriter().Write(context.Background(),
		export.Sheet{
			Name:   "Lotes",
			Header: []string{"Lote", "Cantidad", "Remanente"},
			Rows: [][]any{
				{"L-001", 120.0, 80.0},
				{"L-002", 50.5, 0.0},
			},
		},
		export.Sheet{Name: "Resumen", Header: []string{"Total"}, Rows: [][]any{{170.5}}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Lotes", "Resumen"}, f.GetSheetList())

	rows, err := f.GetRows("Lotes")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Lote", "Cantidad", "Remanente"}, rows[0])
	assert.Equal(t, []string{"L-001", "120", "80"}, rows[1])
	assert.Equal(t, []string{"L-002", "50.5", "0"}, rows[2])

	v, err := f.GetCellValue("Resumen", "A2")
	require.NoError(t, err)
	assert.Equal(t, "170.5", v)
}

func TestWriter_SinHojas(t *testing.T) {
	_, err := excel.NewWriter().Write(context.Background())
	assert.Error(t, err)
}
