package pdf_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/export"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/pdf"
)

func TestBatchLabels_GeneraPDF(t *testing.T) {
	data, err := pdf.NewLabelGenerator().BatchLabels(context.Background(), "Jabones SAS", []export.BatchLabel{
		{MaterialCode: "GLICERINA", MaterialName: "Glicerina", BatchNumber: "L-01", Barcode: "GLICERINA|L-01", Remaining: "3", Unit: "kg", Expiry: "31/01/2027"},
		{MaterialCode: "SODA", MaterialName: "Soda cáustica", BatchNumber: "L-02", Barcode: "SODA|L-02", Remaining: "0", Unit: "kg"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestMaterialLabels_GeneraPDF(t *testing.T) {
	data, err := pdf.NewLabelGenerator().MaterialLabels(context.Background(), "", []export.MaterialLabel{
		{Code: "GLICERINA", Name: "Glicerina", Unit: "kg", Barcode: "2000000000015"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestLabels_SinEtiquetas(t *testing.T) {
	_, err := pdf.NewLabelGenerator().BatchLabels(context.Background(), "x", nil)
	assert.Error(t, err)
	_, err = pdf.NewLabelGenerator().MaterialLabels(context.Background(), "x", nil)
	assert.Error(t, err)
}
