package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

const companyID = "11111111-2222-3333-4444-555555555555"

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewEncoder(), []byte(s))
	require.NoError(t, err)
	return out
}

func TestParseMaterials_Latin1(t *testing.T) {
	src := latin1(t, "code;name;category;unit;min_stock\n"+
		";Ácido cítrico;Químicos;KG;12,5\n"+
		"ENV-01;Envase PET 500ml;Empaque;UND;\n"+
		"ENV-01;Duplicado;Empaque;UND;1\n"+
		"X;;Sin nombre;UND;1\n"+
		"Y;Negativo;Otro;UND;-3\n")

	r := transform.NewReader(bytes.NewReader(src), charmap.ISO8859_1.NewDecoder())
	got, skipped, err := parseMaterials(r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, skipped)

	assert.Equal(t, "ACIDO-CITRICO", got[0].Code)
	assert.Equal(t, "Ácido cítrico", got[0].Name)
	assert.Equal(t, "kg", got[0].Unit)
	assert.Equal(t, "12.5", got[0].MinStock.String())

	assert.Equal(t, "ENV-01", got[1].Code)
	assert.True(t, got[1].MinStock.IsZero())
}

func TestParseMaterials_Vacio(t *testing.T) {
	got, skipped, err := parseMaterials(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, skipped)
}

func TestWriteSQL(t *testing.T) {
	given := inventory.NewMaterialBarcode(42)
	materials := []seedMaterial{
		{Code: "SAL-D'ORO", Name: "Sal d'oro", Unit: "kg"},
		{Code: "ENV-01", Name: "Envase", Unit: "und", Barcode: given},
	}
	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, companyID, 900000, materials))
	sql := buf.String()

	assert.Contains(t, sql, "'SAL-D''ORO'")
	assert.Contains(t, sql, "'Sal d''oro'")
	assert.Contains(t, sql, inventory.NewMaterialBarcode(900000))
	assert.Contains(t, sql, given)
	assert.Contains(t, sql, "GREATEST((SELECT last_value FROM material_barcode_seq), 900001)")
	assert.Equal(t, 2, strings.Count(sql, "ON CONFLICT (company_id, code)"))
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))

	// ids estables entre ejecuciones
	var again bytes.Buffer
	require.NoError(t, writeSQL(&again, companyID, 900000, materials))
	assert.Equal(t, sql, again.String())
}
