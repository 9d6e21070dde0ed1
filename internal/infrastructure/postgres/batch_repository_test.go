package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

func TestBatchWhere_SoloEmpresa(t *testing.T) {
	where, args := batchWhere("c1", repository.BatchFilter{})
	assert.Equal(t, " WHERE b.company_id = $1", where)
	assert.Equal(t, []any{"c1"}, args)
}

func TestBatchWhere_TodosLosFiltros(t *testing.T) {
	limit := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	where, args := batchWhere("c1", repository.BatchFilter{
		MaterialID:     "m1",
		SupplierID:     "s1",
		WarehouseID:    "w1",
		Status:         entity.BatchStatusAvailable,
		ExpiringBefore: &limit,
		Search:         "L-07",
	})

	assert.Equal(t, " WHERE b.company_id = $1 AND b.material_id = $2 AND b.supplier_id = $3"+
		" AND b.warehouse_id = $4 AND b.status = $5"+
		" AND b.expiry_date IS NOT NULL AND b.expiry_date <= $6"+
		" AND (b.batch_number ILIKE $7 OR b.barcode ILIKE $7 OR m.name ILIKE $7)", where)
	assert.Equal(t, []any{"c1", "m1", "s1", "w1", "available", limit, "%L-07%"}, args)
}
