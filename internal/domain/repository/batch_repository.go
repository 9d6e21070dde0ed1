package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// BatchFilter criterios de búsqueda de lotes. Los campos vacíos no filtran.
type BatchFilter struct {
	MaterialID     string
	SupplierID     string
	WarehouseID    string
	Status         entity.BatchStatus
	Search         string // número de lote, código de barras o nombre del material
	ExpiringBefore *time.Time
	Limit          int
	Offset         int
}

// MaterialStock stock agregado de un material sobre sus lotes disponibles.
type MaterialStock struct {
	MaterialID string
	Available  decimal.Decimal
	BatchCount int
}

// BatchRepository define el puerto de persistencia para Batch (DIP).
// GetByID devuelve (nil, nil) si no existe; GetForUpdate devuelve domain.ErrNotFound.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); solo tiene sentido dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	Update(ctx context.Context, batch *entity.Batch) error
	List(ctx context.Context, companyID string, filter BatchFilter) ([]*entity.Batch, int, error)
	Delete(ctx context.Context, id string) error
	CountByMaterial(ctx context.Context, materialID string) (int, error)
	StockByMaterial(ctx context.Context, companyID string, materialIDs []string) (map[string]MaterialStock, error)
}
