package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// BatchState cantidades de un lote tal como se leyeron por última vez.
// RemainingQuantity nil significa "desconocido": se asume igual a Quantity (nada consumido).
type BatchState struct {
	Quantity          decimal.Decimal
	RemainingQuantity *decimal.Decimal
}

// BatchPatch cambios parciales sobre un lote. Los campos nil no se tocan.
type BatchPatch struct {
	Quantity          *decimal.Decimal
	RemainingQuantity *decimal.Decimal
	Status            *entity.BatchStatus
	BatchNumber       *string
	SupplierID        *string // "" desasigna el proveedor
	WarehouseID       *string // "" desasigna la bodega
	ProductionDate    *time.Time
	ExpiryDate        *time.Time
	Notes             *string
	UpdatedAt         time.Time
}

// ReconcileCase indica qué regla aplicó ReconcileBatch.
type ReconcileCase int

const (
	// ReconcileNone: el patch no trae quantity ni remaining_quantity.
	ReconcileNone ReconcileCase = iota
	// ReconcileExplicit: remaining_quantity explícito, gana sobre cualquier delta.
	ReconcileExplicit
	// ReconcileQuantityDelta: solo cambia quantity, se preserva lo consumido.
	ReconcileQuantityDelta
)

func (c ReconcileCase) String() string {
	switch c {
	case ReconcileExplicit:
		return "explicit"
	case ReconcileQuantityDelta:
		return "quantity_delta"
	default:
		return "none"
	}
}

// ReconcileBatch calcula el patch a persistir para un lote.
//
//   - remaining_quantity explícito: se persiste max(0, R). Si queda en 0 y el patch no trae status,
//     el lote pasa a disposed.
//   - solo quantity: consumido = max(0, Qprev - Rprev); remaining = max(0, Qnuevo - consumido).
//   - ninguno: el patch pasa igual.
//
// Nunca falla: los datos previos pueden ser inconsistentes y se recortan a valores seguros.
// prev puede ser nil cuando no hay estado previo (nada consumido).
func ReconcileBatch(prev *BatchState, patch BatchPatch, now time.Time) (BatchPatch, ReconcileCase) {
	out := patch
	out.UpdatedAt = now

	if patch.RemainingQuantity != nil {
		remaining := clampZero(*patch.RemainingQuantity)
		out.RemainingQuantity = &remaining
		if remaining.IsZero() && patch.Status == nil {
			disposed := entity.BatchStatusDisposed
			out.Status = &disposed
		}
		return out, ReconcileExplicit
	}

	if patch.Quantity != nil {
		consumed := decimal.Zero
		if prev != nil {
			prevRemaining := prev.Quantity
			if prev.RemainingQuantity != nil {
				prevRemaining = *prev.RemainingQuantity
			}
			consumed = clampZero(prev.Quantity.Sub(prevRemaining))
		}
		remaining := clampZero(patch.Quantity.Sub(consumed))
		out.RemainingQuantity = &remaining
		return out, ReconcileQuantityDelta
	}

	return out, ReconcileNone
}

// ApplyBatchPatch copia al lote los campos presentes en el patch (ya reconciliado).
func ApplyBatchPatch(b *entity.Batch, p BatchPatch) {
	if p.Quantity != nil {
		b.Quantity = *p.Quantity
	}
	if p.RemainingQuantity != nil {
		b.RemainingQuantity = *p.RemainingQuantity
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.BatchNumber != nil {
		b.BatchNumber = *p.BatchNumber
	}
	if p.SupplierID != nil {
		b.SupplierID = optionalID(*p.SupplierID)
	}
	if p.WarehouseID != nil {
		b.WarehouseID = optionalID(*p.WarehouseID)
	}
	if p.ProductionDate != nil {
		b.ProductionDate = p.ProductionDate
	}
	if p.ExpiryDate != nil {
		b.ExpiryDate = p.ExpiryDate
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if !p.UpdatedAt.IsZero() {
		b.UpdatedAt = p.UpdatedAt
	}
}

// StateOf arma el estado previo a partir del lote persistido.
func StateOf(b *entity.Batch) *BatchState {
	if b == nil {
		return nil
	}
	remaining := b.RemainingQuantity
	return &BatchState{Quantity: b.Quantity, RemainingQuantity: &remaining}
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
