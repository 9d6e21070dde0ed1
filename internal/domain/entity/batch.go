package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus estado de un lote dentro del inventario.
type BatchStatus string

// Estados válidos de un lote.
const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusAvailable BatchStatus = "available"
	BatchStatusLocked    BatchStatus = "locked"
	BatchStatusExpired   BatchStatus = "expired"
	BatchStatusDisposed  BatchStatus = "disposed"
)

// Batch representa una recepción (lote) de un material en el inventario.
// Quantity es lo recibido originalmente; RemainingQuantity lo que queda disponible.
type Batch struct {
	ID                string
	CompanyID         string
	MaterialID        string // inmutable después de crear
	SupplierID        *string
	WarehouseID       *string
	BatchNumber       string
	Barcode           string
	Quantity          decimal.Decimal
	RemainingQuantity decimal.Decimal
	Status            BatchStatus
	ProductionDate    *time.Time
	ExpiryDate        *time.Time
	Notes             string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Solo lectura (JOIN en listados).
	MaterialCode string
	MaterialName string
	SupplierName string
}

// Consumed devuelve quantity - remaining_quantity (puede ser negativo si los datos ya eran inconsistentes).
func (b *Batch) Consumed() decimal.Decimal {
	return b.Quantity.Sub(b.RemainingQuantity)
}
