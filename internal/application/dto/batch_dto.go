package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest entrada para registrar la recepción de un lote.
// Si RemainingQuantity es nil se inicializa con Quantity.
type CreateBatchRequest struct {
	MaterialID        string           `json:"material_id" validate:"required,uuid"`
	BatchNumber       string           `json:"batch_number" validate:"required,max=64"`
	Barcode           string           `json:"barcode"`
	SupplierID        string           `json:"supplier_id"`
	WarehouseID       string           `json:"warehouse_id"`
	Quantity          decimal.Decimal  `json:"quantity"`
	RemainingQuantity *decimal.Decimal `json:"remaining_quantity"`
	Status            string           `json:"status" validate:"omitempty,oneof=pending available locked expired disposed"`
	ProductionDate    *time.Time       `json:"production_date"`
	ExpiryDate        *time.Time       `json:"expiry_date"`
	Notes             string           `json:"notes"`
}

// UpdateBatchRequest actualización parcial. quantity sin remaining_quantity preserva lo consumido.
type UpdateBatchRequest struct {
	Quantity          *decimal.Decimal `json:"quantity"`
	RemainingQuantity *decimal.Decimal `json:"remaining_quantity"`
	Status            *string          `json:"status"`
	BatchNumber       *string          `json:"batch_number"`
	SupplierID        *string          `json:"supplier_id"`
	WarehouseID       *string          `json:"warehouse_id"`
	ProductionDate    *time.Time       `json:"production_date"`
	ExpiryDate        *time.Time       `json:"expiry_date"`
	Notes             *string          `json:"notes"`
}

// ConsumeBatchRequest salida de stock de un lote.
type ConsumeBatchRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ChangeBatchStatusRequest cambio manual de estado.
type ChangeBatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending available locked expired disposed"`
}

// BatchFilterRequest filtros de listado (query string).
type BatchFilterRequest struct {
	MaterialID     string     `query:"material_id"`
	SupplierID     string     `query:"supplier_id"`
	WarehouseID    string     `query:"warehouse_id"`
	Status         string     `query:"status"`
	Search         string     `query:"search"`
	ExpiringBefore *time.Time `query:"-"`
	PageRequest
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	MaterialID        string          `json:"material_id"`
	MaterialCode      string          `json:"material_code,omitempty"`
	MaterialName      string          `json:"material_name,omitempty"`
	SupplierID        *string         `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name,omitempty"`
	WarehouseID       *string         `json:"warehouse_id"`
	BatchNumber       string          `json:"batch_number"`
	Barcode           string          `json:"barcode"`
	Quantity          decimal.Decimal `json:"quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Consumed          decimal.Decimal `json:"consumed"`
	Status            string          `json:"status"`
	ProductionDate    *time.Time      `json:"production_date"`
	ExpiryDate        *time.Time      `json:"expiry_date"`
	Notes             string          `json:"notes"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BatchListResponse lista paginada de lotes.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// MaterialStockResponse stock disponible de un material sumando sus lotes available.
type MaterialStockResponse struct {
	MaterialID    string          `json:"material_id"`
	Available     decimal.Decimal `json:"available"`
	BatchCount    int             `json:"batch_count"`
	MinStock      decimal.Decimal `json:"min_stock"`
	BelowMinStock bool            `json:"below_min_stock"`
}
