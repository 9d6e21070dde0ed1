package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest entrada para crear un material. Code y Barcode se generan si vienen vacíos.
type CreateMaterialRequest struct {
	Code        string          `json:"code" validate:"omitempty,max=32"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit" validate:"required"`
	Barcode     string          `json:"barcode"`
	MinStock    decimal.Decimal `json:"min_stock"`
}

// UpdateMaterialRequest entrada para actualizar un material (el código no cambia).
type UpdateMaterialRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Unit        *string          `json:"unit"`
	Barcode     *string          `json:"barcode"`
	MinStock    *decimal.Decimal `json:"min_stock"`
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	Barcode     string          `json:"barcode"`
	MinStock    decimal.Decimal `json:"min_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MaterialListResponse lista paginada de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
