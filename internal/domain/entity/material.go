package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un insumo o materia prima catalogado por empresa.
type Material struct {
	ID          string
	CompanyID   string
	Code        string // único por empresa
	Name        string
	Description string
	Category    string
	Unit        string          // kg, g, l, ml, un
	Barcode     string          // EAN-13, único por empresa
	MinStock    decimal.Decimal // umbral de alerta de stock
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
