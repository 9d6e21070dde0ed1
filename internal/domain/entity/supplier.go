package entity

import "time"

// Supplier proveedor que entrega lotes de materiales.
type Supplier struct {
	ID          string
	CompanyID   string
	Name        string
	TaxID       string
	ContactName string
	Email       string
	Phone       string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
