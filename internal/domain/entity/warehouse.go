package entity

import "time"

// Warehouse bodega donde se ubican físicamente los lotes. Code es único por empresa
// y se imprime en las etiquetas de ubicación.
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
