package entity

import "time"

// Company empresa (tenant). Todos los catálogos y lotes cuelgan de una Company.
type Company struct {
	ID        string
	Name      string
	TaxID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
