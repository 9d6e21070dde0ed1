package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByCompanyAndCode(ctx context.Context, companyID, code string) (*entity.Material, error)
	Update(ctx context.Context, material *entity.Material) error
	ListByCompany(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Material, int, error)
	Delete(ctx context.Context, id string) error
	// NextBarcodeSequence consecutivo para generar EAN-13 internos.
	NextBarcodeSequence(ctx context.Context) (int64, error)
}
