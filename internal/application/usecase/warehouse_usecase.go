package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// WarehouseUseCase bodegas de la empresa. El código se deriva del nombre si no viene.
type WarehouseUseCase struct {
	repo    repository.WarehouseRepository
	evictor BatchCacheEvictor
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// WithBatchCache invalida los lotes cacheados de la bodega al borrarla.
func (uc *WarehouseUseCase) WithBatchCache(e BatchCacheEvictor) *WarehouseUseCase {
	uc.evictor = e
	return uc
}

// Create registra una bodega. Código repetido en la empresa -> domain.ErrDuplicate (lo detecta la BD).
func (uc *WarehouseUseCase) Create(ctx context.Context, companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	code := inventory.MaterialCode(in.Code)
	if code == "" {
		code = inventory.MaterialCode(name)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: no se pudo derivar un código de bodega", domain.ErrInvalidInput)
	}
	now := time.Now()
	w := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Code:      code,
		Name:      name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return toWarehouseResponse(w), nil
}

// GetByID obtiene una bodega de la empresa.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	w, err := uc.owned(ctx, companyID, id)
	if err != nil || w == nil {
		return nil, err
	}
	return toWarehouseResponse(w), nil
}

// Update cambia nombre y dirección.
func (uc *WarehouseUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	w, err := uc.owned(ctx, companyID, id)
	if err != nil || w == nil {
		return nil, err
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, domain.ErrInvalidInput
		}
		w.Name = n
	}
	if in.Address != nil {
		w.Address = *in.Address
	}
	w.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return toWarehouseResponse(w), nil
}

func (uc *WarehouseUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete elimina la bodega; sus lotes quedan sin ubicación (ON DELETE SET NULL).
func (uc *WarehouseUseCase) Delete(ctx context.Context, companyID, id string) error {
	w, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return err
	}
	if w == nil {
		return domain.ErrNotFound
	}
	if uc.evictor != nil {
		uc.evictor.ForgetWarehouse(ctx, companyID, id)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *WarehouseUseCase) owned(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	w, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil || w.CompanyID != companyID {
		return nil, nil
	}
	return w, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
