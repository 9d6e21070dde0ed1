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

// BatchCacheEvictor invalida lotes cacheados que muestran datos de un material, proveedor o bodega.
type BatchCacheEvictor interface {
	ForgetMaterial(ctx context.Context, companyID, materialID string)
	ForgetSupplier(ctx context.Context, companyID, supplierID string)
	ForgetWarehouse(ctx context.Context, companyID, warehouseID string)
}

// MaterialUseCase catálogo de materiales. El código y el EAN-13 se generan si no vienen.
type MaterialUseCase struct {
	repo    repository.MaterialRepository
	batches repository.BatchRepository
	evictor BatchCacheEvictor
	now     func() time.Time
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository, batches repository.BatchRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, batches: batches, now: time.Now}
}

// WithBatchCache invalida los lotes cacheados del material cuando cambia su nombre.
func (uc *MaterialUseCase) WithBatchCache(e BatchCacheEvictor) *MaterialUseCase {
	uc.evictor = e
	return uc
}

// Create crea un material. Devuelve domain.ErrDuplicate si el código ya existe en la empresa.
func (uc *MaterialUseCase) Create(ctx context.Context, companyID string, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	name := strings.TrimSpace(in.Name)
	unit := strings.ToLower(strings.TrimSpace(in.Unit))
	if name == "" || unit == "" || in.MinStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.CheckQuantity("min_stock", in.MinStock); err != nil {
		return nil, err
	}
	code := inventory.MaterialCode(in.Code)
	if code == "" {
		code = inventory.MaterialCode(name)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: no se pudo derivar un código del nombre", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByCompanyAndCode(ctx, companyID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	barcode, err := uc.barcodeFor(ctx, in.Barcode)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	m := &entity.Material{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Code:        code,
		Name:        name,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Unit:        unit,
		Barcode:     barcode,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// GetByID obtiene un material de la empresa; (nil, nil) si no existe.
func (uc *MaterialUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.MaterialResponse, error) {
	m, err := uc.owned(ctx, companyID, id)
	if err != nil || m == nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// List lista materiales con búsqueda por código o nombre.
func (uc *MaterialUseCase) List(ctx context.Context, companyID, search string, page dto.PageRequest) (*dto.MaterialListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.ListByCompany(ctx, companyID, strings.TrimSpace(search), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update actualiza los datos descriptivos; el código no cambia.
func (uc *MaterialUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := uc.owned(ctx, companyID, id)
	if err != nil || m == nil {
		return nil, err
	}
	renamed := false
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, domain.ErrInvalidInput
		}
		renamed = n != m.Name
		m.Name = n
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Category != nil {
		m.Category = strings.TrimSpace(*in.Category)
	}
	if in.Unit != nil {
		u := strings.ToLower(strings.TrimSpace(*in.Unit))
		if u == "" {
			return nil, domain.ErrInvalidInput
		}
		m.Unit = u
	}
	if in.Barcode != nil && *in.Barcode != m.Barcode {
		if !inventory.ValidEAN13(*in.Barcode) {
			return nil, fmt.Errorf("%w: EAN-13 inválido", domain.ErrInvalidInput)
		}
		m.Barcode = *in.Barcode
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if err := inventory.CheckQuantity("min_stock", *in.MinStock); err != nil {
			return nil, err
		}
		m.MinStock = *in.MinStock
	}
	m.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	if renamed && uc.evictor != nil {
		uc.evictor.ForgetMaterial(ctx, companyID, m.ID)
	}
	return toMaterialResponse(m), nil
}

// Delete elimina un material sin lotes. Con lotes registrados devuelve domain.ErrConflict.
func (uc *MaterialUseCase) Delete(ctx context.Context, companyID, id string) error {
	m, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ErrNotFound
	}
	n, err := uc.batches.CountByMaterial(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: el material tiene %d lotes", domain.ErrConflict, n)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *MaterialUseCase) owned(ctx context.Context, companyID, id string) (*entity.Material, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.CompanyID != companyID {
		return nil, nil
	}
	return m, nil
}

func (uc *MaterialUseCase) barcodeFor(ctx context.Context, given string) (string, error) {
	given = strings.TrimSpace(given)
	if given != "" {
		if !inventory.ValidEAN13(given) {
			return "", fmt.Errorf("%w: EAN-13 inválido", domain.ErrInvalidInput)
		}
		return given, nil
	}
	seq, err := uc.repo.NextBarcodeSequence(ctx)
	if err != nil {
		return "", err
	}
	return inventory.NewMaterialBarcode(seq), nil
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Unit:        m.Unit,
		Barcode:     m.Barcode,
		MinStock:    m.MinStock,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
