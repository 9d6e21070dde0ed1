package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// UseCase casos de uso de lotes: recepción, corrección de cantidades (con reconciliación),
// consumo, cambio de estado, borrado y consultas.
type UseCase struct {
	tx         TxRunner
	batches    repository.BatchRepository
	materials  repository.MaterialRepository
	suppliers  repository.SupplierRepository
	warehouses repository.WarehouseRepository
	log        *logger.Logger

	cache   SnapshotCache
	events  EventPublisher
	metrics Recorder
	now     func() time.Time
}

// NewUseCase construye el caso de uso. Cache, eventos y métricas son opcionales (With*).
func NewUseCase(
	tx TxRunner,
	batches repository.BatchRepository,
	materials repository.MaterialRepository,
	suppliers repository.SupplierRepository,
	warehouses repository.WarehouseRepository,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		tx:         tx,
		batches:    batches,
		materials:  materials,
		suppliers:  suppliers,
		warehouses: warehouses,
		log:        log,
		now:        time.Now,
	}
}

// WithCache activa la caché de lecturas de lotes.
func (uc *UseCase) WithCache(c SnapshotCache) *UseCase {
	uc.cache = c
	return uc
}

// WithEvents activa la publicación de eventos de cambio.
func (uc *UseCase) WithEvents(p EventPublisher) *UseCase {
	uc.events = p
	return uc
}

// WithMetrics activa el registro de métricas.
func (uc *UseCase) WithMetrics(r Recorder) *UseCase {
	uc.metrics = r
	return uc
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create registra la recepción de un lote. remaining_quantity arranca en quantity salvo que venga explícito;
// un remaining explícito en 0 sin estado deja el lote como disposed.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	batchNumber := strings.TrimSpace(in.BatchNumber)
	if in.MaterialID == "" || batchNumber == "" || in.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.CheckQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	if in.RemainingQuantity != nil {
		if err := inventory.CheckQuantity("remaining_quantity", *in.RemainingQuantity); err != nil {
			return nil, err
		}
		if in.RemainingQuantity.GreaterThan(in.Quantity) {
			return nil, fmt.Errorf("%w: remaining_quantity no puede superar quantity", domain.ErrInvalidInput)
		}
	}
	material, err := uc.materialOf(ctx, companyID, in.MaterialID)
	if err != nil {
		return nil, err
	}
	supplierName, err := uc.checkRefs(ctx, companyID, in.SupplierID, in.WarehouseID)
	if err != nil {
		return nil, err
	}

	patch := inventory.BatchPatch{Quantity: &in.Quantity, RemainingQuantity: in.RemainingQuantity}
	if in.Status != "" {
		st, err := inventory.ParseBatchStatus(in.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &st
	}
	now := uc.now()
	patch, _ = inventory.ReconcileBatch(nil, patch, now)
	status := entity.BatchStatusAvailable
	if patch.Status != nil {
		status = *patch.Status
	}

	barcode := strings.TrimSpace(in.Barcode)
	if barcode == "" {
		barcode = inventory.BatchBarcode(material.Code, batchNumber)
	}
	b := &entity.Batch{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		MaterialID:        material.ID,
		SupplierID:        nonEmpty(in.SupplierID),
		WarehouseID:       nonEmpty(in.WarehouseID),
		BatchNumber:       batchNumber,
		Barcode:           barcode,
		Quantity:          in.Quantity,
		RemainingQuantity: *patch.RemainingQuantity,
		Status:            status,
		ProductionDate:    in.ProductionDate,
		ExpiryDate:        in.ExpiryDate,
		Notes:             in.Notes,
		CreatedBy:         userID,
		CreatedAt:         now,
		UpdatedAt:         now,
		MaterialCode:      material.Code,
		MaterialName:      material.Name,
		SupplierName:      supplierName,
	}
	if err := uc.batches.Create(ctx, b); err != nil {
		return nil, err
	}

	uc.publish(entity.BatchEventCreated, b)
	uc.log.Info().Str("batch_id", b.ID).Str("material_id", b.MaterialID).
		Str("quantity", b.Quantity.String()).Msg("lote registrado")
	return toBatchResponse(b), nil
}

// GetByID obtiene un lote de la empresa. Devuelve (nil, nil) si no existe o es de otra empresa.
func (uc *UseCase) GetByID(ctx context.Context, companyID, id string) (*dto.BatchResponse, error) {
	b, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil || b.CompanyID != companyID {
		return nil, nil
	}
	return toBatchResponse(b), nil
}

// List busca lotes de la empresa con filtros y paginación.
func (uc *UseCase) List(ctx context.Context, companyID string, in dto.BatchFilterRequest) (*dto.BatchListResponse, error) {
	in.DefaultPage()
	filter := repository.BatchFilter{
		MaterialID:     in.MaterialID,
		SupplierID:     in.SupplierID,
		WarehouseID:    in.WarehouseID,
		Search:         strings.TrimSpace(in.Search),
		ExpiringBefore: in.ExpiringBefore,
		Limit:          in.Limit,
		Offset:         in.Offset,
	}
	if in.Status != "" {
		st, err := inventory.ParseBatchStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	list, total, err := uc.batches.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBatchResponse(b))
	}
	return &dto.BatchListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Update aplica un cambio parcial. Si cambia quantity sin remaining_quantity, lo ya consumido se
// conserva (ver inventory.ReconcileBatch). La fila se bloquea durante la transacción.
func (uc *UseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	patch, err := uc.patchFrom(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	var rc inventory.ReconcileCase
	b, err := uc.mutate(ctx, companyID, id, func(b *entity.Batch) (inventory.BatchPatch, error) {
		merged, c := inventory.ReconcileBatch(inventory.StateOf(b), patch, uc.now())
		rc = c
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	uc.observe(rc)
	uc.publish(entity.BatchEventUpdated, b)
	uc.log.Debug().Str("batch_id", b.ID).Str("case", rc.String()).
		Str("quantity", b.Quantity.String()).Str("remaining", b.RemainingQuantity.String()).
		Msg("lote reconciliado")
	return toBatchResponse(b), nil
}

// Consume descuenta amount del remanente. Solo lotes available; al llegar a 0 el lote queda disposed.
func (uc *UseCase) Consume(ctx context.Context, companyID, id string, amount decimal.Decimal) (*dto.BatchResponse, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if err := inventory.CheckQuantity("amount", amount); err != nil {
		return nil, err
	}
	b, err := uc.mutate(ctx, companyID, id, func(b *entity.Batch) (inventory.BatchPatch, error) {
		if !inventory.IsConsumable(b.Status) {
			return inventory.BatchPatch{}, fmt.Errorf("%w: el lote está en estado %s", domain.ErrConflict, b.Status)
		}
		if b.RemainingQuantity.LessThan(amount) {
			return inventory.BatchPatch{}, domain.ErrInsufficientStock
		}
		remaining := b.RemainingQuantity.Sub(amount)
		merged, _ := inventory.ReconcileBatch(inventory.StateOf(b), inventory.BatchPatch{RemainingQuantity: &remaining}, uc.now())
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	uc.observe(inventory.ReconcileExplicit)
	if uc.metrics != nil {
		uc.metrics.ObserveConsumption(amount.InexactFloat64())
	}
	uc.publish(entity.BatchEventConsumed, b)
	return toBatchResponse(b), nil
}

// ChangeStatus asigna un estado de forma manual (bloqueo, vencimiento, etc.).
func (uc *UseCase) ChangeStatus(ctx context.Context, companyID, id, status string) (*dto.BatchResponse, error) {
	st, err := inventory.ParseBatchStatus(status)
	if err != nil {
		return nil, err
	}
	b, err := uc.mutate(ctx, companyID, id, func(b *entity.Batch) (inventory.BatchPatch, error) {
		merged, _ := inventory.ReconcileBatch(inventory.StateOf(b), inventory.BatchPatch{Status: &st}, uc.now())
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(entity.BatchEventUpdated, b)
	return toBatchResponse(b), nil
}

// Delete elimina un lote de la empresa (borrado físico).
func (uc *UseCase) Delete(ctx context.Context, companyID, id string) error {
	b, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil || b.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if err := uc.batches.Delete(ctx, id); err != nil {
		return err
	}
	uc.forget(ctx, id)
	uc.publish(entity.BatchEventDeleted, b)
	return nil
}

// ForgetMaterial invalida en caché los lotes de un material, p. ej. tras renombrarlo.
func (uc *UseCase) ForgetMaterial(ctx context.Context, companyID, materialID string) {
	uc.forgetWhere(ctx, companyID, repository.BatchFilter{MaterialID: materialID})
}

// ForgetSupplier invalida en caché los lotes de un proveedor.
func (uc *UseCase) ForgetSupplier(ctx context.Context, companyID, supplierID string) {
	uc.forgetWhere(ctx, companyID, repository.BatchFilter{SupplierID: supplierID})
}

// ForgetWarehouse invalida en caché los lotes ubicados en una bodega.
func (uc *UseCase) ForgetWarehouse(ctx context.Context, companyID, warehouseID string) {
	uc.forgetWhere(ctx, companyID, repository.BatchFilter{WarehouseID: warehouseID})
}

// StockSummary suma el remanente de los lotes available de un material y lo compara con su stock mínimo.
func (uc *UseCase) StockSummary(ctx context.Context, companyID, materialID string) (*dto.MaterialStockResponse, error) {
	material, err := uc.materialOf(ctx, companyID, materialID)
	if err != nil {
		return nil, err
	}
	stock, err := uc.batches.StockByMaterial(ctx, companyID, []string{materialID})
	if err != nil {
		return nil, err
	}
	s := stock[materialID]
	return &dto.MaterialStockResponse{
		MaterialID:    materialID,
		Available:     s.Available,
		BatchCount:    s.BatchCount,
		MinStock:      material.MinStock,
		BelowMinStock: s.Available.LessThan(material.MinStock),
	}, nil
}

// mutate bloquea el lote, calcula el patch con fn, lo aplica y persiste en una sola transacción.
// El lote devuelto se relee tras guardar, con los nombres de material y proveedor vigentes.
func (uc *UseCase) mutate(ctx context.Context, companyID, id string, fn func(b *entity.Batch) (inventory.BatchPatch, error)) (*entity.Batch, error) {
	var result *entity.Batch
	err := uc.tx.RunBatch(ctx, func(batches repository.BatchRepository) error {
		b, err := batches.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.CompanyID != companyID {
			return domain.ErrNotFound
		}
		patch, err := fn(b)
		if err != nil {
			return err
		}
		inventory.ApplyBatchPatch(b, patch)
		if err := batches.Update(ctx, b); err != nil {
			return err
		}
		fresh, err := batches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if fresh == nil {
			return domain.ErrNotFound
		}
		result = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.forget(ctx, id)
	return result, nil
}

// patchFrom valida la entrada HTTP y la convierte en un patch de dominio (aún sin reconciliar).
func (uc *UseCase) patchFrom(ctx context.Context, companyID string, in dto.UpdateBatchRequest) (inventory.BatchPatch, error) {
	p := inventory.BatchPatch{
		Quantity:          in.Quantity,
		RemainingQuantity: in.RemainingQuantity,
		SupplierID:        in.SupplierID,
		WarehouseID:       in.WarehouseID,
		ProductionDate:    in.ProductionDate,
		ExpiryDate:        in.ExpiryDate,
		Notes:             in.Notes,
	}
	if in.Quantity != nil {
		if in.Quantity.IsNegative() {
			return p, fmt.Errorf("%w: quantity no puede ser negativa", domain.ErrInvalidInput)
		}
		if err := inventory.CheckQuantity("quantity", *in.Quantity); err != nil {
			return p, err
		}
	}
	if in.RemainingQuantity != nil {
		if err := inventory.CheckQuantity("remaining_quantity", *in.RemainingQuantity); err != nil {
			return p, err
		}
	}
	if in.BatchNumber != nil {
		n := strings.TrimSpace(*in.BatchNumber)
		if n == "" {
			return p, fmt.Errorf("%w: batch_number vacío", domain.ErrInvalidInput)
		}
		p.BatchNumber = &n
	}
	if in.Status != nil {
		st, err := inventory.ParseBatchStatus(*in.Status)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	supplierID, warehouseID := "", ""
	if in.SupplierID != nil {
		supplierID = *in.SupplierID
	}
	if in.WarehouseID != nil {
		warehouseID = *in.WarehouseID
	}
	if _, err := uc.checkRefs(ctx, companyID, supplierID, warehouseID); err != nil {
		return p, err
	}
	return p, nil
}

func (uc *UseCase) materialOf(ctx context.Context, companyID, materialID string) (*entity.Material, error) {
	m, err := uc.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if m.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// checkRefs valida que proveedor y bodega (si vienen) existan y sean de la empresa.
// Devuelve el nombre del proveedor.
func (uc *UseCase) checkRefs(ctx context.Context, companyID, supplierID, warehouseID string) (string, error) {
	var supplierName string
	if supplierID != "" {
		s, err := uc.suppliers.GetByID(ctx, supplierID)
		if err != nil {
			return "", err
		}
		if s == nil || s.CompanyID != companyID {
			return "", fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, supplierID)
		}
		supplierName = s.Name
	}
	if warehouseID != "" {
		w, err := uc.warehouses.GetByID(ctx, warehouseID)
		if err != nil {
			return "", err
		}
		if w == nil || w.CompanyID != companyID {
			return "", fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
		}
	}
	return supplierName, nil
}

// load lee primero de la caché y, si falla o no está, de la BD.
func (uc *UseCase) load(ctx context.Context, id string) (*entity.Batch, error) {
	if uc.cache != nil {
		b, err := uc.cache.Get(ctx, id)
		if err != nil {
			uc.log.Warn().Err(err).Str("batch_id", id).Msg("caché de lotes no disponible")
		} else if b != nil {
			return b, nil
		}
	}
	b, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b != nil {
		uc.remember(ctx, b)
	}
	return b, nil
}

func (uc *UseCase) remember(ctx context.Context, b *entity.Batch) {
	if uc.cache == nil || b == nil {
		return
	}
	if err := uc.cache.Set(ctx, b); err != nil {
		uc.log.Warn().Err(err).Str("batch_id", b.ID).Msg("no se pudo cachear el lote")
	}
}

// forget borra el lote de la caché. Las escrituras invalidan en lugar de sobrescribir:
// la siguiente lectura repuebla desde la BD.
func (uc *UseCase) forget(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.log.Warn().Err(err).Str("batch_id", id).Msg("no se pudo invalidar la caché del lote")
	}
}

func (uc *UseCase) forgetWhere(ctx context.Context, companyID string, f repository.BatchFilter) {
	if uc.cache == nil {
		return
	}
	f.Limit = dto.MaxPageLimit
	for {
		list, total, err := uc.batches.List(ctx, companyID, f)
		if err != nil {
			uc.log.Warn().Err(err).Msg("no se pudieron listar lotes para invalidar la caché")
			return
		}
		for _, b := range list {
			uc.forget(ctx, b.ID)
		}
		f.Offset += len(list)
		if len(list) == 0 || f.Offset >= total {
			return
		}
	}
}

func (uc *UseCase) publish(kind string, b *entity.Batch) {
	if uc.events == nil {
		return
	}
	uc.events.Publish(entity.BatchEvent{
		Type:       kind,
		CompanyID:  b.CompanyID,
		BatchID:    b.ID,
		MaterialID: b.MaterialID,
		Status:     b.Status,
		At:         uc.now(),
	})
}

func (uc *UseCase) observe(c inventory.ReconcileCase) {
	if uc.metrics != nil {
		uc.metrics.ObserveReconcile(c)
	}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toBatchResponse(b *entity.Batch) *dto.BatchResponse {
	if b == nil {
		return nil
	}
	return &dto.BatchResponse{
		ID:                b.ID,
		CompanyID:         b.CompanyID,
		MaterialID:        b.MaterialID,
		MaterialCode:      b.MaterialCode,
		MaterialName:      b.MaterialName,
		SupplierID:        b.SupplierID,
		SupplierName:      b.SupplierName,
		WarehouseID:       b.WarehouseID,
		BatchNumber:       b.BatchNumber,
		Barcode:           b.Barcode,
		Quantity:          b.Quantity,
		RemainingQuantity: b.RemainingQuantity,
		Consumed:          b.Consumed(),
		Status:            string(b.Status),
		ProductionDate:    b.ProductionDate,
		ExpiryDate:        b.ExpiryDate,
		Notes:             b.Notes,
		CreatedBy:         b.CreatedBy,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}
