package batch_test

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// ── Repositorio de lotes en memoria ───────────────────────────────────────────

type fakeBatchRepo struct {
	mu      sync.Mutex
	items   map[string]*entity.Batch
	updates int

	// Catálogos para emular los JOIN de las lecturas.
	materials map[string]*entity.Material
	suppliers map[string]*entity.Supplier
}

func newFakeBatchRepo(seed ...*entity.Batch) *fakeBatchRepo {
	r := &fakeBatchRepo{items: make(map[string]*entity.Batch)}
	for _, b := range seed {
		c := *b
		r.items[b.ID] = &c
	}
	return r
}

func (r *fakeBatchRepo) Create(_ context.Context, b *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.CompanyID == b.CompanyID && it.Barcode == b.Barcode {
			return domain.ErrDuplicate
		}
	}
	c := *b
	r.items[b.ID] = &c
	return nil
}

func (r *fakeBatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	c := *b
	r.join(&c)
	return &c, nil
}

func (r *fakeBatchRepo) join(b *entity.Batch) {
	if m, ok := r.materials[b.MaterialID]; ok {
		b.MaterialCode, b.MaterialName = m.Code, m.Name
	}
	b.SupplierName = ""
	if b.SupplierID != nil {
		if s, ok := r.suppliers[*b.SupplierID]; ok {
			b.SupplierName = s.Name
		}
	}
}

func (r *fakeBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	b, _ := r.GetByID(ctx, id)
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (r *fakeBatchRepo) Update(_ context.Context, b *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *b
	r.items[b.ID] = &c
	r.updates++
	return nil
}

func (r *fakeBatchRepo) List(_ context.Context, companyID string, f repository.BatchFilter) ([]*entity.Batch, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Batch
	for _, b := range r.items {
		if b.CompanyID != companyID {
			continue
		}
		if f.MaterialID != "" && b.MaterialID != f.MaterialID {
			continue
		}
		if f.SupplierID != "" && (b.SupplierID == nil || *b.SupplierID != f.SupplierID) {
			continue
		}
		if f.WarehouseID != "" && (b.WarehouseID == nil || *b.WarehouseID != f.WarehouseID) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		c := *b
		r.join(&c)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *fakeBatchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeBatchRepo) CountByMaterial(_ context.Context, materialID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.items {
		if b.MaterialID == materialID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBatchRepo) StockByMaterial(_ context.Context, companyID string, ids []string) (map[string]repository.MaterialStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]repository.MaterialStock)
	for _, id := range ids {
		s := repository.MaterialStock{MaterialID: id, Available: decimal.Zero}
		for _, b := range r.items {
			if b.CompanyID == companyID && b.MaterialID == id && b.Status == entity.BatchStatusAvailable {
				s.Available = s.Available.Add(b.RemainingQuantity)
				s.BatchCount++
			}
		}
		out[id] = s
	}
	return out, nil
}

// fakeTx ejecuta el callback con el mismo repositorio; si falla descarta los cambios.
type fakeTx struct{ repo *fakeBatchRepo }

func (t fakeTx) RunBatch(ctx context.Context, fn func(repository.BatchRepository) error) error {
	t.repo.mu.Lock()
	snapshot := make(map[string]*entity.Batch, len(t.repo.items))
	for k, v := range t.repo.items {
		c := *v
		snapshot[k] = &c
	}
	t.repo.mu.Unlock()

	if err := fn(t.repo); err != nil {
		t.repo.mu.Lock()
		t.repo.items = snapshot
		t.repo.mu.Unlock()
		return err
	}
	return nil
}

// ── Catálogos ─────────────────────────────────────────────────────────────────

type fakeMaterialRepo struct{ items map[string]*entity.Material }

func (r fakeMaterialRepo) Create(context.Context, *entity.Material) error { return nil }
func (r fakeMaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	return r.items[id], nil
}
func (r fakeMaterialRepo) GetByCompanyAndCode(context.Context, string, string) (*entity.Material, error) {
	return nil, nil
}
func (r fakeMaterialRepo) Update(context.Context, *entity.Material) error { return nil }
func (r fakeMaterialRepo) ListByCompany(context.Context, string, string, int, int) ([]*entity.Material, int, error) {
	return nil, 0, nil
}
func (r fakeMaterialRepo) Delete(context.Context, string) error               { return nil }
func (r fakeMaterialRepo) NextBarcodeSequence(context.Context) (int64, error) { return 1, nil }

type fakeSupplierRepo struct{ items map[string]*entity.Supplier }

func (r fakeSupplierRepo) Create(context.Context, *entity.Supplier) error { return nil }
func (r fakeSupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	return r.items[id], nil
}
func (r fakeSupplierRepo) Update(context.Context, *entity.Supplier) error { return nil }
func (r fakeSupplierRepo) ListByCompany(context.Context, string, string, int, int) ([]*entity.Supplier, int, error) {
	return nil, 0, nil
}
func (r fakeSupplierRepo) Delete(context.Context, string) error { return nil }

type fakeWarehouseRepo struct{ items map[string]*entity.Warehouse }

func (r fakeWarehouseRepo) Create(context.Context, *entity.Warehouse) error { return nil }
func (r fakeWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	return r.items[id], nil
}
func (r fakeWarehouseRepo) Update(context.Context, *entity.Warehouse) error { return nil }
func (r fakeWarehouseRepo) ListByCompany(context.Context, string, int, int) ([]*entity.Warehouse, int, error) {
	return nil, 0, nil
}
func (r fakeWarehouseRepo) Delete(context.Context, string) error { return nil }

// ── Caché, eventos y métricas ─────────────────────────────────────────────────

type fakeCache struct {
	mu    sync.Mutex
	items map[string]entity.Batch
	fail  error
}

func newFakeCache() *fakeCache { return &fakeCache{items: make(map[string]entity.Batch)} }

func (c *fakeCache) Get(_ context.Context, id string) (*entity.Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	b, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (c *fakeCache) Set(_ context.Context, b *entity.Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.items[b.ID] = *b
	return nil
}

func (c *fakeCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []entity.BatchEvent
}

func (p *fakePublisher) Publish(ev entity.BatchEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeRecorder struct {
	cases    []inventory.ReconcileCase
	consumed float64
}

func (r *fakeRecorder) ObserveReconcile(c inventory.ReconcileCase) { r.cases = append(r.cases, c) }
func (r *fakeRecorder) ObserveConsumption(amount float64)          { r.consumed += amount }
