package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchSelect = `
	SELECT b.id, b.company_id, b.material_id, b.supplier_id, b.warehouse_id, b.batch_number, b.barcode,
	       b.quantity, b.remaining_quantity, b.status, b.production_date, b.expiry_date, b.notes,
	       b.created_by, b.created_at, b.updated_at,
	       m.code, m.name, COALESCE(s.name, '')
	FROM batches b
	JOIN materials m ON m.id = b.material_id
	LEFT JOIN suppliers s ON s.id = b.supplier_id`

func scanBatch(row pgx.Row, extra ...any) (*entity.Batch, error) {
	var b entity.Batch
	var status string
	dest := []any{
		&b.ID, &b.CompanyID, &b.MaterialID, &b.SupplierID, &b.WarehouseID, &b.BatchNumber, &b.Barcode,
		&b.Quantity, &b.RemainingQuantity, &status, &b.ProductionDate, &b.ExpiryDate, &b.Notes,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		&b.MaterialCode, &b.MaterialName, &b.SupplierName,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Status = entity.BatchStatus(status)
	return &b, nil
}

// Create persiste un lote nuevo. Barcode duplicado en la empresa -> domain.ErrDuplicate.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (id, company_id, material_id, supplier_id, warehouse_id, batch_number, barcode,
			quantity, remaining_quantity, status, production_date, expiry_date, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.CompanyID, b.MaterialID, b.SupplierID, b.WarehouseID, b.BatchNumber, b.Barcode,
		b.Quantity, b.RemainingQuantity, string(b.Status), b.ProductionDate, b.ExpiryDate, b.Notes,
		b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote con los nombres de material y proveedor. (nil, nil) si no existe.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, batchSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetForUpdate lee y bloquea la fila del lote hasta el fin de la transacción.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, batchSelect+` WHERE b.id = $1 FOR UPDATE OF b`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get batch for update: %w", err)
	}
	return b, nil
}

// Update guarda cantidades, estado y datos descriptivos.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches SET supplier_id = $2, warehouse_id = $3, batch_number = $4, quantity = $5,
			remaining_quantity = $6, status = $7, production_date = $8, expiry_date = $9, notes = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		b.ID, b.SupplierID, b.WarehouseID, b.BatchNumber, b.Quantity,
		b.RemainingQuantity, string(b.Status), b.ProductionDate, b.ExpiryDate, b.Notes, b.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update batch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra lotes de la empresa. El total sale de COUNT(*) OVER() en la misma consulta.
func (r *BatchRepo) List(ctx context.Context, companyID string, f repository.BatchFilter) ([]*entity.Batch, int, error) {
	where, args := batchWhere(companyID, f)
	args = append(args, f.Limit, f.Offset)
	query := strings.Replace(batchSelect, "m.code, m.name, COALESCE(s.name, '')",
		"m.code, m.name, COALESCE(s.name, ''), COUNT(*) OVER()", 1) +
		where + fmt.Sprintf(` ORDER BY b.created_at DESC, b.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var (
		list  []*entity.Batch
		total int
	)
	for rows.Next() {
		b, err := scanBatch(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, total, rows.Err()
}

// batchWhere arma el WHERE parametrizado; $1 es siempre la empresa.
func batchWhere(companyID string, f repository.BatchFilter) (string, []any) {
	conds := []string{"b.company_id = $1"}
	args := []any{companyID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.MaterialID != "" {
		add("b.material_id = $%d", f.MaterialID)
	}
	if f.SupplierID != "" {
		add("b.supplier_id = $%d", f.SupplierID)
	}
	if f.WarehouseID != "" {
		add("b.warehouse_id = $%d", f.WarehouseID)
	}
	if f.Status != "" {
		add("b.status = $%d", string(f.Status))
	}
	if f.ExpiringBefore != nil {
		add("b.expiry_date IS NOT NULL AND b.expiry_date <= $%d", *f.ExpiringBefore)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(b.batch_number ILIKE $%d OR b.barcode ILIKE $%d OR m.name ILIKE $%d)", n, n, n))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Delete borra el lote.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// CountByMaterial cantidad de lotes (en cualquier estado) de un material.
func (r *BatchRepo) CountByMaterial(ctx context.Context, materialID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM batches WHERE material_id = $1`, materialID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return n, nil
}

// StockByMaterial suma el remanente de los lotes available por material. Los materiales sin lotes vienen en cero.
func (r *BatchRepo) StockByMaterial(ctx context.Context, companyID string, materialIDs []string) (map[string]repository.MaterialStock, error) {
	out := make(map[string]repository.MaterialStock, len(materialIDs))
	for _, id := range materialIDs {
		out[id] = repository.MaterialStock{MaterialID: id, Available: decimal.Zero}
	}
	if len(materialIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT material_id, COALESCE(SUM(remaining_quantity), 0), COUNT(*)
		FROM batches
		WHERE company_id = $1 AND material_id = ANY($2::uuid[]) AND status = $3
		GROUP BY material_id`
	rows, err := r.q.Query(ctx, query, companyID, materialIDs, string(entity.BatchStatusAvailable))
	if err != nil {
		return nil, fmt.Errorf("stock by material: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s repository.MaterialStock
		if err := rows.Scan(&s.MaterialID, &s.Available, &s.BatchCount); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[s.MaterialID] = s
	}
	return out, rows.Err()
}
