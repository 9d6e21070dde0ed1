package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de persistencia para materiales.
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, company_id, code, name, description, category, unit, barcode, min_stock, created_at, updated_at`

func scanMaterial(row pgx.Row, extra ...any) (*entity.Material, error) {
	var m entity.Material
	dest := []any{&m.ID, &m.CompanyID, &m.Code, &m.Name, &m.Description, &m.Category, &m.Unit, &m.Barcode, &m.MinStock, &m.CreatedAt, &m.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un material. Código o barcode repetidos en la empresa -> domain.ErrDuplicate.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `INSERT INTO materials (` + materialColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Code, m.Name, m.Description, m.Category, m.Unit, m.Barcode, m.MinStock, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID obtiene un material por ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// GetByCompanyAndCode obtiene un material por empresa y código.
func (r *MaterialRepo) GetByCompanyAndCode(ctx context.Context, companyID, code string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE company_id = $1 AND code = $2`, companyID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material by code: %w", err)
	}
	return m, nil
}

// Update actualiza los datos descriptivos de un material.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materials SET name = $2, description = $3, category = $4, unit = $5, barcode = $6, min_stock = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Description, m.Category, m.Unit, m.Barcode, m.MinStock, m.UpdatedAt)
	if err != nil {
		if mapped := mapWriteErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update material: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista materiales; search filtra por código o nombre (ILIKE).
func (r *MaterialRepo) ListByCompany(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Material, int, error) {
	query := `
		SELECT ` + materialColumns + `, COUNT(*) OVER()
		FROM materials
		WHERE company_id = $1 AND ($2 = '' OR code ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')
		ORDER BY name, id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var (
		list  []*entity.Material
		total int
	)
	for rows.Next() {
		m, err := scanMaterial(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Delete elimina un material. Si aún tiene lotes la FK lo impide -> domain.ErrConflict.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id); err != nil {
		if mapped := mapWriteErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}

// NextBarcodeSequence siguiente valor de material_barcode_seq.
func (r *MaterialRepo) NextBarcodeSequence(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('material_barcode_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next barcode sequence: %w", err)
	}
	return n, nil
}
