package export_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/export"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type stubBatches struct {
	repository.BatchRepository
	items []*entity.Batch
	pages int
}

func (s *stubBatches) List(_ context.Context, companyID string, f repository.BatchFilter) ([]*entity.Batch, int, error) {
	s.pages++
	var all []*entity.Batch
	for _, b := range s.items {
		if b.CompanyID == companyID {
			all = append(all, b)
		}
	}
	if f.Offset >= len(all) {
		return nil, len(all), nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], len(all), nil
}

func (s *stubBatches) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	for _, b := range s.items {
		if b.ID == id {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubBatches) StockByMaterial(_ context.Context, _ string, ids []string) (map[string]repository.MaterialStock, error) {
	out := map[string]repository.MaterialStock{}
	for _, id := range ids {
		out[id] = repository.MaterialStock{MaterialID: id, Available: decimal.NewFromInt(7)}
	}
	return out, nil
}

type stubMaterials struct {
	repository.MaterialRepository
	items map[string]*entity.Material
}

func (s stubMaterials) GetByID(_ context.Context, id string) (*entity.Material, error) {
	return s.items[id], nil
}

func (s stubMaterials) ListByCompany(_ context.Context, companyID, _ string, _, offset int) ([]*entity.Material, int, error) {
	if offset > 0 {
		return nil, 0, nil
	}
	var out []*entity.Material
	for _, m := range s.items {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

type stubCompanies struct{ repository.CompanyRepository }

func (stubCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return &entity.Company{ID: id, Name: "Jabones SAS"}, nil
}

type captureSheets struct{ got []export.Sheet }

func (c *captureSheets) Write(_ context.Context, sheets ...export.Sheet) ([]byte, error) {
	c.got = append(c.got, sheets...)
	return []byte("xlsx"), nil
}

type captureLabels struct {
	company   string
	batches   []export.BatchLabel
	materials []export.MaterialLabel
}

func (c *captureLabels) BatchLabels(_ context.Context, company string, l []export.BatchLabel) ([]byte, error) {
	c.company, c.batches = company, l
	return []byte("%PDF"), nil
}

func (c *captureLabels) MaterialLabels(_ context.Context, company string, l []export.MaterialLabel) ([]byte, error) {
	c.company, c.materials = company, l
	return []byte("%PDF"), nil
}

var exportNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func manyBatches(n int) []*entity.Batch {
	out := make([]*entity.Batch, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &entity.Batch{
			ID: "b", CompanyID: "c1", MaterialID: "m1", BatchNumber: "L",
			Quantity: decimal.NewFromInt(10), RemainingQuantity: decimal.NewFromInt(4),
			Status: entity.BatchStatusAvailable,
		})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────

func TestExportBatches_RecorrePaginasYNombraArchivo(t *testing.T) {
	batches := &stubBatches{items: manyBatches(1200)}
	sheets := &captureSheets{}
	uc := export.NewUseCase(batches, stubMaterials{}, stubCompanies{}, sheets, &captureLabels{}).
		WithClock(func() time.Time { return exportNow })

	f, err := uc.ExportBatches(context.Background(), "c1", repository.BatchFilter{})
	require.NoError(t, err)

	assert.Equal(t, "lotes_20260314_092653.xlsx", f.Name)
	assert.Equal(t, export.ContentTypeXLSX, f.ContentType)
	assert.Equal(t, 3, batches.pages)
	require.Len(t, sheets.got, 1)
	assert.Len(t, sheets.got[0].Rows, 1200)
	assert.Equal(t, 6.0, sheets.got[0].Rows[0][7], "consumido = cantidad - remanente")
}

func TestExportMaterials_IncluyeStockDisponible(t *testing.T) {
	mats := stubMaterials{items: map[string]*entity.Material{
		"m1": {ID: "m1", CompanyID: "c1", Code: "GLI", Name: "Glicerina", Unit: "kg", MinStock: decimal.NewFromInt(2)},
	}}
	sheets := &captureSheets{}
	uc := export.NewUseCase(&stubBatches{}, mats, stubCompanies{}, sheets, &captureLabels{})

	f, err := uc.ExportMaterials(context.Background(), "c1")
	require.NoError(t, err)
	assert.Contains(t, f.Name, "materiales_")
	require.Len(t, sheets.got[0].Rows, 1)
	assert.Equal(t, []any{"GLI", "Glicerina", "", "kg", "", 2.0, 7.0}, sheets.got[0].Rows[0])
}

func TestPrintBatchLabels(t *testing.T) {
	exp := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	batches := &stubBatches{items: []*entity.Batch{
		{ID: "b1", CompanyID: "c1", MaterialID: "m1", BatchNumber: "L-1", Barcode: "GLI|L-1",
			RemainingQuantity: decimal.NewFromInt(3), ExpiryDate: &exp},
		{ID: "b2", CompanyID: "c2", MaterialID: "m1"},
	}}
	mats := stubMaterials{items: map[string]*entity.Material{
		"m1": {ID: "m1", CompanyID: "c1", Code: "GLI", Name: "Glicerina", Unit: "kg"},
	}}
	labels := &captureLabels{}
	uc := export.NewUseCase(batches, mats, stubCompanies{}, &captureSheets{}, labels)
	ctx := context.Background()

	f, err := uc.PrintBatchLabels(ctx, "c1", dto.PrintLabelsRequest{IDs: []string{"b1"}})
	require.NoError(t, err)
	assert.Equal(t, export.ContentTypePDF, f.ContentType)
	assert.Equal(t, "Jabones SAS", labels.company)
	require.Len(t, labels.batches, 1)
	assert.Equal(t, export.BatchLabel{
		MaterialCode: "GLI", MaterialName: "Glicerina", BatchNumber: "L-1", Barcode: "GLI|L-1",
		Remaining: "3", Unit: "kg", Expiry: "31/01/2027",
	}, labels.batches[0])

	_, err = uc.PrintBatchLabels(ctx, "c1", dto.PrintLabelsRequest{IDs: []string{"b1", "b2"}})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "lote de otra empresa")

	_, err = uc.PrintBatchLabels(ctx, "c1", dto.PrintLabelsRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.PrintBatchLabels(ctx, "c1", dto.PrintLabelsRequest{IDs: make([]string, export.MaxLabels+1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPrintMaterialLabels(t *testing.T) {
	mats := stubMaterials{items: map[string]*entity.Material{
		"m1": {ID: "m1", CompanyID: "c1", Code: "GLI", Name: "Glicerina", Unit: "kg", Barcode: "2000000000015"},
	}}
	labels := &captureLabels{}
	uc := export.NewUseCase(&stubBatches{}, mats, stubCompanies{}, &captureSheets{}, labels)

	_, err := uc.PrintMaterialLabels(context.Background(), "c1", dto.PrintLabelsRequest{IDs: []string{"m1"}})
	require.NoError(t, err)
	assert.Equal(t, []export.MaterialLabel{{Code: "GLI", Name: "Glicerina", Unit: "kg", Barcode: "2000000000015"}}, labels.materials)

	_, err = uc.PrintMaterialLabels(context.Background(), "c2", dto.PrintLabelsRequest{IDs: []string{"m1"}})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
