package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	apphttp "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
)

const (
	testBatchID    = "3f6c1d2e-8a4b-4c7d-9e1f-2a3b4c5d6e7f"
	testOtherBatch = "9b2e7c41-5d3a-4f8e-b6c9-0a1d2e3f4a5b"
	testMaterialID = "c4a8e2f6-1b3d-4e5f-8a7b-9c0d1e2f3a4b"
)

// stubBatches registra las llamadas y devuelve lo configurado.
type stubBatches struct {
	err error

	gotCompany string
	gotUser    string
	gotID      string
	gotCreate  dto.CreateBatchRequest
	gotFilter  dto.BatchFilterRequest
	gotAmount  decimal.Decimal
	gotStatus  string
	found      bool
}

func (s *stubBatches) resp(id string) *dto.BatchResponse {
	return &dto.BatchResponse{ID: id, CompanyID: s.gotCompany, Status: "available", Quantity: decimal.NewFromInt(10), RemainingQuantity: decimal.NewFromInt(10)}
}

func (s *stubBatches) Create(_ context.Context, companyID, userID string, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	s.gotCompany, s.gotUser, s.gotCreate = companyID, userID, in
	if s.err != nil {
		return nil, s.err
	}
	return s.resp("nuevo"), nil
}

func (s *stubBatches) GetByID(_ context.Context, companyID, id string) (*dto.BatchResponse, error) {
	s.gotCompany, s.gotID = companyID, id
	if s.err != nil || !s.found {
		return nil, s.err
	}
	return s.resp(id), nil
}

func (s *stubBatches) List(_ context.Context, companyID string, in dto.BatchFilterRequest) (*dto.BatchListResponse, error) {
	s.gotCompany, s.gotFilter = companyID, in
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BatchListResponse{Items: []dto.BatchResponse{}, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

func (s *stubBatches) Update(_ context.Context, companyID, id string, _ dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	s.gotCompany, s.gotID = companyID, id
	if s.err != nil {
		return nil, s.err
	}
	return s.resp(id), nil
}

func (s *stubBatches) Consume(_ context.Context, companyID, id string, amount decimal.Decimal) (*dto.BatchResponse, error) {
	s.gotCompany, s.gotID, s.gotAmount = companyID, id, amount
	if s.err != nil {
		return nil, s.err
	}
	return s.resp(id), nil
}

func (s *stubBatches) ChangeStatus(_ context.Context, companyID, id, status string) (*dto.BatchResponse, error) {
	s.gotCompany, s.gotID, s.gotStatus = companyID, id, status
	if s.err != nil {
		return nil, s.err
	}
	return s.resp(id), nil
}

func (s *stubBatches) Delete(_ context.Context, companyID, id string) error {
	s.gotCompany, s.gotID = companyID, id
	return s.err
}

func (s *stubBatches) StockSummary(_ context.Context, _, materialID string) (*dto.MaterialStockResponse, error) {
	return &dto.MaterialStockResponse{MaterialID: materialID}, s.err
}

func batchApp(t *testing.T, svc apphttp.BatchService) *fiber.App {
	t.Helper()
	app := fiber.New()
	protected := app.Group("/api", apphttp.AuthMiddleware(newIssuer(t)))
	apphttp.RegisterBatchRoutes(protected, apphttp.NewBatchHandler(svc))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", tokenForRole(t, role))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestBatchHandler_Create(t *testing.T) {
	svc := &stubBatches{}
	app := batchApp(t, svc)

	status, body := call(t, app, http.MethodPost, "/api/batches", "bodeguero",
		`{"material_id":"`+testMaterialID+`","batch_number":"L-001","quantity":"25.5"}`)

	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, testCompanyID, svc.gotCompany)
	assert.Equal(t, testUserID, svc.gotUser)
	assert.Equal(t, "L-001", svc.gotCreate.BatchNumber)
	assert.True(t, decimal.RequireFromString("25.5").Equal(svc.gotCreate.Quantity))

	var out dto.BatchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "nuevo", out.ID)
}

func TestBatchHandler_Create_Validaciones(t *testing.T) {
	app := batchApp(t, &stubBatches{})

	status, body := call(t, app, http.MethodPost, "/api/batches", "admin", `{"batch_number":"L-1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "VALIDATION")

	status, body = call(t, app, http.MethodPost, "/api/batches", "admin", `{"material_id":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "INVALID_BODY")
}

func TestBatchHandler_VendedorSoloLectura(t *testing.T) {
	svc := &stubBatches{found: true}
	app := batchApp(t, svc)

	status, _ := call(t, app, http.MethodGet, "/api/batches/"+testBatchID, "vendedor", "")
	assert.Equal(t, http.StatusOK, status)

	status, body := call(t, app, http.MethodPost, "/api/batches/"+testBatchID+"/consume", "vendedor", `{"amount":"1"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "FORBIDDEN")
	assert.True(t, svc.gotAmount.IsZero(), "el caso de uso no debe invocarse")
}

func TestBatchHandler_GetByID_NoEncontrado(t *testing.T) {
	app := batchApp(t, &stubBatches{found: false})
	status, body := call(t, app, http.MethodGet, "/api/batches/"+testOtherBatch, "admin", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "NOT_FOUND")
}

func TestBatchHandler_List_Filtros(t *testing.T) {
	svc := &stubBatches{}
	app := batchApp(t, svc)

	status, body := call(t, app, http.MethodGet,
		"/api/batches?material_id="+testMaterialID+"&status=available&search=acido&expiring_before=2026-03-31&limit=500&offset=-3", "vendedor", "")
	require.Equal(t, http.StatusOK, status, body)

	f := svc.gotFilter
	assert.Equal(t, testMaterialID, f.MaterialID)
	assert.Equal(t, "available", f.Status)
	assert.Equal(t, "acido", f.Search)
	assert.Equal(t, dto.MaxPageLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
	require.NotNil(t, f.ExpiringBefore)
	assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC), *f.ExpiringBefore)
}

func TestBatchHandler_List_FechaInvalida(t *testing.T) {
	app := batchApp(t, &stubBatches{})
	status, body := call(t, app, http.MethodGet, "/api/batches?expiring_before=31/03/2026", "admin", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "expiring_before")
}

func TestBatchHandler_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"validación", fmt.Errorf("%w: quantity negativa", domain.ErrInvalidInput), http.MethodPut, "/api/batches/" + testBatchID, `{"quantity":"-1"}`, http.StatusBadRequest, "VALIDATION"},
		{"no existe", domain.ErrNotFound, http.MethodPut, "/api/batches/" + testBatchID, `{"notes":"x"}`, http.StatusNotFound, "NOT_FOUND"},
		{"stock insuficiente", domain.ErrInsufficientStock, http.MethodPost, "/api/batches/" + testBatchID + "/consume", `{"amount":"99"}`, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"estado no consumible", fmt.Errorf("%w: locked", domain.ErrConflict), http.MethodPost, "/api/batches/" + testBatchID + "/consume", `{"amount":"1"}`, http.StatusConflict, "CONFLICT"},
		{"duplicado", domain.ErrDuplicate, http.MethodPost, "/api/batches", `{"material_id":"` + testMaterialID + `","batch_number":"L"}`, http.StatusConflict, "DUPLICATE"},
		{"borrado inexistente", domain.ErrNotFound, http.MethodDelete, "/api/batches/" + testBatchID, "", http.StatusNotFound, "NOT_FOUND"},
		{"error interno", errors.New("pool cerrado: secreto"), http.MethodPatch, "/api/batches/" + testBatchID + "/status", `{"status":"locked"}`, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := batchApp(t, &stubBatches{err: tc.err})
			status, body := call(t, app, tc.method, tc.path, "admin", tc.body)
			assert.Equal(t, tc.status, status)
			assert.Contains(t, body, tc.code)
			assert.NotContains(t, body, "secreto")
		})
	}
}

func TestBatchHandler_StatusYDelete(t *testing.T) {
	svc := &stubBatches{}
	app := batchApp(t, svc)

	status, _ := call(t, app, http.MethodPatch, "/api/batches/"+testOtherBatch+"/status", "bodeguero", `{"status":"locked"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, testOtherBatch, svc.gotID)
	assert.Equal(t, "locked", svc.gotStatus)

	status, _ = call(t, app, http.MethodDelete, "/api/batches/"+testOtherBatch, "admin", "")
	assert.Equal(t, http.StatusNoContent, status)
}

func TestBatchHandler_IDsQueNoSonUUID(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"id de ruta", http.MethodGet, "/api/batches/b-1", "", http.StatusNotFound, "NOT_FOUND"},
		{"id de ruta en consumo", http.MethodPost, "/api/batches/no-es-uuid/consume", `{"amount":"1"}`, http.StatusNotFound, "NOT_FOUND"},
		{"material en el cuerpo", http.MethodPost, "/api/batches", `{"material_id":"m-1","batch_number":"L"}`, http.StatusBadRequest, "VALIDATION"},
		{"proveedor en la actualización", http.MethodPut, "/api/batches/" + testBatchID, `{"supplier_id":"sup-1"}`, http.StatusBadRequest, "VALIDATION"},
		{"filtro de bodega", http.MethodGet, "/api/batches?warehouse_id=principal", "", http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubBatches{found: true}
			app := batchApp(t, svc)
			status, body := call(t, app, tc.method, tc.path, "admin", tc.body)
			assert.Equal(t, tc.status, status, body)
			assert.Contains(t, body, tc.code)
			assert.Empty(t, svc.gotCompany, "el caso de uso no debe invocarse")
		})
	}
}

func TestBatchHandler_DesasignarProveedorConIDVacio(t *testing.T) {
	svc := &stubBatches{}
	app := batchApp(t, svc)
	status, body := call(t, app, http.MethodPut, "/api/batches/"+testBatchID, "admin", `{"supplier_id":""}`)
	assert.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, testBatchID, svc.gotID)
}
