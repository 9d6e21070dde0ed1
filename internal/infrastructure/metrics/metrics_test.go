package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/metrics"
)

func TestRecorder(t *testing.T) {
	m := metrics.New("test")
	m.ObserveReconcile(inventory.ReconcileQuantityDelta)
	m.ObserveReconcile(inventory.ReconcileQuantityDelta)
	m.ObserveReconcile(inventory.ReconcileExplicit)
	m.ObserveConsumption(2.5)
	m.ObserveConsumption(-1)
	m.EventDropped()

	expected := `
# HELP test_batch_reconcile_total Actualizaciones de lotes por caso de reconciliación aplicado.
# TYPE test_batch_reconcile_total counter
test_batch_reconcile_total{case="explicit"} 1
test_batch_reconcile_total{case="quantity_delta"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_batch_reconcile_total"))

	expected = `
# HELP test_batch_consumed_quantity_total Cantidad total consumida de lotes (todas las unidades).
# TYPE test_batch_consumed_quantity_total counter
test_batch_consumed_quantity_total 2.5
# HELP test_batch_events_dropped_total Eventos de lotes descartados por suscriptores lentos.
# TYPE test_batch_events_dropped_total counter
test_batch_events_dropped_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"test_batch_consumed_quantity_total", "test_batch_events_dropped_total"))
}

func TestMiddlewareYHandler(t *testing.T) {
	m := metrics.New("test")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/batches/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	resp, err := app.Test(httptest.NewRequest("GET", "/batches/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",route="/batches/:id",status="204"} 1`)
}
