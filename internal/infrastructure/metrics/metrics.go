// Package metrics expone contadores Prometheus de negocio (reconciliación, consumo) y de HTTP.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

var _ batch.Recorder = (*Metrics)(nil)

// Metrics agrupa los collectors sobre un registry propio (sin estado global).
type Metrics struct {
	registry      *prometheus.Registry
	reconciles    *prometheus.CounterVec
	consumed      prometheus.Counter
	eventsDropped prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registra los collectors. namespace vacío usa "inventario".
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "inventario"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_reconcile_total",
			Help:      "Actualizaciones de lotes por caso de reconciliación aplicado.",
		}, []string{"case"}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_consumed_quantity_total",
			Help:      "Cantidad total consumida de lotes (todas las unidades).",
		}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_events_dropped_total",
			Help:      "Eventos de lotes descartados por suscriptores lentos.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.reconciles, m.consumed, m.eventsDropped, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveReconcile(c inventory.ReconcileCase) {
	m.reconciles.WithLabelValues(c.String()).Inc()
}

func (m *Metrics) ObserveConsumption(amount float64) {
	if amount > 0 {
		m.consumed.Add(amount)
	}
}

// EventDropped se engancha a events.Hub.OnDrop.
func (m *Metrics) EventDropped() { m.eventsDropped.Inc() }

// Registry para tests o para registrar collectors adicionales.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler sirve /metrics en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware mide cada petición Fiber usando la ruta registrada (no la URL) como etiqueta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" || route == "/" && c.Path() != "/" {
			route = "unmatched"
		}
		method := c.Method()
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
