// Package metrics expone los contadores del libro de inventario en formato Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics registry propio con las métricas del motor de stock y del servidor HTTP.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	movements         *prometheus.CounterVec
	units             *prometheus.CounterVec
	insufficientStock *prometheus.CounterVec
	driftPairs        *prometheus.GaugeVec
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// New inicializa el registry y las métricas.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_movements_total",
			Help: "Movimientos escritos en el Kardex por tipo y dirección.",
		}, []string{"kind", "direction"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_movement_units_total",
			Help: "Unidades movidas por tipo y dirección.",
		}, []string{"kind", "direction"}),
		insufficientStock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_insufficient_stock_total",
			Help: "Salidas rechazadas por stock insuficiente.",
		}, []string{"kind"}),
		driftPairs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inventory_drift_pairs",
			Help: "Pares (variante, bodega) cuyo saldo no coincide con el Kardex en la última reconciliación.",
		}, []string{"company_id"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Peticiones HTTP por ruta y código.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	registry.MustRegister(m.movements, m.units, m.insufficientStock, m.driftPairs, m.requestsTotal, m.requestDuration)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler { return m.handler }

// Registerer permite registrar métricas adicionales (por ejemplo las del worker).
func (m *Metrics) Registerer() prometheus.Registerer { return m.registry }

// MovementRecorded cuenta un movimiento del Kardex.
func (m *Metrics) MovementRecorded(kind entity.MovementKind, quantity int64) {
	direction := "in"
	if quantity < 0 {
		direction = "out"
		quantity = -quantity
	}
	m.movements.WithLabelValues(string(kind), direction).Inc()
	m.units.WithLabelValues(string(kind), direction).Add(float64(quantity))
}

// InsufficientStock cuenta una salida rechazada.
func (m *Metrics) InsufficientStock(kind entity.MovementKind) {
	m.insufficientStock.WithLabelValues(string(kind)).Inc()
}

// DriftDetected fija el número de pares con deriva de la empresa.
func (m *Metrics) DriftDetected(companyID string, pairs int) {
	m.driftPairs.WithLabelValues(companyID).Set(float64(pairs))
}

// Middleware registra conteo y duración por ruta de fiber.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}
