package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	app := fiber.New()
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_MovimientosPorDireccion(t *testing.T) {
	m := metrics.New()
	m.MovementRecorded(entity.MovementKindSale, -3)
	m.MovementRecorded(entity.MovementKindPurchase, 10)

	body := scrape(t, m)
	assert.Contains(t, body, `inventory_movements_total{direction="out",kind="SALE"} 1`)
	assert.Contains(t, body, `inventory_movement_units_total{direction="out",kind="SALE"} 3`)
	assert.Contains(t, body, `inventory_movement_units_total{direction="in",kind="PURCHASE"} 10`)
}

func TestMetrics_StockInsuficienteYDeriva(t *testing.T) {
	m := metrics.New()
	m.InsufficientStock(entity.MovementKindTransfer)
	m.DriftDetected("c1", 2)

	body := scrape(t, m)
	assert.Contains(t, body, `inventory_insufficient_stock_total{kind="TRANSFER"} 1`)
	assert.Contains(t, body, `inventory_drift_pairs{company_id="c1"} 2`)
}

func TestMetrics_MiddlewareRegistraRuta(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	assert.Contains(t, scrape(t, m), `http_requests_total{code="418",route="/ping/:id"} 1`)
}
