package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/purchases"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type apiEnv struct {
	app     *fiber.App
	store   *memory.Store
	variant *entity.ProductVariant
	wh      *entity.Warehouse
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	store := memory.New()
	m := metrics.New()
	engine := inventory.NewStockEngine(zerolog.Nop(), m)
	log := zerolog.Nop()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:      usecase.NewWarehouseUseCase(store, engine, log),
		RegisterMovement: inventory.NewRegisterMovementUseCase(store, engine, log),
		Ledger:           inventory.NewLedgerUseCase(store, engine, nil, log),
		Reconcile:        inventory.NewReconcileUseCase(store, engine, m, log),
		Fulfillment:      orders.NewFulfillmentUseCase(store, engine, false, log),
		Receiving:        purchases.NewReceivingUseCase(store, engine, log),
		Verifier:         testVerifier(t),
		Logger:           log,
		Metrics:          m.Middleware(),
		MetricsHandler:   m.Handler(),
	})
	return &apiEnv{
		app:     app,
		store:   store,
		variant: store.SeedVariant(testCompanyID, "CAM-M-AZ", decimal.NewFromInt(50000), decimal.NewFromInt(20000)),
		wh:      store.SeedWarehouse(testCompanyID, "Principal", true),
	}
}

func (e *apiEnv) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_AjusteBodegueroCreaMovimiento(t *testing.T) {
	e := newAPI(t)
	resp, body := e.do(t, http.MethodPost, "/api/inventory/adjustments", "bodeguero", dto.AdjustmentRequest{
		VariantID: e.variant.ID, WarehouseID: e.wh.ID, Type: "ENTRADA", Quantity: 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out dto.AdjustmentResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, int64(10), out.Balance)
	assert.Equal(t, int64(10), e.store.Quantity(testCompanyID, e.variant.ID, e.wh.ID))
}

func TestAPI_AjusteVendedorProhibido(t *testing.T) {
	e := newAPI(t)
	resp, _ := e.do(t, http.MethodPost, "/api/inventory/adjustments", "vendedor", dto.AdjustmentRequest{
		VariantID: e.variant.ID, WarehouseID: e.wh.ID, Type: "ENTRADA", Quantity: 10,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_StockInsuficienteIncluyeDetalle(t *testing.T) {
	e := newAPI(t)
	e.store.SeedStock(testCompanyID, e.variant.ID, e.wh.ID, 3)

	resp, body := e.do(t, http.MethodPost, "/api/inventory/adjustments", "admin", dto.AdjustmentRequest{
		VariantID: e.variant.ID, WarehouseID: e.wh.ID, Type: "SALIDA", Quantity: 5,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)
	assert.EqualValues(t, 3, out.Details["available"])
	assert.EqualValues(t, 5, out.Details["requested"])
}

func TestAPI_ValidacionDeCuerpo(t *testing.T) {
	e := newAPI(t)
	resp, body := e.do(t, http.MethodPost, "/api/inventory/transfers", "admin", dto.TransferRequest{
		VariantID: e.variant.ID, FromWarehouseID: e.wh.ID, ToWarehouseID: e.wh.ID, Quantity: 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Details, "to_warehouse_id")
}

func TestAPI_KardexRequiereParametros(t *testing.T) {
	e := newAPI(t)
	resp, _ := e.do(t, http.MethodGet, "/api/inventory/kardex?variant_id="+e.variant.ID, "vendedor", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := e.do(t, http.MethodGet, "/api/inventory/kardex?variant_id="+e.variant.ID+"&warehouse_id="+e.wh.ID, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestAPI_OcultarMovimientoSoloAdmin(t *testing.T) {
	e := newAPI(t)
	e.store.SeedStock(testCompanyID, e.variant.ID, e.wh.ID, 3)
	id := e.store.Movements()[0].ID

	resp, _ := e.do(t, http.MethodDelete, "/api/inventory/movements/"+id, "bodeguero", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/inventory/movements/"+id, "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(3), e.store.Quantity(testCompanyID, e.variant.ID, e.wh.ID))

	resp, _ = e.do(t, http.MethodDelete, "/api/inventory/movements/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ReconciliarReportaDeriva(t *testing.T) {
	e := newAPI(t)
	e.store.SeedStock(testCompanyID, e.variant.ID, e.wh.ID, 10)
	e.store.ForceQuantity(testCompanyID, e.variant.ID, e.wh.ID, 9)

	resp, body := e.do(t, http.MethodPost, "/api/inventory/reconcile", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.ReconciliationReport
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Drift, 1)
	assert.Equal(t, int64(-1), out.Drift[0].Difference)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos y bodegas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PedidoEdicionSinStockConservaSaldo(t *testing.T) {
	e := newAPI(t)
	e.store.SeedStock(testCompanyID, e.variant.ID, e.wh.ID, 50)

	resp, body := e.do(t, http.MethodPost, "/api/orders", "vendedor", dto.CreateOrderRequest{
		Lines: []dto.OrderLineRequest{{VariantID: e.variant.ID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))

	resp, body = e.do(t, http.MethodPut, "/api/orders/"+order.ID+"/lines", "vendedor", dto.UpdateOrderLinesRequest{
		Lines: []dto.OrderLineRequest{{VariantID: e.variant.ID, Quantity: 1000}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "INSUFFICIENT_STOCK")
	assert.Equal(t, int64(48), e.store.Quantity(testCompanyID, e.variant.ID, e.wh.ID))

	resp, _ = e.do(t, http.MethodPatch, "/api/orders/"+order.ID+"/status", "vendedor", dto.ChangeStatusRequest{Status: "CANCELLED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = e.do(t, http.MethodPatch, "/api/orders/"+order.ID+"/status", "vendedor", dto.ChangeStatusRequest{Status: "PENDING"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "INVARIANT_VIOLATION")
}

func TestAPI_PedidoDescuentaAlCrearseEnCualquierEstado(t *testing.T) {
	e := newAPI(t)
	e.store.SeedStock(testCompanyID, e.variant.ID, e.wh.ID, 10)

	for _, status := range []string{"", "PENDING", "COMPLETED"} {
		resp, body := e.do(t, http.MethodPost, "/api/orders", "vendedor", dto.CreateOrderRequest{
			Status: status,
			Lines:  []dto.OrderLineRequest{{VariantID: e.variant.ID, Quantity: 2}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}
	assert.Equal(t, int64(4), e.store.Quantity(testCompanyID, e.variant.ID, e.wh.ID))
}

func TestAPI_BodegasSegundaPrincipal(t *testing.T) {
	e := newAPI(t)
	resp, body := e.do(t, http.MethodPost, "/api/warehouses", "admin", dto.CreateWarehouseRequest{Name: "Otra", IsPrimary: true})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "segunda_bodega_principal")

	resp, _ = e.do(t, http.MethodPost, "/api/warehouses", "bodeguero", dto.CreateWarehouseRequest{Name: "Otra"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_SinTokenEs401(t *testing.T) {
	e := newAPI(t)
	resp, _ := e.do(t, http.MethodGet, "/api/warehouses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_MetricasExpuestas(t *testing.T) {
	e := newAPI(t)
	e.do(t, http.MethodGet, "/api/warehouses", "admin", nil)

	resp, body := e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

type queueStub struct{ companyID string }

func (q *queueStub) EnqueueReconcile(_ context.Context, companyID string) (string, error) {
	q.companyID = companyID
	return "task-1", nil
}

func TestAPI_ReconciliacionAsincrona(t *testing.T) {
	q := &queueStub{}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Verifier: testVerifier(t), Logger: zerolog.Nop(), ReconcileQueue: q})

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/reconcile/async", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, testCompanyID, q.companyID)
}
