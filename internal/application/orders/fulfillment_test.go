package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const companyID = "00000000-0000-0000-0000-0000000000c1"

type env struct {
	store   *memory.Store
	uc      *orders.FulfillmentUseCase
	variant *entity.ProductVariant
	wh      *entity.Warehouse
}

func newEnv(t *testing.T, restockOnCancel bool) *env {
	t.Helper()
	store := memory.New()
	engine := inventory.NewStockEngine(zerolog.Nop(), inventory.NopMetrics{})
	e := &env{
		store:   store,
		uc:      orders.NewFulfillmentUseCase(store, engine, restockOnCancel, zerolog.Nop()),
		variant: store.SeedVariant(companyID, "CAM-M-AZ", decimal.NewFromInt(50000), decimal.NewFromInt(20000)),
		wh:      store.SeedWarehouse(companyID, "Principal", true),
	}
	store.SeedStock(companyID, e.variant.ID, e.wh.ID, 50)
	return e
}

func (e *env) qty() int64 { return e.store.Quantity(companyID, e.variant.ID, e.wh.ID) }

func (e *env) ledgerSum() int64 {
	var sum int64
	for _, m := range e.store.Movements() {
		if m.VariantID == e.variant.ID && m.WarehouseID == e.wh.ID {
			sum += m.Quantity
		}
	}
	return sum
}

func (e *env) create(t *testing.T, qty int64) *dto.OrderResponse {
	t.Helper()
	out, err := e.uc.Create(context.Background(), orders.CreateInput{
		CompanyID: companyID,
		UserID:    "u1",
		Lines:     []orders.LineInput{{VariantID: e.variant.ID, Quantity: qty}},
	})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DescuentaStockEnBodegaPrincipal(t *testing.T) {
	e := newEnv(t, false)
	out := e.create(t, 2)

	assert.Equal(t, e.wh.ID, out.WarehouseID)
	assert.Equal(t, string(entity.OrderPending), out.Status)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(100000)), "usa el precio de referencia de la variante")
	assert.Equal(t, int64(48), e.qty())
	assert.Equal(t, e.qty(), e.ledgerSum())
}

func TestCreate_SinStockNoDejaPedido(t *testing.T) {
	e := newEnv(t, false)
	_, err := e.uc.Create(context.Background(), orders.CreateInput{
		CompanyID: companyID,
		Lines:     []orders.LineInput{{VariantID: e.variant.ID, Quantity: 51}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := e.uc.List(context.Background(), companyID, repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, int64(50), e.qty())
}

func TestCreate_SinLineasEsInvariante(t *testing.T) {
	e := newEnv(t, false)
	_, err := e.uc.Create(context.Background(), orders.CreateInput{CompanyID: companyID})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestCreate_EstadoCanceladoNoPermitido(t *testing.T) {
	e := newEnv(t, false)
	_, err := e.uc.Create(context.Background(), orders.CreateInput{
		CompanyID: companyID,
		Status:    entity.OrderCancelled,
		Lines:     []orders.LineInput{{VariantID: e.variant.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateLines: revertir y volver a aplicar
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateLines_EscenarioEdicionYRechazo(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	order := e.create(t, 2)
	require.Equal(t, int64(48), e.qty())

	_, err := e.uc.UpdateLines(ctx, companyID, "u1", order.ID, []orders.LineInput{{VariantID: e.variant.ID, Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(45), e.qty())
	assert.Equal(t, e.qty(), e.ledgerSum(), "el reverso queda registrado en el Kardex")

	movementsBefore := len(e.store.Movements())
	_, err = e.uc.UpdateLines(ctx, companyID, "u1", order.ID, []orders.LineInput{{VariantID: e.variant.ID, Quantity: 1000}})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(50), insufficient.Available, "disponible tras revertir las 5 unidades")
	assert.Equal(t, int64(1000), insufficient.Requested)

	assert.Equal(t, int64(45), e.qty(), "el rollback deja el saldo anterior")
	assert.Len(t, e.store.Movements(), movementsBefore)
	got, err := e.uc.Get(ctx, companyID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(5), got.Lines[0].Quantity)
}

func TestUpdateLines_MismasLineasNoCambiaSaldo(t *testing.T) {
	e := newEnv(t, false)
	order := e.create(t, 3)

	_, err := e.uc.UpdateLines(context.Background(), companyID, "u1", order.ID, []orders.LineInput{{VariantID: e.variant.ID, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(47), e.qty())
	assert.Equal(t, e.qty(), e.ledgerSum())
}

func TestUpdateLines_FalloDeAlmacenamientoRevierte(t *testing.T) {
	e := newEnv(t, false)
	order := e.create(t, 2)
	e.store.Fault = func(op string) error {
		if op == "order.lines" {
			return errors.New("conexión perdida")
		}
		return nil
	}

	_, err := e.uc.UpdateLines(context.Background(), companyID, "u1", order.ID, []orders.LineInput{{VariantID: e.variant.ID, Quantity: 4}})
	require.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.Equal(t, int64(48), e.qty())
}

func TestUpdateLines_PedidoCanceladoNoEditable(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	order := e.create(t, 2)
	_, err := e.uc.ChangeStatus(ctx, companyID, "u1", order.ID, entity.OrderCancelled)
	require.NoError(t, err)

	_, err = e.uc.UpdateLines(ctx, companyID, "u1", order.ID, []orders.LineInput{{VariantID: e.variant.ID, Quantity: 1}})
	var inv *domain.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, domain.RuleInvalidTransition, inv.Rule)
}

func TestUpdateLines_OtraEmpresaEsNotFound(t *testing.T) {
	e := newEnv(t, false)
	order := e.create(t, 2)
	_, err := e.uc.UpdateLines(context.Background(), "otra-empresa", "u1", order.ID, []orders.LineInput{{VariantID: e.variant.ID, Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ChangeStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestChangeStatus_CancelarNoDevuelveStockPorDefecto(t *testing.T) {
	e := newEnv(t, false)
	order := e.create(t, 2)

	out, err := e.uc.ChangeStatus(context.Background(), companyID, "u1", order.ID, entity.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderCancelled), out.Status)
	assert.Equal(t, int64(48), e.qty())
}

func TestChangeStatus_CancelarConRestock(t *testing.T) {
	e := newEnv(t, true)
	order := e.create(t, 2)

	_, err := e.uc.ChangeStatus(context.Background(), companyID, "u1", order.ID, entity.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(50), e.qty())
	assert.Equal(t, e.qty(), e.ledgerSum())
}

func TestChangeStatus_Transiciones(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	order := e.create(t, 1)

	_, err := e.uc.ChangeStatus(ctx, companyID, "u1", order.ID, entity.OrderPending)
	require.NoError(t, err, "mismo estado no hace nada")

	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", order.ID, entity.OrderCompleted)
	require.NoError(t, err)
	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", order.ID, entity.OrderPending)
	require.NoError(t, err)
	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", order.ID, entity.OrderCancelled)
	require.NoError(t, err)

	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", order.ID, entity.OrderCompleted)
	require.ErrorIs(t, err, domain.ErrInvariantViolation, "cancelado es terminal")
	assert.Equal(t, int64(49), e.qty(), "cambiar de estado no mueve stock")
}

func TestChangeStatusFromRequest_EstadoDesconocido(t *testing.T) {
	e := newEnv(t, false)
	order := e.create(t, 1)
	_, err := e.uc.ChangeStatusFromRequest(context.Background(), companyID, "u1", order.ID, dto.ChangeStatusRequest{Status: "ENVIADO"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
