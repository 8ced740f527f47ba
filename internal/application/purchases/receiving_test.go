package purchases_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/purchases"
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
	engine  *inventory.StockEngine
	uc      *purchases.ReceivingUseCase
	variant *entity.ProductVariant
	wh      *entity.Warehouse
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	engine := inventory.NewStockEngine(zerolog.Nop(), inventory.NopMetrics{})
	return &env{
		store:   store,
		engine:  engine,
		uc:      purchases.NewReceivingUseCase(store, engine, zerolog.Nop()),
		variant: store.SeedVariant(companyID, "CAM-M-AZ", decimal.NewFromInt(50000), decimal.NewFromInt(20000)),
		wh:      store.SeedWarehouse(companyID, "Principal", true),
	}
}

func (e *env) qty() int64 { return e.store.Quantity(companyID, e.variant.ID, e.wh.ID) }

func (e *env) cost(t *testing.T) decimal.Decimal {
	t.Helper()
	var cost decimal.Decimal
	require.NoError(t, e.store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		v, err := repos.Variants.GetByID(ctx, companyID, e.variant.ID)
		if err != nil {
			return err
		}
		cost = v.Cost
		return nil
	}))
	return cost
}

func (e *env) create(t *testing.T, status entity.PurchaseStatus, qty int64, cost int64) *dto.PurchaseResponse {
	t.Helper()
	out, err := e.uc.Create(context.Background(), purchases.CreateInput{
		CompanyID: companyID,
		UserID:    "u1",
		Status:    status,
		Lines:     []purchases.LineInput{{VariantID: e.variant.ID, Quantity: qty, UnitCost: decimal.NewFromInt(cost)}},
	})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / ChangeStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PendienteNoMueveStock(t *testing.T) {
	e := newEnv(t)
	out := e.create(t, "", 10, 18000)

	assert.Equal(t, string(entity.PurchasePending), out.Status)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(180000)))
	assert.Equal(t, int64(0), e.qty())
}

func TestCreate_RecibidaIngresaStockYActualizaCosto(t *testing.T) {
	e := newEnv(t)
	e.create(t, entity.PurchaseReceived, 10, 18000)

	assert.Equal(t, int64(10), e.qty())
	assert.True(t, e.cost(t).Equal(decimal.NewFromInt(18000)), "política de último costo")

	movs := e.store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementKindPurchase, movs[0].Kind)
	require.NotNil(t, movs[0].UnitCost)
	assert.True(t, movs[0].UnitCost.Equal(decimal.NewFromInt(18000)))
}

func TestChangeStatus_PendienteARecibidaIngresa(t *testing.T) {
	e := newEnv(t)
	p := e.create(t, entity.PurchasePending, 10, 18000)

	out, err := e.uc.ChangeStatus(context.Background(), companyID, "u1", p.ID, entity.PurchaseReceived)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseReceived), out.Status)
	assert.Equal(t, int64(10), e.qty())
}

func TestChangeStatus_RecibidaACanceladaRetiraStock(t *testing.T) {
	e := newEnv(t)
	p := e.create(t, entity.PurchaseReceived, 10, 18000)

	_, err := e.uc.ChangeStatus(context.Background(), companyID, "u1", p.ID, entity.PurchaseCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.qty())
}

func TestChangeStatus_CancelarFallaSiLaMercanciaYaSalio(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.create(t, entity.PurchaseReceived, 10, 18000)

	sales := orders.NewFulfillmentUseCase(e.store, e.engine, false, zerolog.Nop())
	_, err := sales.Create(ctx, orders.CreateInput{
		CompanyID: companyID,
		Lines:     []orders.LineInput{{VariantID: e.variant.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", p.ID, entity.PurchaseCancelled)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient, "no se recorta a cero en silencio")
	assert.Equal(t, int64(6), insufficient.Available)
	assert.Equal(t, int64(10), insufficient.Requested)

	got, err := e.uc.Get(ctx, companyID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseReceived), got.Status)
	assert.Equal(t, int64(6), e.qty())
}

func TestChangeStatus_TransicionesInvalidas(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.create(t, entity.PurchaseReceived, 1, 100)

	_, err := e.uc.ChangeStatus(ctx, companyID, "u1", p.ID, entity.PurchasePending)
	require.ErrorIs(t, err, domain.ErrInvariantViolation, "recibida → pendiente se rechaza")

	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", p.ID, entity.PurchaseReceived)
	require.NoError(t, err, "mismo estado no hace nada")
	assert.Equal(t, int64(1), e.qty())

	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", p.ID, entity.PurchaseCancelled)
	require.NoError(t, err)
	_, err = e.uc.ChangeStatus(ctx, companyID, "u1", p.ID, entity.PurchaseReceived)
	require.ErrorIs(t, err, domain.ErrInvariantViolation, "cancelada es terminal")
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateLines
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateLines_PendienteSoloReemplazaLineas(t *testing.T) {
	e := newEnv(t)
	p := e.create(t, entity.PurchasePending, 10, 18000)

	out, err := e.uc.UpdateLines(context.Background(), companyID, "u1", p.ID,
		[]purchases.LineInput{{VariantID: e.variant.ID, Quantity: 12, UnitCost: decimal.NewFromInt(17000)}})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, int64(12), out.Lines[0].Quantity)
	assert.Equal(t, int64(0), e.qty())
	assert.Empty(t, e.store.Movements())
}

func TestUpdateLines_RecibidaRevierteYAplica(t *testing.T) {
	e := newEnv(t)
	p := e.create(t, entity.PurchaseReceived, 10, 18000)

	_, err := e.uc.UpdateLines(context.Background(), companyID, "u1", p.ID,
		[]purchases.LineInput{{VariantID: e.variant.ID, Quantity: 7, UnitCost: decimal.NewFromInt(19000)}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.qty())
	assert.True(t, e.cost(t).Equal(decimal.NewFromInt(19000)))

	var sum int64
	for _, m := range e.store.Movements() {
		sum += m.Quantity
	}
	assert.Equal(t, int64(7), sum)
}

func TestUpdateLines_CanceladaNoEditable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.create(t, entity.PurchasePending, 1, 100)
	_, err := e.uc.ChangeStatus(ctx, companyID, "u1", p.ID, entity.PurchaseCancelled)
	require.NoError(t, err)

	_, err = e.uc.UpdateLines(ctx, companyID, "u1", p.ID, []purchases.LineInput{{VariantID: e.variant.ID, Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestList_FiltraPorEstado(t *testing.T) {
	e := newEnv(t)
	e.create(t, entity.PurchasePending, 1, 100)
	e.create(t, entity.PurchaseReceived, 1, 100)

	out, err := e.uc.List(context.Background(), companyID, repository.DocumentFilter{Status: string(entity.PurchaseReceived)})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, string(entity.PurchaseReceived), out.Items[0].Status)
}
