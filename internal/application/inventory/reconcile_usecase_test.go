package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func TestReconcile_SinDerivaDespuesDeOperar(t *testing.T) {
	f := newFixture(t)
	movs := seedMovements(t, f)
	ledger := inventory.NewLedgerUseCase(f.store, f.engine, nil, zerolog.Nop())
	require.NoError(t, ledger.HideMovement(context.Background(), testCompanyID, movs[0].ID))

	m := &metricsMock{}
	m.On("DriftDetected", testCompanyID, 0).Once()
	uc := inventory.NewReconcileUseCase(f.store, f.engine, m, zerolog.Nop())

	report, err := uc.Reconcile(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "ocultar un movimiento no genera deriva")
	assert.Equal(t, 1, report.CheckedPairs)
	m.AssertExpectations(t)
}

func TestReconcile_DetectaDeriva(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(testCompanyID, f.variant.ID, f.wh.ID, 10)
	f.store.ForceQuantity(testCompanyID, f.variant.ID, f.wh.ID, 7)

	m := &metricsMock{}
	m.On("DriftDetected", testCompanyID, 1).Once()
	uc := inventory.NewReconcileUseCase(f.store, f.engine, m, zerolog.Nop())

	report, err := uc.Reconcile(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, report.Drift, 1)
	d := report.Drift[0]
	assert.Equal(t, int64(7), d.Balance)
	assert.Equal(t, int64(10), d.LedgerSum)
	assert.Equal(t, int64(-3), d.Difference)
	m.AssertExpectations(t)
}

func TestReconcileAll_RecorreEmpresas(t *testing.T) {
	store := memory.New()
	store.SeedWarehouse("c1", "A", true)
	store.SeedWarehouse("c2", "B", true)
	engine := inventory.NewStockEngine(zerolog.Nop(), inventory.NopMetrics{})
	uc := inventory.NewReconcileUseCase(store, engine, nil, zerolog.Nop())

	reports, err := uc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}
