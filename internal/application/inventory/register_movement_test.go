package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

func newRegisterUC(f *fixture) *inventory.RegisterMovementUseCase {
	return inventory.NewRegisterMovementUseCase(f.store, f.engine, zerolog.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes manuales
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_EntradaYAjusteSuman(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	ctx := context.Background()

	out, err := uc.Adjust(ctx, inventory.AdjustmentInput{
		CompanyID: testCompanyID, UserID: "u1", VariantID: f.variant.ID, WarehouseID: f.wh.ID,
		Type: entity.AdjustmentEntrada, Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.Balance)
	assert.Equal(t, int64(10), out.Movement.Quantity)
	assert.Equal(t, string(entity.MovementKindAdjustment), out.Movement.Kind)

	out, err = uc.Adjust(ctx, inventory.AdjustmentInput{
		CompanyID: testCompanyID, UserID: "u1", VariantID: f.variant.ID, WarehouseID: f.wh.ID,
		Type: entity.AdjustmentAjuste, Quantity: 2, Note: "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.Balance)
	assert.Equal(t, "conteo físico", out.Movement.Note)
	assert.Len(t, f.store.Movements(), 2, "exactamente un movimiento por ajuste")
}

func TestAdjust_SalidaSinStockFallaSinMovimiento(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	f.store.SeedStock(testCompanyID, f.variant.ID, f.wh.ID, 3)
	before := len(f.store.Movements())

	_, err := uc.Adjust(context.Background(), inventory.AdjustmentInput{
		CompanyID: testCompanyID, VariantID: f.variant.ID, WarehouseID: f.wh.ID,
		Type: entity.AdjustmentSalida, Quantity: 5,
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(3), insufficient.Available)
	assert.Equal(t, int64(5), insufficient.Requested)
	assert.Len(t, f.store.Movements(), before)
	assert.Equal(t, int64(3), f.qty())
}

func TestAdjust_SalidaEscribeCantidadNegativa(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	f.store.SeedStock(testCompanyID, f.variant.ID, f.wh.ID, 8)

	out, err := uc.Adjust(context.Background(), inventory.AdjustmentInput{
		CompanyID: testCompanyID, VariantID: f.variant.ID, WarehouseID: f.wh.ID,
		Type: entity.AdjustmentSalida, Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Balance)
	assert.Equal(t, int64(-5), out.Movement.Quantity)
}

func TestAdjust_BodegaInactivaEsInvariante(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	require.NoError(t, f.store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		f.wh.Active = false
		f.wh.IsPrimary = false
		return repos.Warehouses.Update(ctx, f.wh)
	}))

	_, err := uc.Adjust(context.Background(), inventory.AdjustmentInput{
		CompanyID: testCompanyID, VariantID: f.variant.ID, WarehouseID: f.wh.ID,
		Type: entity.AdjustmentEntrada, Quantity: 1,
	})
	var inv *domain.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, domain.RuleInactiveWarehouse, inv.Rule)
}

func TestAdjust_OtraEmpresaNoVeLaVariante(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	_, err := uc.Adjust(context.Background(), inventory.AdjustmentInput{
		CompanyID: "otra-empresa", VariantID: f.variant.ID, WarehouseID: f.wh.ID,
		Type: entity.AdjustmentEntrada, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustFromRequest_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	_, err := uc.AdjustFromRequest(context.Background(), testCompanyID, "u1", dto.AdjustmentRequest{
		VariantID: f.variant.ID, WarehouseID: f.wh.ID, Type: "REGALO", Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_MueveStockYEscribeDosMovimientos(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	dest := f.store.SeedWarehouse(testCompanyID, "Sucursal Norte", false)
	f.store.SeedStock(testCompanyID, f.variant.ID, f.wh.ID, 10)

	out, err := uc.Transfer(context.Background(), inventory.TransferInput{
		CompanyID: testCompanyID, UserID: "u1", VariantID: f.variant.ID,
		FromWarehouseID: f.wh.ID, ToWarehouseID: dest.ID, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.OriginQuantity)
	assert.Equal(t, int64(4), out.DestinationQuantity)
	require.Len(t, out.Movements, 2)

	byWarehouse := map[string]dto.MovementResponse{}
	for _, m := range out.Movements {
		byWarehouse[m.WarehouseID] = m
		assert.Equal(t, string(entity.MovementKindTransfer), m.Kind)
		require.NotNil(t, m.UnitCost)
		assert.True(t, m.UnitCost.Equal(decimal.NewFromInt(20000)), "el traslado se valora al costo de la variante")
	}
	assert.Equal(t, int64(-4), byWarehouse[f.wh.ID].Quantity)
	assert.Equal(t, dest.ID, byWarehouse[f.wh.ID].ReferenceID)
	assert.Equal(t, int64(4), byWarehouse[dest.ID].Quantity)
	assert.Equal(t, f.wh.ID, byWarehouse[dest.ID].ReferenceID)
}

func TestTransfer_SinStockNoTocaNingunaBodega(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	dest := f.store.SeedWarehouse(testCompanyID, "Sucursal Norte", false)
	f.store.SeedStock(testCompanyID, f.variant.ID, f.wh.ID, 2)

	_, err := uc.Transfer(context.Background(), inventory.TransferInput{
		CompanyID: testCompanyID, VariantID: f.variant.ID,
		FromWarehouseID: f.wh.ID, ToWarehouseID: dest.ID, Quantity: 3,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), f.qty())
	assert.Equal(t, int64(0), f.store.Quantity(testCompanyID, f.variant.ID, dest.ID))
}

func TestTransfer_MismaBodegaEsInvariante(t *testing.T) {
	f := newFixture(t)
	uc := newRegisterUC(f)
	_, err := uc.Transfer(context.Background(), inventory.TransferInput{
		CompanyID: testCompanyID, VariantID: f.variant.ID,
		FromWarehouseID: f.wh.ID, ToWarehouseID: f.wh.ID, Quantity: 1,
	})
	var inv *domain.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, domain.RuleSameWarehouseTransfer, inv.Rule)
}
