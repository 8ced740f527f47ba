package inventory_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortForLocking_OrdenaPorVarianteYBodega(t *testing.T) {
	keys := []entity.StockKey{
		{VariantID: "b", WarehouseID: "w1"},
		{VariantID: "a", WarehouseID: "w2"},
		{VariantID: "a", WarehouseID: "w1"},
	}
	inventory.SortForLocking(keys, func(k entity.StockKey) entity.StockKey { return k })

	assert.Equal(t, []entity.StockKey{
		{VariantID: "a", WarehouseID: "w1"},
		{VariantID: "a", WarehouseID: "w2"},
		{VariantID: "b", WarehouseID: "w1"},
	}, keys)
}

func TestOrderTotal_SumaCantidadPorPrecio(t *testing.T) {
	lines := []entity.OrderLine{
		{VariantID: "v1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.50")},
		{VariantID: "v2", Quantity: 3, UnitPrice: decimal.NewFromInt(4)},
	}
	assert.True(t, decimal.RequireFromString("33").Equal(inventory.OrderTotal(lines)))
}

func TestValidateOrderLines_RechazaCantidadNoPositiva(t *testing.T) {
	err := inventory.ValidateOrderLines([]entity.OrderLine{{VariantID: "v1", Quantity: 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))

	var inv *domain.InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, domain.RuleNonPositiveQuantity, inv.Rule)
}

func TestValidatePurchaseLines_RechazaDocumentoVacio(t *testing.T) {
	err := inventory.ValidatePurchaseLines(nil)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestWeightedAverageCost(t *testing.T) {
	got := inventory.WeightedAverageCost(10, decimal.NewFromInt(100), 10, decimal.NewFromInt(200))
	assert.True(t, decimal.NewFromInt(150).Equal(got))
	assert.True(t, decimal.Zero.Equal(inventory.WeightedAverageCost(0, decimal.Zero, 0, decimal.NewFromInt(5))))
}
