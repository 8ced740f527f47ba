package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

func TestInsufficientStockError_EsSentinelaYConservaDetalle(t *testing.T) {
	err := fmt.Errorf("pedido: %w", &domain.InsufficientStockError{VariantID: "v", WarehouseID: "w", Available: 50, Requested: 1000})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(50), ise.Available)
	assert.Equal(t, int64(1000), ise.Requested)
	assert.Contains(t, err.Error(), "disponible 50")
}

func TestNotFound_EsErrNotFound(t *testing.T) {
	err := domain.NotFound("bodega", "w-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "bodega w-1 no encontrado", err.Error())
}

func TestInvariant_ReglaYDetalle(t *testing.T) {
	err := domain.Invariant(domain.RuleSecondPrimary, "ya existe %s", "Principal")
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	var ie *domain.InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, domain.RuleSecondPrimary, ie.Rule)
	assert.Equal(t, "invariante violada: segunda_bodega_principal: ya existe Principal", err.Error())
	assert.Equal(t, "invariante violada: x", (&domain.InvariantError{Rule: "x"}).Error())
}

func TestTransactionError_UnwrapYSentinela(t *testing.T) {
	cause := errors.New("conexión perdida")
	err := &domain.TransactionError{Op: "stock.save", Err: cause}

	assert.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.ErrorIs(t, err, cause)
}

func TestIsBusinessError(t *testing.T) {
	assert.True(t, domain.IsBusinessError(domain.ErrDuplicate))
	assert.True(t, domain.IsBusinessError(fmt.Errorf("x: %w", domain.ErrInvalidInput)))
	assert.True(t, domain.IsBusinessError(&domain.InsufficientStockError{}))
	assert.True(t, domain.IsBusinessError(&domain.TransactionError{Op: "x", Err: errors.New("y")}))
	assert.False(t, domain.IsBusinessError(errors.New("driver: bad connection")))
	assert.False(t, domain.IsBusinessError(nil))
}
