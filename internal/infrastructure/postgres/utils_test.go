package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación de errores de PostgreSQL
// ──────────────────────────────────────────────────────────────────────────────

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("timeout")))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, isCheckViolation(fmt.Errorf("save: %w", &pgconn.PgError{Code: "23514"})))
	assert.False(t, isCheckViolation(&pgconn.PgError{Code: "23505"}))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	p := nullIfEmpty("abc")
	if assert.NotNil(t, p) {
		assert.Equal(t, "abc", *p)
	}
	assert.Equal(t, "", derefString(nil))
	assert.Equal(t, "abc", derefString(p))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta de listados de documentos
// ──────────────────────────────────────────────────────────────────────────────

func TestDocumentListQuery_SoloEmpresaYPaginacionPorDefecto(t *testing.T) {
	q, args := documentListQuery("orders", "id", "c-1", repository.DocumentFilter{})
	assert.Equal(t, "SELECT id FROM orders WHERE company_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3", q)
	assert.Equal(t, []any{"c-1", 20, 0}, args)
}

func TestDocumentListQuery_FiltrosNumeradosEnOrden(t *testing.T) {
	q, args := documentListQuery("purchases", "id, status", "c-1", repository.DocumentFilter{
		Status: "RECEIVED", WarehouseID: "w-1", Limit: 5, Offset: 10,
	})
	assert.Contains(t, q, "AND status = $2 AND warehouse_id = $3")
	assert.Contains(t, q, "LIMIT $4 OFFSET $5")
	assert.Equal(t, []any{"c-1", "RECEIVED", "w-1", 5, 10}, args)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta del Kardex
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementListQuery_KardexOrdenaPorSeq(t *testing.T) {
	q, args := movementListQuery("c-1", repository.MovementFilter{
		VariantID: "v-1", WarehouseID: "w-1", IncludeDeleted: true, AppliedOrder: true,
	})
	assert.Contains(t, q, "AND variant_id = $2 AND warehouse_id = $3")
	assert.NotContains(t, q, "deleted_at IS NULL")
	assert.True(t, strings.HasSuffix(q, " ORDER BY seq"), q)
	assert.Equal(t, []any{"c-1", "v-1", "w-1"}, args)
}

func TestMovementListQuery_ListadoOrdenaPorFecha(t *testing.T) {
	q, args := movementListQuery("c-1", repository.MovementFilter{Kind: "SALE", Limit: 10})
	assert.Contains(t, q, "AND kind = $2 AND deleted_at IS NULL ORDER BY occurred_at, seq LIMIT $3 OFFSET $4")
	assert.Equal(t, []any{"c-1", "SALE", 10, 0}, args)
}
