package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const stockLevelColumns = `company_id, variant_id, warehouse_id, quantity, updated_at`

func scanStockLevel(row pgx.Row) (*entity.StockLevel, error) {
	var s entity.StockLevel
	if err := row.Scan(&s.CompanyID, &s.VariantID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el saldo actual sin bloquear. nil si el par nunca tuvo movimientos.
func (r *StockLevelRepo) Get(ctx context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error) {
	query := `SELECT ` + stockLevelColumns + `
		FROM stock_levels WHERE company_id = $1 AND variant_id = $2 AND warehouse_id = $3`
	s, err := scanStockLevel(r.q.QueryRow(ctx, query, companyID, variantID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE). Sin fila devuelve cero.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error) {
	query := `SELECT ` + stockLevelColumns + `
		FROM stock_levels WHERE company_id = $1 AND variant_id = $2 AND warehouse_id = $3
		FOR UPDATE`
	s, err := scanStockLevel(r.q.QueryRow(ctx, query, companyID, variantID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{CompanyID: companyID, VariantID: variantID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return s, nil
}

// LockOrCreate inserta la fila en cero si no existe y luego la bloquea. Dos primeras entradas
// concurrentes al mismo par no pueden crear la fila dos veces.
func (r *StockLevelRepo) LockOrCreate(ctx context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error) {
	insert := `
		INSERT INTO stock_levels (company_id, variant_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (variant_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, companyID, variantID, warehouseID); err != nil {
		return nil, fmt.Errorf("create stock level: %w", err)
	}
	s, err := r.GetForUpdate(ctx, companyID, variantID, warehouseID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save persiste la cantidad de una fila ya bloqueada.
func (r *StockLevelRepo) Save(ctx context.Context, level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (company_id, variant_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (variant_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		WHERE stock_levels.company_id = EXCLUDED.company_id`
	_, err := r.q.Exec(ctx, query, level.CompanyID, level.VariantID, level.WarehouseID, level.Quantity, level.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invariant(domain.RuleNonPositiveQuantity, "saldo negativo %d", level.Quantity)
		}
		return fmt.Errorf("save stock level: %w", err)
	}
	return nil
}

func (r *StockLevelRepo) list(ctx context.Context, where string, args ...any) ([]*entity.StockLevel, error) {
	query := `SELECT ` + stockLevelColumns + ` FROM stock_levels WHERE ` + where + ` ORDER BY variant_id, warehouse_id`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockLevel{}
	for rows.Next() {
		s, err := scanStockLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListByWarehouse saldos de una bodega.
func (r *StockLevelRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string) ([]*entity.StockLevel, error) {
	return r.list(ctx, "company_id = $1 AND warehouse_id = $2", companyID, warehouseID)
}

// ListByVariant saldos de una variante en todas las bodegas.
func (r *StockLevelRepo) ListByVariant(ctx context.Context, companyID, variantID string) ([]*entity.StockLevel, error) {
	return r.list(ctx, "company_id = $1 AND variant_id = $2", companyID, variantID)
}

// ListByCompany todos los saldos de la empresa.
func (r *StockLevelRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.StockLevel, error) {
	return r.list(ctx, "company_id = $1", companyID)
}
