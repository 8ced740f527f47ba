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

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, company_id, name, location, is_primary, active, created_at, updated_at`

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.CompanyID, &w.Name, &w.Location, &w.IsPrimary, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (` + warehouseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		w.ID, w.CompanyID, w.Name, w.Location, w.IsPrimary, w.Active, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega de la empresa. nil si no existe o es de otra empresa.
func (r *WarehouseRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE company_id = $1 AND id = $2`
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `
		UPDATE warehouses SET name = $3, location = $4, is_primary = $5, active = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query, w.CompanyID, w.ID, w.Name, w.Location, w.IsPrimary, w.Active, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("bodega", w.ID)
	}
	return nil
}

// ListByCompany lista bodegas por empresa con paginación.
func (r *WarehouseRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + warehouseColumns + `
		FROM warehouses WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	list := []*entity.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// Delete elimina una bodega. El caso de uso verifica antes que no tenga historial.
func (r *WarehouseRepo) Delete(ctx context.Context, companyID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM warehouses WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("bodega", id)
	}
	return nil
}

// GetPrimary bodega principal activa de la empresa.
func (r *WarehouseRepo) GetPrimary(ctx context.Context, companyID string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + `
		FROM warehouses WHERE company_id = $1 AND is_primary AND active
		ORDER BY created_at LIMIT 1`
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get primary warehouse: %w", err)
	}
	return w, nil
}

// LockDirectory toma un advisory lock de transacción por empresa; se libera con el Commit/Rollback.
func (r *WarehouseRepo) LockDirectory(ctx context.Context, companyID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('warehouses:' || $1))`, companyID); err != nil {
		return fmt.Errorf("lock warehouse directory: %w", err)
	}
	return nil
}

// HasStockHistory verdadero si algún saldo o movimiento referencia la bodega.
func (r *WarehouseRepo) HasStockHistory(ctx context.Context, companyID, id string) (bool, error) {
	var used bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM stock_levels WHERE company_id = $1 AND warehouse_id = $2)
		    OR EXISTS (SELECT 1 FROM movements WHERE company_id = $1 AND warehouse_id = $2)`,
		companyID, id).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("warehouse history: %w", err)
	}
	return used, nil
}

// ListCompanyIDs empresas con bodegas registradas.
func (r *WarehouseRepo) ListCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT company_id::text FROM warehouses ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
