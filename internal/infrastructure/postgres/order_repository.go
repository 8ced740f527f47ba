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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos y líneas sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, company_id, warehouse_id, COALESCE(customer_id::text, ''), status, total,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	if err := row.Scan(&o.ID, &o.CompanyID, &o.WarehouseID, &o.CustomerID, &o.Status, &o.Total,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta la cabecera; las líneas van por CreateLines.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (id, company_id, warehouse_id, customer_id, status, total, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.CompanyID, o.WarehouseID, nullIfEmpty(o.CustomerID), string(o.Status), o.Total,
		nullIfEmpty(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) get(ctx context.Context, companyID, id, suffix string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE company_id = $1 AND id = $2` + suffix
	o, err := scanOrder(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetByID cabecera del pedido o nil.
func (r *OrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate cabecera bloqueada (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

// Update actualiza estado y total.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET status = $3, total = $4, updated_at = $5
		WHERE company_id = $1 AND id = $2`,
		o.CompanyID, o.ID, string(o.Status), o.Total, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("pedido", o.ID)
	}
	return nil
}

// ListLines líneas actuales del pedido.
func (r *OrderRepo) ListLines(ctx context.Context, orderID string) ([]entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, variant_id, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	lines := []entity.OrderLine{}
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.VariantID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// DeleteLines borra las líneas (los movimientos ya escritos quedan en el Kardex).
func (r *OrderRepo) DeleteLines(ctx context.Context, orderID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return nil
}

// CreateLines inserta las líneas conservando su orden.
func (r *OrderRepo) CreateLines(ctx context.Context, orderID string, lines []entity.OrderLine) error {
	for i, l := range lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, variant_id, quantity, unit_price, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, orderID, l.VariantID, l.Quantity, l.UnitPrice, i)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

// List pedidos de la empresa, más recientes primero.
func (r *OrderRepo) List(ctx context.Context, companyID string, f repository.DocumentFilter) ([]*entity.Order, error) {
	query, args := documentListQuery("orders", orderColumns, companyID, f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	list := []*entity.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// documentListQuery arma el SELECT paginado común a pedidos y compras.
func documentListQuery(table, columns, companyID string, f repository.DocumentFilter) (string, []any) {
	query := `SELECT ` + columns + ` FROM ` + table + ` WHERE company_id = $1`
	args := []any{companyID}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		query += fmt.Sprintf(" AND warehouse_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id"
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return query, args
}
