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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo compras y líneas sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, company_id, warehouse_id, COALESCE(supplier_id::text, ''), status, total,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	if err := row.Scan(&p.ID, &p.CompanyID, &p.WarehouseID, &p.SupplierID, &p.Status, &p.Total,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta la cabecera.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, company_id, warehouse_id, supplier_id, status, total, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.WarehouseID, nullIfEmpty(p.SupplierID), string(p.Status), p.Total,
		nullIfEmpty(p.CreatedBy), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) get(ctx context.Context, companyID, id, suffix string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE company_id = $1 AND id = $2` + suffix
	p, err := scanPurchase(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// GetByID cabecera de la compra o nil.
func (r *PurchaseRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Purchase, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate cabecera bloqueada (SELECT FOR UPDATE).
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Purchase, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

// Update actualiza estado y total.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchases SET status = $3, total = $4, updated_at = $5
		WHERE company_id = $1 AND id = $2`,
		p.CompanyID, p.ID, string(p.Status), p.Total, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("compra", p.ID)
	}
	return nil
}

// ListLines líneas actuales de la compra.
func (r *PurchaseRepo) ListLines(ctx context.Context, purchaseID string) ([]entity.PurchaseLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, variant_id, quantity, unit_cost
		FROM purchase_lines WHERE purchase_id = $1 ORDER BY position`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase lines: %w", err)
	}
	defer rows.Close()
	lines := []entity.PurchaseLine{}
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.VariantID, &l.Quantity, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// DeleteLines borra las líneas de la compra.
func (r *PurchaseRepo) DeleteLines(ctx context.Context, purchaseID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_lines WHERE purchase_id = $1`, purchaseID); err != nil {
		return fmt.Errorf("delete purchase lines: %w", err)
	}
	return nil
}

// CreateLines inserta las líneas conservando su orden.
func (r *PurchaseRepo) CreateLines(ctx context.Context, purchaseID string, lines []entity.PurchaseLine) error {
	for i, l := range lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_lines (id, purchase_id, variant_id, quantity, unit_cost, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, purchaseID, l.VariantID, l.Quantity, l.UnitCost, i)
		if err != nil {
			return fmt.Errorf("insert purchase line: %w", err)
		}
	}
	return nil
}

// List compras de la empresa, más recientes primero.
func (r *PurchaseRepo) List(ctx context.Context, companyID string, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	query, args := documentListQuery("purchases", purchaseColumns, companyID, f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	list := []*entity.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
