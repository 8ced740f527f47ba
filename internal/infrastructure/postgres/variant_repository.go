package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo implementación de VariantRepository sobre PostgreSQL. La tabla no tiene columna de cantidad.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

const variantColumns = `id, company_id, COALESCE(product_id::text, ''), sku, name, price, cost, created_at, updated_at`

func scanVariant(row pgx.Row) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	if err := row.Scan(&v.ID, &v.CompanyID, &v.ProductID, &v.SKU, &v.Name, &v.Price, &v.Cost, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste una variante. SKU duplicado en la empresa devuelve domain.ErrDuplicate.
func (r *VariantRepo) Create(ctx context.Context, v *entity.ProductVariant) error {
	query := `
		INSERT INTO product_variants (id, company_id, product_id, sku, name, price, cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		v.ID, v.CompanyID, nullIfEmpty(v.ProductID), v.SKU, v.Name, v.Price, v.Cost, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

func (r *VariantRepo) getOne(ctx context.Context, where string, args ...any) (*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE ` + where
	v, err := scanVariant(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

// GetByID variante de la empresa o nil.
func (r *VariantRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ProductVariant, error) {
	return r.getOne(ctx, "company_id = $1 AND id = $2", companyID, id)
}

// GetBySKU variante por SKU o nil.
func (r *VariantRepo) GetBySKU(ctx context.Context, companyID, sku string) (*entity.ProductVariant, error) {
	return r.getOne(ctx, "company_id = $1 AND sku = $2", companyID, sku)
}

// UpdateCost actualiza el costo de referencia.
func (r *VariantRepo) UpdateCost(ctx context.Context, companyID, id string, cost decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE product_variants SET cost = $3, updated_at = now()
		WHERE company_id = $1 AND id = $2`, companyID, id, cost)
	if err != nil {
		return fmt.Errorf("update variant cost: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("variante", id)
	}
	return nil
}
