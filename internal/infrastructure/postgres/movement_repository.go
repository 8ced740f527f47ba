package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del Kardex sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, company_id, variant_id, warehouse_id, kind, quantity, unit_cost,
	reference_id::text, occurred_at, note, created_by::text, deleted_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m         entity.Movement
		reference *string
		createdBy *string
	)
	if err := row.Scan(&m.ID, &m.CompanyID, &m.VariantID, &m.WarehouseID, &m.Kind, &m.Quantity, &m.UnitCost,
		&reference, &m.OccurredAt, &m.Note, &createdBy, &m.DeletedAt); err != nil {
		return nil, err
	}
	m.ReferenceID = derefString(reference)
	m.CreatedBy = derefString(createdBy)
	return &m, nil
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, company_id, variant_id, warehouse_id, kind, quantity, unit_cost,
			reference_id, occurred_at, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.VariantID, m.WarehouseID, string(m.Kind), m.Quantity, m.UnitCost,
		nullIfEmpty(m.ReferenceID), m.OccurredAt, m.Note, nullIfEmpty(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento de la empresa (oculto o no).
func (r *MovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE company_id = $1 AND id = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List filtra movimientos en orden cronológico. Limit <= 0 no pagina.
func (r *MovementRepo) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	query, args := movementListQuery(companyID, f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// UpdateNote cambia la nota; es la única columna editable.
func (r *MovementRepo) UpdateNote(ctx context.Context, companyID, id, note string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE movements SET note = $3 WHERE company_id = $1 AND id = $2`, companyID, id, note)
	if err != nil {
		return fmt.Errorf("update movement note: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("movimiento", id)
	}
	return nil
}

// SoftDelete marca deleted_at. No toca stock_levels.
func (r *MovementRepo) SoftDelete(ctx context.Context, companyID, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movements SET deleted_at = COALESCE(deleted_at, $3)
		WHERE company_id = $1 AND id = $2`, companyID, id, at)
	if err != nil {
		return fmt.Errorf("soft delete movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("movimiento", id)
	}
	return nil
}

// SumByStockKey suma con signo por par, incluidos los movimientos ocultos.
func (r *MovementRepo) SumByStockKey(ctx context.Context, companyID string) (map[entity.StockKey]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT variant_id, warehouse_id, COALESCE(SUM(quantity), 0)::bigint
		FROM movements WHERE company_id = $1
		GROUP BY variant_id, warehouse_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	defer rows.Close()
	out := map[entity.StockKey]int64{}
	for rows.Next() {
		var (
			k   entity.StockKey
			sum int64
		)
		if err := rows.Scan(&k.VariantID, &k.WarehouseID, &sum); err != nil {
			return nil, fmt.Errorf("scan movement sum: %w", err)
		}
		out[k] = sum
	}
	return out, rows.Err()
}

func movementListQuery(companyID string, f repository.MovementFilter) (string, []any) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE company_id = $1`
	args := []any{companyID}
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.VariantID != "" {
		add("variant_id = $%d", f.VariantID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if f.ReferenceID != "" {
		add("reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_at <= $%d", *f.To)
	}
	if !f.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}
	// seq se asigna con el lock del saldo tomado, así que sigue el orden real de aplicación.
	if f.AppliedOrder {
		query += " ORDER BY seq"
	} else {
		query += " ORDER BY occurred_at, seq"
	}
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return query, args
}
