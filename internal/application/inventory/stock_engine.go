package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StockEngine contiene las primitivas de mutación de saldo. Nunca abre ni confirma transacciones:
// siempre recibe repositorios ya ligados a la transacción del caller.
type StockEngine struct {
	logger  zerolog.Logger
	metrics Metrics
	now     func() time.Time
}

// NewStockEngine construye el motor. metrics puede ser nil.
func NewStockEngine(logger zerolog.Logger, metrics Metrics) *StockEngine {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &StockEngine{logger: logger, metrics: metrics, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (e *StockEngine) WithClock(now func() time.Time) *StockEngine {
	e.now = now
	return e
}

// Now hora del motor; los casos de uso la usan para fechar documentos de forma consistente.
func (e *StockEngine) Now() time.Time { return e.now().UTC() }

// Increase suma qty al saldo del par, creando la fila en cero si no existe. Devuelve el nuevo saldo.
func (e *StockEngine) Increase(ctx context.Context, levels repository.StockLevelRepository, companyID, variantID, warehouseID string, qty int64) (int64, error) {
	if qty <= 0 {
		return 0, domain.Invariant(domain.RuleNonPositiveQuantity, "incremento de %d", qty)
	}
	// Crea la fila si falta y la deja bloqueada (INSERT ON CONFLICT DO NOTHING + SELECT FOR UPDATE)
	level, err := levels.LockOrCreate(ctx, companyID, variantID, warehouseID)
	if err != nil {
		return 0, err
	}
	level.Quantity += qty
	level.UpdatedAt = e.Now()
	if err := levels.Save(ctx, level); err != nil {
		return 0, err
	}
	return level.Quantity, nil
}

// Decrease resta qty del saldo del par. Una fila inexistente cuenta como disponible=0.
// Si no alcanza devuelve *domain.InsufficientStockError y no modifica nada.
func (e *StockEngine) Decrease(ctx context.Context, levels repository.StockLevelRepository, companyID, variantID, warehouseID string, qty int64) (int64, error) {
	if qty <= 0 {
		return 0, domain.Invariant(domain.RuleNonPositiveQuantity, "decremento de %d", qty)
	}
	// Bloquea la fila (SELECT FOR UPDATE) para evitar que dos salidas lean el mismo saldo
	level, err := levels.GetForUpdate(ctx, companyID, variantID, warehouseID)
	if err != nil {
		return 0, err
	}
	if level.Quantity < qty {
		e.logger.Warn().
			Str("company_id", companyID).
			Str("variant_id", variantID).
			Str("warehouse_id", warehouseID).
			Int64("available", level.Quantity).
			Int64("requested", qty).
			Msg("stock insuficiente")
		return 0, &domain.InsufficientStockError{
			VariantID:   variantID,
			WarehouseID: warehouseID,
			Available:   level.Quantity,
			Requested:   qty,
		}
	}
	level.Quantity -= qty
	level.UpdatedAt = e.Now()
	if err := levels.Save(ctx, level); err != nil {
		return 0, err
	}
	return level.Quantity, nil
}

// RecordMovement inserta una fila del Kardex. Completa ID y fecha si vienen vacíos.
func (e *StockEngine) RecordMovement(ctx context.Context, movements repository.MovementRepository, m *entity.Movement) error {
	if m.Quantity == 0 {
		return &domain.InvariantError{Rule: domain.RuleZeroMovement, Detail: "movimiento con cantidad 0"}
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = e.Now()
	}
	if err := movements.Create(ctx, m); err != nil {
		return err
	}
	e.metrics.MovementRecorded(m.Kind, m.Quantity)
	return nil
}

// StockLine efecto de stock de una línea de documento. Quantity lleva signo: positiva entra, negativa sale.
type StockLine struct {
	VariantID   string
	WarehouseID string
	Quantity    int64
	Kind        entity.MovementKind
	UnitCost    *decimal.Decimal
	ReferenceID string
	Note        string
}

func (l StockLine) key() entity.StockKey {
	return entity.StockKey{VariantID: l.VariantID, WarehouseID: l.WarehouseID}
}

// Post aplica cada línea con Increase/Decrease y escribe su movimiento en la misma transacción.
// Las líneas se procesan en orden de bloqueo; el primer error aborta y el caller hace rollback.
func (e *StockEngine) Post(ctx context.Context, repos repository.TxRepos, companyID, userID string, lines []StockLine) ([]*entity.Movement, error) {
	ordered := make([]StockLine, len(lines))
	copy(ordered, lines)
	domaininv.SortForLocking(ordered, StockLine.key)

	out := make([]*entity.Movement, 0, len(ordered))
	for _, l := range ordered {
		var err error
		switch {
		case l.Quantity > 0:
			_, err = e.Increase(ctx, repos.StockLevels, companyID, l.VariantID, l.WarehouseID, l.Quantity)
		case l.Quantity < 0:
			_, err = e.Decrease(ctx, repos.StockLevels, companyID, l.VariantID, l.WarehouseID, -l.Quantity)
		default:
			err = &domain.InvariantError{Rule: domain.RuleZeroMovement, Detail: "línea con cantidad 0"}
		}
		if err != nil {
			var insufficient *domain.InsufficientStockError
			if errors.As(err, &insufficient) {
				e.metrics.InsufficientStock(l.Kind)
			}
			return nil, err
		}
		// Fecha tomada con el lock del par ya adquirido: sigue el orden real de aplicación.
		m := &entity.Movement{
			CompanyID:   companyID,
			VariantID:   l.VariantID,
			WarehouseID: l.WarehouseID,
			Kind:        l.Kind,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			ReferenceID: l.ReferenceID,
			OccurredAt:  e.Now(),
			Note:        l.Note,
			CreatedBy:   userID,
		}
		if err := e.RecordMovement(ctx, repos.Movements, m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Reverse deshace el efecto de lines: aplica cada una con signo contrario y deja un movimiento
// compensatorio. Los movimientos originales quedan intactos en el Kardex.
func (e *StockEngine) Reverse(ctx context.Context, repos repository.TxRepos, companyID, userID string, lines []StockLine) ([]*entity.Movement, error) {
	inverse := make([]StockLine, len(lines))
	for i, l := range lines {
		l.Quantity = -l.Quantity
		if l.Note == "" {
			l.Note = "reverso"
		}
		inverse[i] = l
	}
	return e.Post(ctx, repos, companyID, userID, inverse)
}
