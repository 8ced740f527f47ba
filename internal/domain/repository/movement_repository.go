package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementFilter filtros del listado de movimientos (Kardex).
type MovementFilter struct {
	VariantID      string
	WarehouseID    string
	Kind           entity.MovementKind
	ReferenceID    string
	From, To       *time.Time
	IncludeDeleted bool
	// AppliedOrder ordena por orden de inserción (seq) en vez de occurred_at.
	// El saldo acumulado del Kardex solo es correcto en el orden en que se aplicaron los cambios.
	AppliedOrder  bool
	Limit, Offset int
}

// MovementRepository define el puerto del libro de movimientos. Solo se insertan filas;
// después de creadas únicamente cambian la nota o la marca de ocultamiento.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Movement, error)
	// List ordena por occurred_at ascendente, o por inserción con AppliedOrder.
	List(ctx context.Context, companyID string, filter MovementFilter) ([]*entity.Movement, error)
	UpdateNote(ctx context.Context, companyID, id, note string) error
	SoftDelete(ctx context.Context, companyID, id string, at time.Time) error
	// SumByStockKey suma con signo todos los movimientos de la empresa (incluidos los ocultos) por par.
	SumByStockKey(ctx context.Context, companyID string) (map[entity.StockKey]int64, error)
}
