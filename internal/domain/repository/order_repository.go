package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DocumentFilter filtros comunes del listado de pedidos y compras.
type DocumentFilter struct {
	Status        string
	WarehouseID   string
	Limit, Offset int
}

// OrderRepository puerto de persistencia de pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Order, error)
	// GetForUpdate bloquea la cabecera para que dos ediciones no reviertan las mismas líneas.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	ListLines(ctx context.Context, orderID string) ([]entity.OrderLine, error)
	DeleteLines(ctx context.Context, orderID string) error
	CreateLines(ctx context.Context, orderID string, lines []entity.OrderLine) error
	List(ctx context.Context, companyID string, filter DocumentFilter) ([]*entity.Order, error)
}
