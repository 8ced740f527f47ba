package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de un pedido de venta.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus valida un estado recibido como texto.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	switch st {
	case OrderPending, OrderCompleted, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("estado de pedido desconocido: %q", s)
}

// CanTransitionTo aplica la máquina de estados Pending ⇄ Completed, {Pending, Completed} → Cancelled.
// Cancelled es terminal. La transición al mismo estado no es válida.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderCompleted || next == OrderCancelled
	case OrderCompleted:
		return next == OrderPending || next == OrderCancelled
	case OrderCancelled:
		return false
	}
	return false
}

// Editable indica si se pueden reemplazar las líneas del pedido.
func (s OrderStatus) Editable() bool { return s != OrderCancelled }

// Order cabecera de un pedido. El stock se descuenta al crearlo, sea Pending o Completed.
type Order struct {
	ID          string
	CompanyID   string
	WarehouseID string
	CustomerID  string
	Status      OrderStatus
	Total       decimal.Decimal
	Lines       []OrderLine
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderLine línea de pedido con el precio histórico al momento de la venta.
type OrderLine struct {
	ID        string
	OrderID   string
	VariantID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Subtotal cantidad × precio histórico.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}
