package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de pedido. Si UnitPrice es nil se toma el precio de referencia de la variante.
type OrderLineRequest struct {
	VariantID string           `json:"variant_id" validate:"required,uuid"`
	Quantity  int64            `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateOrderRequest body para POST /api/orders. Sin warehouse_id se usa la bodega principal.
type CreateOrderRequest struct {
	WarehouseID string             `json:"warehouse_id" validate:"omitempty,uuid"`
	CustomerID  string             `json:"customer_id" validate:"omitempty,uuid"`
	Status      string             `json:"status" validate:"omitempty,oneof=PENDING COMPLETED"`
	Lines       []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderLinesRequest body para PUT /api/orders/:id/lines.
type UpdateOrderLinesRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ChangeStatusRequest body para PATCH /api/orders/:id/status y /api/purchases/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderLineResponse línea persistida.
type OrderLineResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"variant_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse pedido con sus líneas.
type OrderResponse struct {
	ID          string              `json:"id"`
	CompanyID   string              `json:"company_id"`
	WarehouseID string              `json:"warehouse_id"`
	CustomerID  string              `json:"customer_id,omitempty"`
	Status      string              `json:"status"`
	Total       decimal.Decimal     `json:"total"`
	Lines       []OrderLineResponse `json:"lines"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
