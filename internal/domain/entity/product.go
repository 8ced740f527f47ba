package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant es la unidad vendible (talla/color) y la unidad de control de inventario.
// Lleva precio y costo de referencia pero nunca cantidad: las existencias viven solo en StockLevel.
type ProductVariant struct {
	ID        string
	CompanyID string
	ProductID string
	SKU       string // único por empresa
	Name      string
	Price     decimal.Decimal // precio de venta de referencia
	Cost      decimal.Decimal // último costo de compra recibido
	CreatedAt time.Time
	UpdatedAt time.Time
}
