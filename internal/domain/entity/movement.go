package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del Kardex.
type MovementKind string

const (
	MovementKindPurchase   MovementKind = "PURCHASE"   // recepción de compra (o su reverso)
	MovementKindSale       MovementKind = "SALE"       // salida por pedido (o su reverso)
	MovementKindAdjustment MovementKind = "ADJUSTMENT" // ajuste manual
	MovementKindTransfer   MovementKind = "TRANSFER"   // traslado entre bodegas
)

// ParseMovementKind valida un tipo recibido como texto.
func ParseMovementKind(s string) (MovementKind, error) {
	k := MovementKind(s)
	switch k {
	case MovementKindPurchase, MovementKindSale, MovementKindAdjustment, MovementKindTransfer:
		return k, nil
	}
	return "", fmt.Errorf("tipo de movimiento desconocido: %q", s)
}

// Movement es una fila inmutable del libro de movimientos (Kardex).
// Quantity es positiva para entradas y negativa para salidas. Solo Note puede editarse después de
// creada; DeletedAt la oculta de los listados sin revertir su efecto en el stock.
type Movement struct {
	ID          string
	CompanyID   string
	VariantID   string
	WarehouseID string
	Kind        MovementKind
	Quantity    int64
	UnitCost    *decimal.Decimal
	ReferenceID string // pedido, compra o bodega contraparte del traslado
	OccurredAt  time.Time
	Note        string
	CreatedBy   string
	DeletedAt   *time.Time
}

// Inbound indica si el movimiento suma existencias.
func (m *Movement) Inbound() bool { return m.Quantity > 0 }

// Hidden indica si el movimiento fue ocultado del historial.
func (m *Movement) Hidden() bool { return m.DeletedAt != nil }

// AdjustmentType dirección de un ajuste manual.
type AdjustmentType string

const (
	AdjustmentEntrada AdjustmentType = "ENTRADA"
	AdjustmentSalida  AdjustmentType = "SALIDA"
	AdjustmentAjuste  AdjustmentType = "AJUSTE"
)

// ParseAdjustmentType valida el tipo de ajuste manual.
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	t := AdjustmentType(s)
	switch t {
	case AdjustmentEntrada, AdjustmentSalida, AdjustmentAjuste:
		return t, nil
	}
	return "", fmt.Errorf("tipo de ajuste desconocido: %q", s)
}
