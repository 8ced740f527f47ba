package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus estado de una compra a proveedor.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseReceived  PurchaseStatus = "RECEIVED"
	PurchaseCancelled PurchaseStatus = "CANCELLED"
)

// ParsePurchaseStatus valida un estado recibido como texto.
func ParsePurchaseStatus(s string) (PurchaseStatus, error) {
	st := PurchaseStatus(s)
	switch st {
	case PurchasePending, PurchaseReceived, PurchaseCancelled:
		return st, nil
	}
	return "", fmt.Errorf("estado de compra desconocido: %q", s)
}

// CanTransitionTo transiciones permitidas: Pending → Received, Pending → Cancelled,
// Received → Cancelled. Cancelled es terminal y Received → Pending se rechaza porque
// permitiría recibir dos veces la misma mercancía.
func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	switch s {
	case PurchasePending:
		return next == PurchaseReceived || next == PurchaseCancelled
	case PurchaseReceived:
		return next == PurchaseCancelled
	case PurchaseCancelled:
		return false
	}
	return false
}

// Purchase cabecera de una compra.
type Purchase struct {
	ID          string
	CompanyID   string
	WarehouseID string
	SupplierID  string
	Status      PurchaseStatus
	Total       decimal.Decimal
	Lines       []PurchaseLine
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseLine línea de compra con el costo unitario histórico.
type PurchaseLine struct {
	ID         string
	PurchaseID string
	VariantID  string
	Quantity   int64
	UnitCost   decimal.Decimal
}

// Subtotal cantidad × costo histórico.
func (l PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(l.Quantity))
}
