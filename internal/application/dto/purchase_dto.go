package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest línea de compra con el costo unitario pactado con el proveedor.
type PurchaseLineRequest struct {
	VariantID string          `json:"variant_id" validate:"required,uuid"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	WarehouseID string                `json:"warehouse_id" validate:"omitempty,uuid"`
	SupplierID  string                `json:"supplier_id" validate:"omitempty,uuid"`
	Status      string                `json:"status" validate:"omitempty,oneof=PENDING RECEIVED"`
	Lines       []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdatePurchaseLinesRequest body para PUT /api/purchases/:id/lines.
type UpdatePurchaseLinesRequest struct {
	Lines []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseLineResponse línea persistida.
type PurchaseLineResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"variant_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PurchaseResponse compra con sus líneas.
type PurchaseResponse struct {
	ID          string                 `json:"id"`
	CompanyID   string                 `json:"company_id"`
	WarehouseID string                 `json:"warehouse_id"`
	SupplierID  string                 `json:"supplier_id,omitempty"`
	Status      string                 `json:"status"`
	Total       decimal.Decimal        `json:"total"`
	Lines       []PurchaseLineResponse `json:"lines"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// PurchaseListResponse lista paginada de compras.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
