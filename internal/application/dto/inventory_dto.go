package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest body para POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	VariantID   string           `json:"variant_id" validate:"required,uuid"`
	WarehouseID string           `json:"warehouse_id" validate:"required,uuid"`
	Type        string           `json:"type" validate:"required,oneof=ENTRADA SALIDA AJUSTE"`
	Quantity    int64            `json:"quantity" validate:"gt=0"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Note        string           `json:"note" validate:"max=500"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	VariantID       string `json:"variant_id" validate:"required,uuid"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required,uuid"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,uuid,nefield=FromWarehouseID"`
	Quantity        int64  `json:"quantity" validate:"gt=0"`
	Note            string `json:"note" validate:"max=500"`
}

// TransferResponse resultado del traslado: saldos finales de ambas bodegas y los dos movimientos.
type TransferResponse struct {
	OriginQuantity      int64              `json:"origin_quantity"`
	DestinationQuantity int64              `json:"destination_quantity"`
	Movements           []MovementResponse `json:"movements"`
}

// UpdateMovementNoteRequest body para PATCH /api/inventory/movements/:id.
type UpdateMovementNoteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// MovementResponse fila del Kardex.
type MovementResponse struct {
	ID          string           `json:"id"`
	VariantID   string           `json:"variant_id"`
	WarehouseID string           `json:"warehouse_id"`
	Kind        string           `json:"kind"`
	Quantity    int64            `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceID string           `json:"reference_id,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Note        string           `json:"note"`
	CreatedBy   string           `json:"created_by,omitempty"`
	Hidden      bool             `json:"hidden"`
}

// MovementListRequest filtros de GET /api/inventory/movements.
type MovementListRequest struct {
	VariantID      string     `query:"variant_id" validate:"omitempty,uuid"`
	WarehouseID    string     `query:"warehouse_id" validate:"omitempty,uuid"`
	Kind           string     `query:"kind" validate:"omitempty,oneof=PURCHASE SALE ADJUSTMENT TRANSFER"`
	ReferenceID    string     `query:"reference_id" validate:"omitempty,uuid"`
	From           *time.Time `query:"-"`
	To             *time.Time `query:"-"`
	IncludeDeleted bool       `query:"include_deleted"`
	PageRequest
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// KardexEntry movimiento con saldo acumulado y costo promedio.
type KardexEntry struct {
	MovementResponse
	Balance     int64           `json:"balance"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// KardexResponse Kardex de una variante en una bodega.
type KardexResponse struct {
	CompanyID     string        `json:"company_id"`
	VariantID     string        `json:"variant_id"`
	SKU           string        `json:"sku"`
	VariantName   string        `json:"variant_name"`
	WarehouseID   string        `json:"warehouse_id"`
	WarehouseName string        `json:"warehouse_name"`
	Entries       []KardexEntry `json:"entries"`
	FinalBalance  int64         `json:"final_balance"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// StockLevelResponse saldo actual de un par (variante, bodega).
type StockLevelResponse struct {
	VariantID   string    `json:"variant_id"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DriftItem par cuyo saldo no coincide con la suma del Kardex.
type DriftItem struct {
	VariantID   string `json:"variant_id"`
	WarehouseID string `json:"warehouse_id"`
	Balance     int64  `json:"balance"`
	LedgerSum   int64  `json:"ledger_sum"`
	Difference  int64  `json:"difference"`
}

// ReconciliationReport resultado de comparar saldos contra movimientos.
type ReconciliationReport struct {
	CompanyID    string      `json:"company_id"`
	CheckedPairs int         `json:"checked_pairs"`
	Drift        []DriftItem `json:"drift"`
	CheckedAt    time.Time   `json:"checked_at"`
}

// Consistent indica si no hubo diferencias.
func (r *ReconciliationReport) Consistent() bool { return len(r.Drift) == 0 }

// AdjustmentResponse saldo resultante del ajuste y el movimiento escrito.
type AdjustmentResponse struct {
	Balance  int64            `json:"balance"`
	Movement MovementResponse `json:"movement"`
}
