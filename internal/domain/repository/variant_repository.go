package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// VariantRepository define el puerto de persistencia para ProductVariant (DIP).
// No expone cantidades: el stock solo se consulta por StockLevelRepository.
type VariantRepository interface {
	Create(ctx context.Context, variant *entity.ProductVariant) error
	GetByID(ctx context.Context, companyID, id string) (*entity.ProductVariant, error)
	GetBySKU(ctx context.Context, companyID, sku string) (*entity.ProductVariant, error)
	// UpdateCost aplica la política de último costo al recibir una compra.
	UpdateCost(ctx context.Context, companyID, id string, cost decimal.Decimal) error
}
