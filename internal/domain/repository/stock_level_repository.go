package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockLevelRepository define el puerto para consultar/actualizar el saldo por bodega+variante.
// Las escrituras solo ocurren dentro de una transacción, a través del StockEngine.
type StockLevelRepository interface {
	// Get lectura sin bloqueo; devuelve nil si la fila no existe.
	Get(ctx context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si no existe devuelve un saldo en cero sin crearlo.
	GetForUpdate(ctx context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error)
	// LockOrCreate crea la fila en cero si falta y la devuelve bloqueada.
	LockOrCreate(ctx context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error)
	Save(ctx context.Context, level *entity.StockLevel) error
	ListByWarehouse(ctx context.Context, companyID, warehouseID string) ([]*entity.StockLevel, error)
	ListByVariant(ctx context.Context, companyID, variantID string) ([]*entity.StockLevel, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.StockLevel, error)
}
