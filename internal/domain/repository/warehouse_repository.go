package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error)
	Delete(ctx context.Context, companyID, id string) error
	// GetPrimary devuelve la bodega principal activa o nil.
	GetPrimary(ctx context.Context, companyID string) (*entity.Warehouse, error)
	// LockDirectory serializa los cambios de bodega principal de una empresa hasta el fin de la transacción.
	LockDirectory(ctx context.Context, companyID string) error
	// HasStockHistory indica si existe algún saldo o movimiento que referencie la bodega.
	HasStockHistory(ctx context.Context, companyID, id string) (bool, error)
	// ListCompanyIDs empresas con al menos una bodega (para la reconciliación programada).
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
