package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ResolveWarehouse valida la bodega de un documento o movimiento. Con warehouseID vacío usa la
// bodega principal activa de la empresa. Una bodega inactiva no admite movimientos nuevos.
func ResolveWarehouse(ctx context.Context, warehouses repository.WarehouseRepository, companyID, warehouseID string) (*entity.Warehouse, error) {
	var (
		wh  *entity.Warehouse
		err error
	)
	if warehouseID == "" {
		wh, err = warehouses.GetPrimary(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.NotFound("bodega principal", companyID)
		}
		return wh, nil
	}
	wh, err = warehouses.GetByID(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.NotFound("bodega", warehouseID)
	}
	if !wh.Active {
		return nil, domain.Invariant(domain.RuleInactiveWarehouse, "la bodega %s está inactiva", wh.Name)
	}
	return wh, nil
}

// ResolveVariant valida que la variante exista en la empresa.
func ResolveVariant(ctx context.Context, variants repository.VariantRepository, companyID, variantID string) (*entity.ProductVariant, error) {
	v, err := variants.GetByID(ctx, companyID, variantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("variante", variantID)
	}
	return v, nil
}
