package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Datos base para pruebas y demos. Escriben directo en el estado comprometido.

// SeedWarehouse crea una bodega activa.
func (s *Store) SeedWarehouse(companyID, name string, primary bool) *entity.Warehouse {
	now := time.Now().UTC()
	w := entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		IsPrimary: primary,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.committed.warehouses[w.ID] = w
	s.mu.Unlock()
	return &w
}

// SeedVariant crea una variante con precio y costo de referencia.
func (s *Store) SeedVariant(companyID, sku string, price, cost decimal.Decimal) *entity.ProductVariant {
	now := time.Now().UTC()
	v := entity.ProductVariant{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: uuid.New().String(),
		SKU:       sku,
		Name:      sku,
		Price:     price,
		Cost:      cost,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.committed.variants[v.ID] = v
	s.mu.Unlock()
	return &v
}

// SeedStock deja qty unidades en el par con un movimiento de ajuste que lo respalda,
// de modo que saldo y Kardex quedan de acuerdo.
func (s *Store) SeedStock(companyID, variantID, warehouseID string, qty int64) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	k := levelKey{companyID, entity.StockKey{VariantID: variantID, WarehouseID: warehouseID}}
	level := s.committed.levels[k]
	level.CompanyID, level.VariantID, level.WarehouseID = companyID, variantID, warehouseID
	delta := qty - level.Quantity
	level.Quantity = qty
	level.UpdatedAt = now
	s.committed.levels[k] = level
	if delta == 0 {
		return
	}
	s.committed.movements = append(s.committed.movements, entity.Movement{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		VariantID:   variantID,
		WarehouseID: warehouseID,
		Kind:        entity.MovementKindAdjustment,
		Quantity:    delta,
		OccurredAt:  now,
		Note:        "saldo inicial",
	})
}

// ForceQuantity cambia el saldo sin escribir movimiento. Simula una deriva entre saldo y Kardex.
func (s *Store) ForceQuantity(companyID, variantID, warehouseID string, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := levelKey{companyID, entity.StockKey{VariantID: variantID, WarehouseID: warehouseID}}
	level := s.committed.levels[k]
	level.CompanyID, level.VariantID, level.WarehouseID = companyID, variantID, warehouseID
	level.Quantity = qty
	level.UpdatedAt = time.Now().UTC()
	s.committed.levels[k] = level
}
