package entity

import "time"

// StockKey identifica una fila de StockLevel.
type StockKey struct {
	VariantID   string
	WarehouseID string
}

// StockLevel es el saldo actual de una variante en una bodega (tabla stock_levels).
// Quantity debe ser siempre igual a la suma con signo de los movimientos del par.
type StockLevel struct {
	CompanyID   string
	VariantID   string
	WarehouseID string
	Quantity    int64
	UpdatedAt   time.Time
}

// Key devuelve la clave (variante, bodega).
func (s *StockLevel) Key() StockKey {
	return StockKey{VariantID: s.VariantID, WarehouseID: s.WarehouseID}
}

// Less ordena claves por variante y luego bodega; es el orden en que se toman los bloqueos de fila.
func (k StockKey) Less(other StockKey) bool {
	if k.VariantID != other.VariantID {
		return k.VariantID < other.VariantID
	}
	return k.WarehouseID < other.WarehouseID
}
