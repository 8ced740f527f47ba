package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
// Por empresa puede existir como máximo una bodega activa marcada como principal; la regla se valida
// al escribir (no con un índice único) porque depende de Active.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Location  string
	IsPrimary bool
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CountsAsPrimary indica si la bodega ocupa el lugar de principal de su empresa.
func (w *Warehouse) CountsAsPrimary() bool {
	return w != nil && w.Active && w.IsPrimary
}
