package inventory

import (
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SortForLocking ordena items por (variante, bodega). Todas las transacciones toman los bloqueos de
// StockLevel en este orden, así dos documentos con las mismas variantes no se bloquean en cruz.
func SortForLocking[T any](items []T, key func(T) entity.StockKey) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]).Less(key(items[j]))
	})
}

// OrderTotal Σ cantidad × precio histórico.
func OrderTotal(lines []entity.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// PurchaseTotal Σ cantidad × costo histórico.
func PurchaseTotal(lines []entity.PurchaseLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ValidateOrderLines exige al menos una línea, variante informada, cantidad positiva y precio no negativo.
func ValidateOrderLines(lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return &domain.InvariantError{Rule: domain.RuleEmptyDocument, Detail: "el pedido no tiene líneas"}
	}
	for i, l := range lines {
		if l.VariantID == "" {
			return domain.Invariant(domain.RuleEmptyDocument, "línea %d sin variante", i+1)
		}
		if l.Quantity <= 0 {
			return domain.Invariant(domain.RuleNonPositiveQuantity, "línea %d: cantidad %d", i+1, l.Quantity)
		}
		if l.UnitPrice.IsNegative() {
			return domain.Invariant(domain.RuleNonPositiveQuantity, "línea %d: precio negativo", i+1)
		}
	}
	return nil
}

// ValidatePurchaseLines mismas reglas para compras.
func ValidatePurchaseLines(lines []entity.PurchaseLine) error {
	if len(lines) == 0 {
		return &domain.InvariantError{Rule: domain.RuleEmptyDocument, Detail: "la compra no tiene líneas"}
	}
	for i, l := range lines {
		if l.VariantID == "" {
			return domain.Invariant(domain.RuleEmptyDocument, "línea %d sin variante", i+1)
		}
		if l.Quantity <= 0 {
			return domain.Invariant(domain.RuleNonPositiveQuantity, "línea %d: cantidad %d", i+1, l.Quantity)
		}
		if l.UnitCost.IsNegative() {
			return domain.Invariant(domain.RuleNonPositiveQuantity, "línea %d: costo negativo", i+1)
		}
	}
	return nil
}
