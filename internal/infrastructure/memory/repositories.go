package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ── Stock levels ────────────────────────────────────────────────────────────

type stockLevelRepo struct {
	store *Store
	st    *state
}

func key(companyID, variantID, warehouseID string) levelKey {
	return levelKey{companyID, entity.StockKey{VariantID: variantID, WarehouseID: warehouseID}}
}

func (r *stockLevelRepo) Get(_ context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error) {
	l, ok := r.st.levels[key(companyID, variantID, warehouseID)]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *stockLevelRepo) GetForUpdate(ctx context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error) {
	l, err := r.Get(ctx, companyID, variantID, warehouseID)
	if err != nil || l != nil {
		return l, err
	}
	return &entity.StockLevel{CompanyID: companyID, VariantID: variantID, WarehouseID: warehouseID}, nil
}

func (r *stockLevelRepo) LockOrCreate(_ context.Context, companyID, variantID, warehouseID string) (*entity.StockLevel, error) {
	k := key(companyID, variantID, warehouseID)
	l, ok := r.st.levels[k]
	if !ok {
		if err := r.store.fault("stock.create"); err != nil {
			return nil, err
		}
		l = entity.StockLevel{CompanyID: companyID, VariantID: variantID, WarehouseID: warehouseID, UpdatedAt: time.Now().UTC()}
		r.st.levels[k] = l
	}
	return &l, nil
}

func (r *stockLevelRepo) Save(_ context.Context, level *entity.StockLevel) error {
	if err := r.store.fault("stock.save"); err != nil {
		return err
	}
	if level.Quantity < 0 {
		// equivalente al CHECK (quantity >= 0) de la tabla
		return domain.Invariant(domain.RuleNonPositiveQuantity, "saldo negativo %d", level.Quantity)
	}
	r.st.levels[key(level.CompanyID, level.VariantID, level.WarehouseID)] = *level
	return nil
}

func (r *stockLevelRepo) list(match func(entity.StockLevel) bool) []*entity.StockLevel {
	out := []*entity.StockLevel{}
	for _, l := range r.st.levels {
		if match(l) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

func (r *stockLevelRepo) ListByWarehouse(_ context.Context, companyID, warehouseID string) ([]*entity.StockLevel, error) {
	return r.list(func(l entity.StockLevel) bool { return l.CompanyID == companyID && l.WarehouseID == warehouseID }), nil
}

func (r *stockLevelRepo) ListByVariant(_ context.Context, companyID, variantID string) ([]*entity.StockLevel, error) {
	return r.list(func(l entity.StockLevel) bool { return l.CompanyID == companyID && l.VariantID == variantID }), nil
}

func (r *stockLevelRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.StockLevel, error) {
	return r.list(func(l entity.StockLevel) bool { return l.CompanyID == companyID }), nil
}

// ── Movements ───────────────────────────────────────────────────────────────

type movementRepo struct {
	store *Store
	st    *state
}

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	if err := r.store.fault("movement.create"); err != nil {
		return err
	}
	r.st.movements = append(r.st.movements, *m)
	return nil
}

func (r *movementRepo) find(companyID, id string) int {
	for i := range r.st.movements {
		if r.st.movements[i].ID == id && r.st.movements[i].CompanyID == companyID {
			return i
		}
	}
	return -1
}

func (r *movementRepo) GetByID(_ context.Context, companyID, id string) (*entity.Movement, error) {
	i := r.find(companyID, id)
	if i < 0 {
		return nil, nil
	}
	m := r.st.movements[i]
	return &m, nil
}

func (r *movementRepo) List(_ context.Context, companyID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	out := []*entity.Movement{}
	for _, m := range r.st.movements {
		switch {
		case m.CompanyID != companyID,
			f.VariantID != "" && m.VariantID != f.VariantID,
			f.WarehouseID != "" && m.WarehouseID != f.WarehouseID,
			f.Kind != "" && m.Kind != f.Kind,
			f.ReferenceID != "" && m.ReferenceID != f.ReferenceID,
			f.From != nil && m.OccurredAt.Before(*f.From),
			f.To != nil && m.OccurredAt.After(*f.To),
			!f.IncludeDeleted && m.Hidden():
			continue
		}
		m := m
		out = append(out, &m)
	}
	// El slice ya está en orden de inserción (las transacciones se aplican en serie).
	if !f.AppliedOrder {
		sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *movementRepo) UpdateNote(_ context.Context, companyID, id, note string) error {
	i := r.find(companyID, id)
	if i < 0 {
		return domain.NotFound("movimiento", id)
	}
	r.st.movements[i].Note = note
	return nil
}

func (r *movementRepo) SoftDelete(_ context.Context, companyID, id string, at time.Time) error {
	i := r.find(companyID, id)
	if i < 0 {
		return domain.NotFound("movimiento", id)
	}
	if r.st.movements[i].DeletedAt == nil {
		r.st.movements[i].DeletedAt = &at
	}
	return nil
}

func (r *movementRepo) SumByStockKey(_ context.Context, companyID string) (map[entity.StockKey]int64, error) {
	out := map[entity.StockKey]int64{}
	for _, m := range r.st.movements {
		if m.CompanyID != companyID {
			continue
		}
		out[entity.StockKey{VariantID: m.VariantID, WarehouseID: m.WarehouseID}] += m.Quantity
	}
	return out, nil
}

// ── Variants ────────────────────────────────────────────────────────────────

type variantRepo struct {
	store *Store
	st    *state
}

func (r *variantRepo) Create(_ context.Context, v *entity.ProductVariant) error {
	for _, existing := range r.st.variants {
		if existing.CompanyID == v.CompanyID && existing.SKU == v.SKU {
			return domain.ErrDuplicate
		}
	}
	r.st.variants[v.ID] = *v
	return nil
}

func (r *variantRepo) GetByID(_ context.Context, companyID, id string) (*entity.ProductVariant, error) {
	v, ok := r.st.variants[id]
	if !ok || v.CompanyID != companyID {
		return nil, nil
	}
	return &v, nil
}

func (r *variantRepo) GetBySKU(_ context.Context, companyID, sku string) (*entity.ProductVariant, error) {
	for _, v := range r.st.variants {
		if v.CompanyID == companyID && v.SKU == sku {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (r *variantRepo) UpdateCost(_ context.Context, companyID, id string, cost decimal.Decimal) error {
	v, ok := r.st.variants[id]
	if !ok || v.CompanyID != companyID {
		return domain.NotFound("variante", id)
	}
	v.Cost = cost
	v.UpdatedAt = time.Now().UTC()
	r.st.variants[id] = v
	return nil
}

// ── Warehouses ──────────────────────────────────────────────────────────────

type warehouseRepo struct {
	store *Store
	st    *state
}

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	if err := r.store.fault("warehouse.create"); err != nil {
		return err
	}
	r.st.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, companyID, id string) (*entity.Warehouse, error) {
	w, ok := r.st.warehouses[id]
	if !ok || w.CompanyID != companyID {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	existing, ok := r.st.warehouses[w.ID]
	if !ok || existing.CompanyID != w.CompanyID {
		return domain.NotFound("bodega", w.ID)
	}
	r.st.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	out := []*entity.Warehouse{}
	for _, w := range r.st.warehouses {
		if w.CompanyID == companyID {
			w := w
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *warehouseRepo) Delete(_ context.Context, companyID, id string) error {
	w, ok := r.st.warehouses[id]
	if !ok || w.CompanyID != companyID {
		return domain.NotFound("bodega", id)
	}
	delete(r.st.warehouses, id)
	return nil
}

func (r *warehouseRepo) GetPrimary(_ context.Context, companyID string) (*entity.Warehouse, error) {
	for _, w := range r.st.warehouses {
		if w.CompanyID == companyID && w.CountsAsPrimary() {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (r *warehouseRepo) LockDirectory(context.Context, string) error { return nil }

func (r *warehouseRepo) HasStockHistory(_ context.Context, companyID, id string) (bool, error) {
	for k := range r.st.levels {
		if k.companyID == companyID && k.WarehouseID == id {
			return true, nil
		}
	}
	for _, m := range r.st.movements {
		if m.CompanyID == companyID && m.WarehouseID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *warehouseRepo) ListCompanyIDs(context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, w := range r.st.warehouses {
		if !seen[w.CompanyID] {
			seen[w.CompanyID] = true
			out = append(out, w.CompanyID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ── Orders ──────────────────────────────────────────────────────────────────

type orderRepo struct {
	store *Store
	st    *state
}

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	if err := r.store.fault("order.create"); err != nil {
		return err
	}
	h := *o
	h.Lines = nil
	r.st.orders[o.ID] = h
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, companyID, id string) (*entity.Order, error) {
	o, ok := r.st.orders[id]
	if !ok || o.CompanyID != companyID {
		return nil, nil
	}
	return &o, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *orderRepo) Update(_ context.Context, o *entity.Order) error {
	if _, ok := r.st.orders[o.ID]; !ok {
		return domain.NotFound("pedido", o.ID)
	}
	h := *o
	h.Lines = nil
	r.st.orders[o.ID] = h
	return nil
}

func (r *orderRepo) ListLines(_ context.Context, orderID string) ([]entity.OrderLine, error) {
	return append([]entity.OrderLine{}, r.st.orderLines[orderID]...), nil
}

func (r *orderRepo) DeleteLines(_ context.Context, orderID string) error {
	delete(r.st.orderLines, orderID)
	return nil
}

func (r *orderRepo) CreateLines(_ context.Context, orderID string, lines []entity.OrderLine) error {
	if err := r.store.fault("order.lines"); err != nil {
		return err
	}
	r.st.orderLines[orderID] = append(r.st.orderLines[orderID], lines...)
	return nil
}

func (r *orderRepo) List(_ context.Context, companyID string, f repository.DocumentFilter) ([]*entity.Order, error) {
	out := []*entity.Order{}
	for _, o := range r.st.orders {
		if o.CompanyID != companyID ||
			(f.Status != "" && string(o.Status) != f.Status) ||
			(f.WarehouseID != "" && o.WarehouseID != f.WarehouseID) {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// ── Purchases ───────────────────────────────────────────────────────────────

type purchaseRepo struct {
	store *Store
	st    *state
}

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	if err := r.store.fault("purchase.create"); err != nil {
		return err
	}
	h := *p
	h.Lines = nil
	r.st.purchases[p.ID] = h
	return nil
}

func (r *purchaseRepo) GetByID(_ context.Context, companyID, id string) (*entity.Purchase, error) {
	p, ok := r.st.purchases[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	return &p, nil
}

func (r *purchaseRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *purchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	if _, ok := r.st.purchases[p.ID]; !ok {
		return domain.NotFound("compra", p.ID)
	}
	h := *p
	h.Lines = nil
	r.st.purchases[p.ID] = h
	return nil
}

func (r *purchaseRepo) ListLines(_ context.Context, purchaseID string) ([]entity.PurchaseLine, error) {
	return append([]entity.PurchaseLine{}, r.st.purchaseLines[purchaseID]...), nil
}

func (r *purchaseRepo) DeleteLines(_ context.Context, purchaseID string) error {
	delete(r.st.purchaseLines, purchaseID)
	return nil
}

func (r *purchaseRepo) CreateLines(_ context.Context, purchaseID string, lines []entity.PurchaseLine) error {
	r.st.purchaseLines[purchaseID] = append(r.st.purchaseLines[purchaseID], lines...)
	return nil
}

func (r *purchaseRepo) List(_ context.Context, companyID string, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	out := []*entity.Purchase{}
	for _, p := range r.st.purchases {
		if p.CompanyID != companyID ||
			(f.Status != "" && string(p.Status) != f.Status) ||
			(f.WarehouseID != "" && p.WarehouseID != f.WarehouseID) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// page aplica limit/offset; limit <= 0 devuelve todo desde offset.
func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
