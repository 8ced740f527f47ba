// Package memory implementa los repositorios en memoria con el mismo contrato transaccional que
// postgres: cada Run trabaja sobre una copia del estado y solo la publica si fn no devuelve error.
// Las transacciones se serializan, lo que equivale a bloquear todas las filas que tocan.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type levelKey struct {
	companyID string
	entity.StockKey
}

type state struct {
	warehouses    map[string]entity.Warehouse
	variants      map[string]entity.ProductVariant
	levels        map[levelKey]entity.StockLevel
	movements     []entity.Movement
	orders        map[string]entity.Order
	orderLines    map[string][]entity.OrderLine
	purchases     map[string]entity.Purchase
	purchaseLines map[string][]entity.PurchaseLine
}

func newState() *state {
	return &state{
		warehouses:    map[string]entity.Warehouse{},
		variants:      map[string]entity.ProductVariant{},
		levels:        map[levelKey]entity.StockLevel{},
		orders:        map[string]entity.Order{},
		orderLines:    map[string][]entity.OrderLine{},
		purchases:     map[string]entity.Purchase{},
		purchaseLines: map[string][]entity.PurchaseLine{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	c.movements = make([]entity.Movement, len(s.movements))
	copy(c.movements, s.movements)
	for k, v := range s.orders {
		v.Lines = nil
		c.orders[k] = v
	}
	for k, v := range s.orderLines {
		c.orderLines[k] = append([]entity.OrderLine(nil), v...)
	}
	for k, v := range s.purchases {
		v.Lines = nil
		c.purchases[k] = v
	}
	for k, v := range s.purchaseLines {
		c.purchaseLines[k] = append([]entity.PurchaseLine(nil), v...)
	}
	return c
}

// Store estado comprometido y runner de transacciones.
type Store struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	committed *state

	// Fault, si no es nil, se consulta antes de cada escritura con el nombre de la operación
	// ("stock.save", "movement.create", ...). Permite simular fallos del almacenamiento en tests.
	Fault func(op string) error
}

// New crea un store vacío.
func New() *Store {
	return &Store{committed: newState()}
}

// Run ejecuta fn en una transacción. Si fn devuelve error el estado no cambia; los errores que no
// son de negocio se envuelven en *domain.TransactionError como hace el runner de postgres.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return &domain.TransactionError{Op: "begin", Err: err}
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.repos(work)); err != nil {
		if domain.IsBusinessError(err) {
			return err
		}
		return &domain.TransactionError{Op: "run", Err: err}
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

func (s *Store) repos(st *state) repository.TxRepos {
	return repository.TxRepos{
		StockLevels: &stockLevelRepo{store: s, st: st},
		Movements:   &movementRepo{store: s, st: st},
		Variants:    &variantRepo{store: s, st: st},
		Warehouses:  &warehouseRepo{store: s, st: st},
		Orders:      &orderRepo{store: s, st: st},
		Purchases:   &purchaseRepo{store: s, st: st},
	}
}

func (s *Store) fault(op string) error {
	if s.Fault == nil {
		return nil
	}
	return s.Fault(op)
}

// Levels devuelve una copia de todos los saldos comprometidos, ordenados por (variante, bodega).
func (s *Store) Levels() []entity.StockLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockLevel, 0, len(s.committed.levels))
	for _, l := range s.committed.levels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// Movements devuelve una copia de todos los movimientos comprometidos en orden de inserción.
func (s *Store) Movements() []entity.Movement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Movement(nil), s.committed.movements...)
}

// Quantity saldo comprometido de un par; 0 si no existe la fila.
func (s *Store) Quantity(companyID, variantID, warehouseID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed.levels[levelKey{companyID, entity.StockKey{VariantID: variantID, WarehouseID: warehouseID}}].Quantity
}
