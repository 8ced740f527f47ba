package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// txOptions read committed con bloqueos de fila explícitos (SELECT ... FOR UPDATE).
var txOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, logger zerolog.Logger) *TxRunner {
	return &TxRunner{pool: pool, logger: logger}
}

// Tx transacción abierta con sus repositorios. El caller es dueño del Commit o Rollback.
type Tx struct {
	tx     pgx.Tx
	repos  repository.TxRepos
	logger zerolog.Logger
}

// Begin abre una transacción.
func (r *TxRunner) Begin(ctx context.Context) (*Tx, error) {
	tx, err := r.pool.BeginTx(ctx, txOptions)
	if err != nil {
		r.logger.Error().Err(err).Msg("begin transaction")
		return nil, &domain.TransactionError{Op: "begin", Err: err}
	}
	return &Tx{tx: tx, repos: NewTxRepos(tx), logger: r.logger}, nil
}

// Repos repositorios ligados a esta transacción.
func (t *Tx) Repos() repository.TxRepos { return t.repos }

// Commit confirma la transacción.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		t.logger.Error().Err(err).Msg("commit transaction")
		return &domain.TransactionError{Op: "commit", Err: err}
	}
	return nil
}

// Rollback descarta la transacción. Llamarlo tras Commit no tiene efecto.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return &domain.TransactionError{Op: "rollback", Err: err}
	}
	return nil
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de negocio vuelven tal cual; cualquier otro se registra y se envuelve en *domain.TransactionError.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx.Repos()); err != nil {
		if domain.IsBusinessError(err) {
			return err
		}
		r.logger.Error().Err(err).Msg("rollback por fallo de almacenamiento")
		return &domain.TransactionError{Op: "run", Err: err}
	}
	return tx.Commit(ctx)
}

// NewTxRepos construye todos los repositorios sobre q (pool o tx).
func NewTxRepos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		StockLevels: NewStockLevelRepository(q),
		Movements:   NewMovementRepository(q),
		Variants:    NewVariantRepository(q),
		Warehouses:  NewWarehouseRepository(q),
		Orders:      NewOrderRepository(q),
		Purchases:   NewPurchaseRepository(q),
	}
}
