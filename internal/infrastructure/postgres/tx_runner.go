package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/almacen-api/internal/application/purchase"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Ensure TxRunner implementa los runners del motor de stock y de órdenes.
var _ stock.TxRunner = (*TxRunner)(nil)
var _ purchase.OrderTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con un
// lock_timeout acotado: la espera por una fila de stock contendida nunca es
// indefinida, expira como ErrBusy y el caller reintenta.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool y el tiempo máximo de espera de locks.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con los repos del motor de stock
// atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.setLockTimeout(ctx, tx); err != nil {
		return err
	}

	if err := fn(NewStockBalanceRepository(tx), NewStockMovementRepository(tx)); err != nil {
		return mapLockErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReadOnly inicia una transacción de solo lectura en REPEATABLE READ: las
// lecturas dentro de fn comparten un snapshot estable tomado al inicio, en
// lugar del snapshot por sentencia de READ COMMITTED. No fija lock_timeout
// porque una tx de solo lectura no toma locks de fila.
func (r *TxRunner) RunReadOnly(ctx context.Context, fn func(
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockBalanceRepository(tx), NewStockMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit read-only transaction: %w", err)
	}
	return nil
}

// RunOrder inicia una transacción con los repos que necesita la terminación
// de órdenes de compra (balances + movimientos + órdenes + productos).
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
	orders repository.PurchaseOrderRepository,
	products repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.setLockTimeout(ctx, tx); err != nil {
		return err
	}

	err = fn(
		NewStockBalanceRepository(tx),
		NewStockMovementRepository(tx),
		NewPurchaseOrderRepository(tx),
		NewProductRepository(tx),
	)
	if err != nil {
		return mapLockErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// setLockTimeout acota la espera de locks de fila dentro de la tx (SET LOCAL
// expira con la transacción).
func (r *TxRunner) setLockTimeout(ctx context.Context, tx Querier) error {
	if r.lockTimeout <= 0 {
		return nil
	}
	_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds()))
	if err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}
	return nil
}
