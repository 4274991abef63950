package stock

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// todo lo que ocurre dentro de fn hace Commit junto o Rollback junto.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
	) error) error

	// RunReadOnly ejecuta fn en una transacción de solo lectura con snapshot
	// estable: todas las lecturas dentro de fn ven el mismo estado confirmado,
	// aunque otras transacciones hagan commit en el medio. Lo usa Reconcile
	// para que balance y suma del libro salgan del mismo instante.
	RunReadOnly(ctx context.Context, fn func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
	) error) error
}
