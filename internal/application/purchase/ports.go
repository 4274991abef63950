package purchase

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// OrderTxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita la terminación de una orden: la transición de
// estado y las recepciones de stock por línea hacen Commit o Rollback juntos.
type OrderTxRunner interface {
	RunOrder(ctx context.Context, fn func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
		orders repository.PurchaseOrderRepository,
		products repository.ProductRepository,
	) error) error
}
