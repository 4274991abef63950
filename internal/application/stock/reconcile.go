package stock

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ReconcileResult compara el balance materializado contra la suma del libro
// de movimientos para un par (producto, bodega).
type ReconcileResult struct {
	ProductID   string
	WarehouseID string
	Balance     int64
	LedgerSum   int64
	Consistent  bool
}

// Reconcile recalcula la suma con signo del libro para el par y la compara
// con el balance almacenado. Es una operación de diagnóstico: nunca participa
// del camino de escritura normal (los balances se mantienen incrementalmente,
// no se recalculan). Se usa para verificar la invariante "suma del libro ==
// balance" y para que un caller confirme no-aplicación tras un fallo de
// persistencia en pleno commit.
func (e *Engine) Reconcile(ctx context.Context, productID, warehouseID string) (*ReconcileResult, error) {
	var result *ReconcileResult
	// Transacción de solo lectura con snapshot estable: un commit concurrente
	// entre las dos lecturas no puede producir un falso Consistent=false.
	err := e.txRunner.RunReadOnly(ctx, func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
	) error {
		balance, err := balances.Get(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		sum, err := movements.SumByProductWarehouse(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		result = &ReconcileResult{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Balance:     balance.Quantity,
			LedgerSum:   sum,
			Consistent:  balance.Quantity == sum,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
