package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del libro de movimientos (reportes).
// Los campos vacíos no filtran.
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	Reason      entity.MovementReason
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos. Es append-only: no expone Update ni Delete, y la lectura se usa
// para reportes, nunca para recalcular balances en el camino de escritura.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// SumByProductWarehouse devuelve la suma con signo de todos los movimientos
	// del par (entradas - salidas). Usado solo por Reconcile.
	SumByProductWarehouse(ctx context.Context, productID, warehouseID string) (int64, error)
}
