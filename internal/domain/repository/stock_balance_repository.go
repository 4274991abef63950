package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockBalanceRepository define el puerto para consultar y mutar existencias
// por (producto, bodega). La mutación ocurre siempre dentro de la transacción
// del caller (TxRunner); este puerto no abre transacciones propias.
type StockBalanceRepository interface {
	// Get devuelve la existencia actual; si la fila no existe devuelve un
	// balance con cantidad 0 (ausencia == no stockeado).
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila para update (SELECT ... FOR UPDATE) antes de
	// leer. Solo válido dentro de una transacción. Si el par no tiene fila no
	// hay nada que bloquear: devuelve cantidad 0 sin lock, por eso las
	// escrituras van siempre por ApplyDelta (aditivo) y no por un write
	// absoluto.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	// ApplyDelta suma delta a la cantidad del par, creando la fila si no
	// existe, y devuelve el balance resultante. La suma es atómica a nivel de
	// fila: dos escritores concurrentes sobre un par sin fila previa quedan
	// serializados por el insert y ninguno pisa al otro.
	ApplyDelta(ctx context.Context, productID, warehouseID string, delta int64) (*entity.StockBalance, error)
	// Delete elimina la fila del par; se invoca cuando una salida deja la
	// cantidad exactamente en 0 (la asociación se corta, no se deja en cero).
	Delete(ctx context.Context, productID, warehouseID string) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockBalance, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockBalance, error)
}
