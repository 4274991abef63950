package entity

import "time"

// StockBalance representa la existencia actual de un producto en una bodega,
// clave (product_id, warehouse_id). Es la fuente de verdad de "cuánto hay aquí
// ahora"; el porqué del cambio vive en StockMovement.
//
// Invariantes: Quantity nunca es negativa, y la fila se elimina (no se deja en
// cero) cuando una salida la lleva exactamente a 0: stock presente implica
// cantidad estrictamente positiva. En todo momento Quantity es igual a la suma
// con signo de los movimientos del par.
type StockBalance struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	UpdatedAt   time.Time
}

// Stocked indica si el producto está presente en la bodega (cantidad > 0).
func (b *StockBalance) Stocked() bool {
	return b != nil && b.Quantity > 0
}
