package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// SupplierID referencia al proveedor habitual; se usa para resolver el
// proveedor de una orden de compra al crearla.
// Active controla si el producto admite operaciones de stock: un producto
// desactivado conserva su historial pero rechaza nuevos movimientos.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	SupplierID  string
	CategoryID  string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
