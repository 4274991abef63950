package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
// Active aplica la misma regla que en productos: una bodega desactivada
// no acepta operaciones que agreguen stock.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	City      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
