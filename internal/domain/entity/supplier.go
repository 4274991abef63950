package entity

import "time"

// Supplier representa un proveedor de productos.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
