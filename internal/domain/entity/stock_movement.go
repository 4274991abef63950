package entity

import (
	"errors"
	"time"
)

// ErrInvalidMovement se devuelve cuando los campos de un movimiento no pasan
// la validación de construcción (dirección, causa o cantidad inválidas).
var ErrInvalidMovement = errors.New("movimiento de stock inválido")

// MovementDirection indica el sentido de un movimiento de stock.
type MovementDirection string

// Direcciones de movimiento (enumeración cerrada).
const (
	DirectionIn  MovementDirection = "in"  // entrada
	DirectionOut MovementDirection = "out" // salida
)

// Valid verifica que la dirección pertenezca a la enumeración.
func (d MovementDirection) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// MovementReason indica la causa de negocio de un movimiento de stock.
type MovementReason string

// Causas de movimiento (enumeración cerrada).
const (
	ReasonPurchase   MovementReason = "purchase"   // recepción de orden de compra
	ReasonSale       MovementReason = "sale"       // venta
	ReasonTransfer   MovementReason = "transfer"   // traslado entre bodegas
	ReasonAdjustment MovementReason = "adjustment" // ajuste manual
	ReasonDamage     MovementReason = "damage"     // merma o daño
)

// Valid verifica que la causa pertenezca a la enumeración.
func (r MovementReason) Valid() bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonTransfer, ReasonAdjustment, ReasonDamage:
		return true
	}
	return false
}

// ParseMovementReason convierte un string externo en MovementReason validado.
func ParseMovementReason(s string) (MovementReason, bool) {
	r := MovementReason(s)
	return r, r.Valid()
}

// StockMovement es un registro inmutable del libro de movimientos: un cambio
// de cantidad y su causa. Solo el motor de stock los crea; nunca se actualizan
// ni se borran (append-only).
//
// Quantity siempre es positiva; Direction determina el signo efectivo.
type StockMovement struct {
	ID string
	// Seq lo asigna la base al insertar (BIGSERIAL) y fija el orden del libro
	// cuando dos movimientos comparten OccurredAt.
	Seq         int64
	ProductID   string
	WarehouseID string
	Direction   MovementDirection
	Reason      MovementReason
	Quantity    int64
	Note        string
	OccurredAt  time.Time
	CreatedAt   time.Time
	CreatedBy   string // actor (claims del token)
}

// NewStockMovement construye un movimiento validando dirección, causa y
// cantidad. Es el único constructor permitido.
func NewStockMovement(productID, warehouseID string, dir MovementDirection, reason MovementReason, quantity int64, note string, occurredAt time.Time) (*StockMovement, error) {
	if productID == "" || warehouseID == "" || !dir.Valid() || !reason.Valid() || quantity <= 0 {
		return nil, ErrInvalidMovement
	}
	return &StockMovement{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Direction:   dir,
		Reason:      reason,
		Quantity:    quantity,
		Note:        note,
		OccurredAt:  occurredAt,
		CreatedAt:   occurredAt,
	}, nil
}

// Signed devuelve la cantidad con el signo de la dirección
// (positiva para entradas, negativa para salidas).
func (m *StockMovement) Signed() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}
