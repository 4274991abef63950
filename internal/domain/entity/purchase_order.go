package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de una orden de compra.
type OrderStatus string

// Estados de orden de compra. completed y cancelled son terminales:
// ninguna transición sale de ellos y la orden queda inmutable.
const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid verifica que el estado pertenezca a la enumeración.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal indica si el estado no admite más transiciones.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransition indica si la transición s -> to está permitida:
// draft -> {confirmed, completed, cancelled}, confirmed -> {completed, cancelled}.
// Completar desde draft está permitido (recepción directa sin confirmación).
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() || !to.Valid() || s == to {
		return false
	}
	switch s {
	case OrderStatusDraft:
		return to == OrderStatusConfirmed || to == OrderStatusCompleted || to == OrderStatusCancelled
	case OrderStatusConfirmed:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	}
	return false
}

// ParseOrderStatus convierte un string externo en OrderStatus validado.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	return st, st.Valid()
}

// PurchaseOrder representa una orden de compra a un proveedor.
// SupplierID se resuelve desde el producto al crear la orden, nunca lo aporta
// el caller. Notes guarda el motivo de cancelación cuando aplica.
type PurchaseOrder struct {
	ID         string
	SupplierID string
	OrderDate  time.Time
	Status     OrderStatus
	Notes      string
	Items      []PurchaseOrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderItem es una línea de la orden: producto, cantidad y precio
// unitario pactado. El modelo admite varias líneas por orden.
type PurchaseOrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int64
	Price     decimal.Decimal
}

// Total devuelve el valor total de la orden (suma de cantidad * precio por línea).
func (o *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}
