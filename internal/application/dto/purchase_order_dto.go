package dto

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de orden de compra en requests.
type OrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
// El proveedor no se envía: se resuelve desde los productos de las líneas.
type CreatePurchaseOrderRequest struct {
	Items     []OrderItemRequest `json:"items"`
	OrderDate time.Time          `json:"order_date"`
	Status    string             `json:"status"` // draft | confirmed
}

// UpdatePurchaseOrderRequest body para PUT /api/purchase-orders/:id.
type UpdatePurchaseOrderRequest struct {
	Items     []OrderItemRequest `json:"items"`
	OrderDate time.Time          `json:"order_date"`
	Status    string             `json:"status"` // draft | confirmed
}

// CompletePurchaseOrderRequest body para POST /api/purchase-orders/:id/complete.
type CompletePurchaseOrderRequest struct {
	WarehouseID string `json:"warehouse_id"`
}

// CancelPurchaseOrderRequest body para POST /api/purchase-orders/:id/cancel.
type CancelPurchaseOrderRequest struct {
	Note string `json:"note"`
}

// OrderItemResponse línea de orden de compra en respuestas.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// PurchaseOrderResponse orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID         string              `json:"id"`
	SupplierID string              `json:"supplier_id"`
	OrderDate  time.Time           `json:"order_date"`
	Status     string              `json:"status"`
	Notes      string              `json:"notes,omitempty"`
	Total      decimal.Decimal     `json:"total"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ToPurchaseOrderResponse convierte la entidad a DTO.
func ToPurchaseOrderResponse(o *entity.PurchaseOrder) *PurchaseOrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return &PurchaseOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		OrderDate:  o.OrderDate,
		Status:     string(o.Status),
		Notes:      o.Notes,
		Total:      o.Total(),
		Items:      items,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
