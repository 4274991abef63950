package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de
// compra y sus líneas. GetByID devuelve la orden con sus líneas cargadas.
type PurchaseOrderRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetByIDForUpdate bloquea la cabecera (SELECT ... FOR UPDATE) para
	// serializar transiciones de estado concurrentes. Solo dentro de una tx.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// Update actualiza cabecera (fecha, estado, notas).
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	// ReplaceItems reemplaza todas las líneas de la orden.
	ReplaceItems(ctx context.Context, orderID string, items []entity.PurchaseOrderItem) error
	// UpdateStatus cambia el estado y las notas de la orden.
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, notes string, updatedAt time.Time) error
	List(ctx context.Context, status entity.OrderStatus, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
