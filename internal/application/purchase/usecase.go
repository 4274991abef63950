package purchase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// UseCase implementa el ciclo de vida de órdenes de compra:
// draft -> {confirmed, cancelled}, confirmed -> {completed, cancelled}.
// Completar está permitido desde cualquier estado no terminal (recepción
// directa desde draft incluida). La terminación llama al motor de stock una
// vez por línea, dentro de la misma transacción que el cambio de estado.
type UseCase struct {
	txRunner      OrderTxRunner
	engine        *stock.Engine
	orderRepo     repository.PurchaseOrderRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	audit         ports.AuditSink
}

// NewUseCase construye el caso de uso de órdenes de compra.
func NewUseCase(
	txRunner OrderTxRunner,
	engine *stock.Engine,
	orderRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	audit ports.AuditSink,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		engine:        engine,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		audit:         audit,
	}
}

// ItemInput línea de orden: producto, cantidad y precio unitario.
type ItemInput struct {
	ProductID string
	Quantity  int64
	Price     decimal.Decimal
}

// CreateInput entrada para crear una orden. Status inicial solo puede ser
// draft o confirmed. El proveedor no se recibe: se resuelve desde el producto.
type CreateInput struct {
	Actor     string
	Items     []ItemInput
	OrderDate time.Time
	Status    entity.OrderStatus
}

// UpdateInput entrada para modificar una orden no terminal. Reemplaza las
// líneas y la cabecera. Status solo admite draft o confirmed; los estados
// terminales se alcanzan con Complete y Cancel.
type UpdateInput struct {
	Actor     string
	Items     []ItemInput
	OrderDate time.Time
	Status    entity.OrderStatus
}

// Create crea la orden en estado draft o confirmed con una o más líneas.
// Valida que los productos existan, estén activos y compartan proveedor (el
// proveedor de la orden se deriva de sus productos, no del caller).
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.PurchaseOrder, error) {
	if in.Status != entity.OrderStatusDraft && in.Status != entity.OrderStatusConfirmed {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	supplierID, err := uc.validateItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: supplierID,
		OrderDate:  orderDate,
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range in.Items {
		order.Items = append(order.Items, entity.PurchaseOrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	uc.emit(ctx, in.Actor, "order.create", order.ID, nil, map[string]any{"status": string(order.Status)})
	return order, nil
}

// Update modifica una orden mientras está en draft o confirmed. Revalida la
// actividad de los productos y reemplaza las líneas. Un intento sobre una
// orden terminal falla con ErrInvalidStateTransition sin tocar nada.
func (uc *UseCase) Update(ctx context.Context, orderID string, in UpdateInput) (*entity.PurchaseOrder, error) {
	if in.Status != entity.OrderStatusDraft && in.Status != entity.OrderStatusConfirmed {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	supplierID, err := uc.validateItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var updated *entity.PurchaseOrder
	var prevStatus entity.OrderStatus
	err = uc.txRunner.RunOrder(ctx, func(
		_ repository.StockBalanceRepository,
		_ repository.StockMovementRepository,
		orders repository.PurchaseOrderRepository,
		_ repository.ProductRepository,
	) error {
		order, err := orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status.Terminal() {
			return domain.ErrInvalidStateTransition
		}
		if order.Status != in.Status && !order.Status.CanTransition(in.Status) {
			return domain.ErrInvalidStateTransition
		}
		prevStatus = order.Status

		order.SupplierID = supplierID
		order.OrderDate = in.OrderDate
		order.Status = in.Status
		order.UpdatedAt = now
		if err := orders.Update(ctx, order); err != nil {
			return err
		}
		items := make([]entity.PurchaseOrderItem, 0, len(in.Items))
		for _, item := range in.Items {
			items = append(items, entity.PurchaseOrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		if err := orders.ReplaceItems(ctx, order.ID, items); err != nil {
			return err
		}
		order.Items = items
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, in.Actor, "order.update", orderID,
		map[string]any{"status": string(prevStatus)},
		map[string]any{"status": string(updated.Status)})
	return updated, nil
}

// Complete termina la orden: por cada línea valida el producto y llama al
// motor de stock (Receive con causa purchase y la referencia de la orden como
// nota), y deja la orden en completed. Recepciones y transición de estado
// ocurren en una sola transacción: si una línea falla, nada se aplica y la
// orden conserva su estado anterior.
func (uc *UseCase) Complete(ctx context.Context, orderID, warehouseID, actor string) (*entity.PurchaseOrder, error) {
	warehouse, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if !warehouse.Active {
		return nil, domain.ErrInactiveWarehouse
	}

	now := time.Now()
	var completed *entity.PurchaseOrder
	var prevStatus entity.OrderStatus
	err = uc.txRunner.RunOrder(ctx, func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
		orders repository.PurchaseOrderRepository,
		products repository.ProductRepository,
	) error {
		// Bloquea la cabecera para serializar terminaciones concurrentes de la
		// misma orden: la segunda verá el estado terminal y fallará.
		order, err := orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Status.CanTransition(entity.OrderStatusCompleted) {
			return domain.ErrInvalidStateTransition
		}
		prevStatus = order.Status

		note := "orden de compra " + order.ID
		// Mismo orden global de bloqueo que los traslados: las líneas se
		// reciben ordenadas por producto para que dos terminaciones
		// concurrentes que comparten productos no se bloqueen en cruz.
		items := append([]entity.PurchaseOrderItem(nil), order.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		for _, item := range items {
			product, err := products.GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			if !product.Active {
				return domain.ErrInactiveProduct
			}
			if _, err := uc.engine.ReceiveInTx(ctx, balances, movements,
				item.ProductID, warehouseID, item.Quantity,
				entity.ReasonPurchase, note, actor, now); err != nil {
				return err
			}
		}

		if err := orders.UpdateStatus(ctx, order.ID, entity.OrderStatusCompleted, order.Notes, now); err != nil {
			return err
		}
		order.Status = entity.OrderStatusCompleted
		order.UpdatedAt = now
		completed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, actor, "order.complete", orderID,
		map[string]any{"status": string(prevStatus)},
		map[string]any{"status": string(entity.OrderStatusCompleted), "warehouse_id": warehouseID})
	return completed, nil
}

// Cancel deja la orden en cancelled guardando el motivo. Exige nota no vacía
// y estado no terminal. No toca balances ni el libro de movimientos.
func (uc *UseCase) Cancel(ctx context.Context, orderID, note, actor string) (*entity.PurchaseOrder, error) {
	if note == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var cancelled *entity.PurchaseOrder
	var prevStatus entity.OrderStatus
	err := uc.txRunner.RunOrder(ctx, func(
		_ repository.StockBalanceRepository,
		_ repository.StockMovementRepository,
		orders repository.PurchaseOrderRepository,
		_ repository.ProductRepository,
	) error {
		order, err := orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Status.CanTransition(entity.OrderStatusCancelled) {
			return domain.ErrInvalidStateTransition
		}
		prevStatus = order.Status

		if err := orders.UpdateStatus(ctx, order.ID, entity.OrderStatusCancelled, note, now); err != nil {
			return err
		}
		order.Status = entity.OrderStatusCancelled
		order.Notes = note
		order.UpdatedAt = now
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, actor, "order.cancel", orderID,
		map[string]any{"status": string(prevStatus)},
		map[string]any{"status": string(entity.OrderStatusCancelled), "note": note})
	return cancelled, nil
}

// GetByID devuelve la orden con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List lista órdenes, con filtros opcionales por estado y proveedor.
func (uc *UseCase) List(ctx context.Context, status entity.OrderStatus, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return uc.orderRepo.List(ctx, status, supplierID, limit, offset)
}

// validateItems valida cantidades y productos de las líneas y resuelve el
// proveedor común. Líneas de productos con proveedores distintos se rechazan:
// una orden de compra va dirigida a un solo proveedor.
func (uc *UseCase) validateItems(ctx context.Context, items []ItemInput) (string, error) {
	supplierID := ""
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Price.IsNegative() {
			return "", domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return "", err
		}
		if product == nil {
			return "", domain.ErrNotFound
		}
		if !product.Active {
			return "", domain.ErrInactiveProduct
		}
		if supplierID == "" {
			supplierID = product.SupplierID
		} else if supplierID != product.SupplierID {
			return "", domain.ErrInvalidInput
		}
	}
	return supplierID, nil
}

func (uc *UseCase) emit(ctx context.Context, actor, kind, orderID string, before, after map[string]any) {
	if uc.audit == nil {
		return
	}
	uc.audit.Record(ctx, ports.AuditFact{
		Actor:      actor,
		EventKind:  kind,
		EntityType: "purchase_order",
		EntityID:   orderID,
		Before:     before,
		After:      after,
	})
}
