package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL
// (usable con pool o tx). Cabecera en purchase_orders, líneas en
// purchase_order_items.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste cabecera y líneas de la orden.
func (r *PurchaseOrderRepo) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, supplier_id, order_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.SupplierID, order.OrderDate, string(order.Status), order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, item := range order.Items {
		if err := r.insertItem(ctx, &item); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate obtiene la orden bloqueando la cabecera (SELECT FOR
// UPDATE) para serializar transiciones de estado concurrentes. Solo dentro de
// una transacción.
func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getByID(ctx, id, true)
}

func (r *PurchaseOrderRepo) getByID(ctx context.Context, id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_id, order_date, status, notes, created_at, updated_at
		FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.PurchaseOrder
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.SupplierID, &o.OrderDate, &status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	o.Status = entity.OrderStatus(status)
	items, err := r.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// Update actualiza la cabecera de la orden.
func (r *PurchaseOrderRepo) Update(ctx context.Context, order *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET supplier_id = $2, order_date = $3, status = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.SupplierID, order.OrderDate, string(order.Status),
		order.Notes, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return nil
}

// ReplaceItems reemplaza todas las líneas de la orden.
func (r *PurchaseOrderRepo) ReplaceItems(ctx context.Context, orderID string, items []entity.PurchaseOrderItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete purchase order items: %w", err)
	}
	for _, item := range items {
		if err := r.insertItem(ctx, &item); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus cambia estado y notas de la orden.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, notes string, updatedAt time.Time) error {
	query := `UPDATE purchase_orders SET status = $2, notes = $3, updated_at = $4 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, string(status), notes, updatedAt)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	return nil
}

// List lista órdenes con filtros opcionales por estado y proveedor, líneas incluidas.
func (r *PurchaseOrderRepo) List(ctx context.Context, status entity.OrderStatus, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_id, order_date, status, notes, created_at, updated_at
		FROM purchase_orders WHERE 1=1`
	var args []any
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(status))
		pos++
	}
	if supplierID != "" {
		query += fmt.Sprintf(" AND supplier_id = $%d", pos)
		args = append(args, supplierID)
		pos++
	}
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY order_date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var o entity.PurchaseOrder
		var st string
		if err := rows.Scan(&o.ID, &o.SupplierID, &o.OrderDate, &st, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		o.Status = entity.OrderStatus(st)
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		items, err := r.listItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return list, nil
}

func (r *PurchaseOrderRepo) insertItem(ctx context.Context, item *entity.PurchaseOrderItem) error {
	query := `
		INSERT INTO purchase_order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("insert purchase order item: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) listItems(ctx context.Context, orderID string) ([]entity.PurchaseOrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM purchase_order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseOrderItem
	for rows.Next() {
		var item entity.PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
