package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación de StockBalanceRepository sobre PostgreSQL
// (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get obtiene la existencia actual del par; cantidad 0 si la fila no existe.
func (r *StockBalanceRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2`
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&b.ProductID, &b.WarehouseID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return &b, nil
}

// GetForUpdate obtiene la existencia y bloquea la fila (SELECT FOR UPDATE).
// Solo válido dentro de una transacción; la espera del lock está acotada por
// el lock_timeout de la tx. Un par sin fila devuelve cantidad 0 sin bloquear
// nada; la serialización del primer stock de un par la da ApplyDelta.
func (r *StockBalanceRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&b.ProductID, &b.WarehouseID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("get stock balance for update: %w", err)
	}
	return &b, nil
}

// ApplyDelta suma delta a la cantidad del par y devuelve el balance
// resultante. El insert con ON CONFLICT aditivo serializa a dos escritores
// concurrentes sobre un par sin fila previa: el segundo espera el commit del
// primero y suma sobre la fila ya confirmada, nunca la pisa con un absoluto.
func (r *StockBalanceRepo) ApplyDelta(ctx context.Context, productID, warehouseID string, delta int64) (*entity.StockBalance, error) {
	query := `
		INSERT INTO stock_balances (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = stock_balances.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity, updated_at`
	b := entity.StockBalance{ProductID: productID, WarehouseID: warehouseID}
	err := r.q.QueryRow(ctx, query, productID, warehouseID, delta).Scan(&b.Quantity, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("apply stock balance delta: %w", err)
	}
	return &b, nil
}

// Delete elimina la fila del par (asociación cortada al llegar a 0).
func (r *StockBalanceRepo) Delete(ctx context.Context, productID, warehouseID string) error {
	query := `DELETE FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2`
	_, err := r.q.Exec(ctx, query, productID, warehouseID)
	if err != nil {
		return fmt.Errorf("delete stock balance: %w", err)
	}
	return nil
}

// ListByWarehouse lista existencias de una bodega con paginación.
func (r *StockBalanceRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_balances WHERE warehouse_id = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock balances by warehouse: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.WarehouseID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// ListByProduct lista existencias de un producto en todas las bodegas.
func (r *StockBalanceRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_balances WHERE product_id = $1
		ORDER BY updated_at DESC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock balances by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.WarehouseID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
