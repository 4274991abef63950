package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: este adaptador no expone
// UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento del libro.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, warehouse_id, direction, reason, quantity, note, occurred_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, movement.WarehouseID,
		string(movement.Direction), string(movement.Reason), movement.Quantity,
		movement.Note, movement.OccurredAt, movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `
		SELECT id, seq, product_id, warehouse_id, direction, reason, quantity, note, occurred_at, created_at, created_by
		FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// List lista movimientos según el filtro (producto, bodega, causa, rango de
// fechas), ordenados por fecha y secuencia de inserción descendentes.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, seq, product_id, warehouse_id, direction, reason, quantity, note, occurred_at, created_at, created_by
		FROM stock_movements WHERE 1=1`
	var args []any
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.WarehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	if filter.Reason != "" {
		query += fmt.Sprintf(" AND reason = $%d", pos)
		args = append(args, string(filter.Reason))
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, seq DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumByProductWarehouse suma con signo los movimientos del par
// (entradas positivas, salidas negativas). Usado solo por Reconcile.
func (r *StockMovementRepo) SumByProductWarehouse(ctx context.Context, productID, warehouseID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements WHERE product_id = $1 AND warehouse_id = $2`
	var sum int64
	if err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum stock movements: %w", err)
	}
	return sum, nil
}

// scanMovement lee una fila de stock_movements (Row o Rows).
func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var direction, reason string
	var createdBy *string
	err := row.Scan(&m.ID, &m.Seq, &m.ProductID, &m.WarehouseID, &direction, &reason,
		&m.Quantity, &m.Note, &m.OccurredAt, &m.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	m.Direction = entity.MovementDirection(direction)
	m.Reason = entity.MovementReason(reason)
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
