package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de agregación de solo lectura para el tablero.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador de agregados del tablero.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// Summary devuelve conteos de catálogo, unidades en stock y órdenes por estado
// en una sola consulta.
func (r *DashboardRepo) Summary(ctx context.Context) (*repository.DashboardSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE active),
			(SELECT COUNT(*) FROM warehouses),
			(SELECT COALESCE(SUM(quantity), 0) FROM stock_balances),
			(SELECT COUNT(*) FROM purchase_orders WHERE status = 'draft'),
			(SELECT COUNT(*) FROM purchase_orders WHERE status = 'confirmed'),
			(SELECT COUNT(*) FROM purchase_orders WHERE status = 'completed'),
			(SELECT COUNT(*) FROM purchase_orders WHERE status = 'cancelled')`
	var s repository.DashboardSummary
	err := r.q.QueryRow(ctx, query).Scan(
		&s.TotalProducts, &s.ActiveProducts, &s.TotalWarehouses, &s.TotalStockUnits,
		&s.DraftOrders, &s.ConfirmedOrders, &s.CompletedOrders, &s.CancelledOrders,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &s, nil
}
