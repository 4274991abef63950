package repository

import "context"

// DashboardSummary agregados para el tablero principal.
type DashboardSummary struct {
	TotalProducts   int64
	ActiveProducts  int64
	TotalWarehouses int64
	TotalStockUnits int64
	DraftOrders     int64
	ConfirmedOrders int64
	CompletedOrders int64
	CancelledOrders int64
}

// DashboardRepository consultas de agregación de solo lectura para el tablero.
type DashboardRepository interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}
