package dto

// DashboardResponse agregados del tablero principal.
type DashboardResponse struct {
	TotalProducts   int64              `json:"total_products"`
	ActiveProducts  int64              `json:"active_products"`
	TotalWarehouses int64              `json:"total_warehouses"`
	TotalStockUnits int64              `json:"total_stock_units"`
	OrdersByStatus  map[string]int64   `json:"orders_by_status"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}
