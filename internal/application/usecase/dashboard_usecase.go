package usecase

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// recentMovementsLimit movimientos recientes mostrados en el tablero.
const recentMovementsLimit = 10

// DashboardUseCase agrega métricas de solo lectura para el tablero principal.
type DashboardUseCase struct {
	dashboardRepo repository.DashboardRepository
	movementRepo  repository.StockMovementRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	dashboardRepo repository.DashboardRepository,
	movementRepo repository.StockMovementRepository,
) *DashboardUseCase {
	return &DashboardUseCase{dashboardRepo: dashboardRepo, movementRepo: movementRepo}
}

// Summary devuelve los agregados del tablero: conteos de catálogo, unidades
// totales en stock, órdenes por estado y movimientos recientes.
func (uc *DashboardUseCase) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	summary, err := uc.dashboardRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := uc.movementRepo.List(ctx, repository.MovementFilter{Limit: recentMovementsLimit})
	if err != nil {
		return nil, err
	}

	movements := make([]dto.MovementResponse, 0, len(recent))
	for _, m := range recent {
		movements = append(movements, dto.ToMovementResponse(m))
	}
	return &dto.DashboardResponse{
		TotalProducts:   summary.TotalProducts,
		ActiveProducts:  summary.ActiveProducts,
		TotalWarehouses: summary.TotalWarehouses,
		TotalStockUnits: summary.TotalStockUnits,
		OrdersByStatus: map[string]int64{
			"draft":     summary.DraftOrders,
			"confirmed": summary.ConfirmedOrders,
			"completed": summary.CompletedOrders,
			"cancelled": summary.CancelledOrders,
		},
		RecentMovements: movements,
	}, nil
}
