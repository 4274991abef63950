package dto

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ReceiveStockRequest body para POST /api/stock/receive.
type ReceiveStockRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	Reason      string `json:"reason"` // purchase | adjustment
	Note        string `json:"note,omitempty"`
}

// IssueStockRequest body para POST /api/stock/issue.
type IssueStockRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	Reason      string `json:"reason"` // sale | damage | adjustment
	Note        string `json:"note,omitempty"`
}

// TransferStockRequest body para POST /api/stock/transfer.
type TransferStockRequest struct {
	ProductID       string `json:"product_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
	Note            string `json:"note,omitempty"`
}

// ReconcileRequest body para POST /api/stock/reconcile.
type ReconcileRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
}

// BalanceResponse existencia actual de un par (producto, bodega).
type BalanceResponse struct {
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransferResponse balances resultantes de un traslado.
type TransferResponse struct {
	Source      BalanceResponse `json:"source"`
	Destination BalanceResponse `json:"destination"`
}

// MovementResponse un registro del libro de movimientos.
type MovementResponse struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	Direction   string    `json:"direction"`
	Reason      string    `json:"reason"`
	Quantity    int64     `json:"quantity"`
	Note        string    `json:"note,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// ReconcileResponse resultado del diagnóstico de consistencia.
type ReconcileResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Balance     int64  `json:"balance"`
	LedgerSum   int64  `json:"ledger_sum"`
	Consistent  bool   `json:"consistent"`
}

// ToBalanceResponse convierte la entidad a DTO.
func ToBalanceResponse(b *entity.StockBalance) BalanceResponse {
	return BalanceResponse{
		ProductID:   b.ProductID,
		WarehouseID: b.WarehouseID,
		Quantity:    b.Quantity,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToMovementResponse convierte la entidad a DTO.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Seq:         m.Seq,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Direction:   string(m.Direction),
		Reason:      string(m.Reason),
		Quantity:    m.Quantity,
		Note:        m.Note,
		OccurredAt:  m.OccurredAt,
		CreatedBy:   m.CreatedBy,
	}
}

// ToReconcileResponse convierte el resultado del motor a DTO.
func ToReconcileResponse(r *stock.ReconcileResult) ReconcileResponse {
	return ReconcileResponse{
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		Balance:     r.Balance,
		LedgerSum:   r.LedgerSum,
		Consistent:  r.Consistent,
	}
}
