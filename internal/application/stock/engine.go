package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Engine es el motor del libro de stock: el único componente que muta
// balances, y cada mutación queda emparejada con exactamente un movimiento
// (dos en traslados) dentro de una misma transacción.
//
// Las violaciones de restricción (cantidad no positiva, producto o bodega
// inactivos, stock insuficiente, origen igual a destino) se rechazan antes de
// escribir nada. Un fallo de infraestructura dentro de la transacción fuerza
// rollback completo; el motor no garantiza idempotencia en reintentos de una
// operación ya confirmada.
type Engine struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	audit         ports.AuditSink
}

// NewEngine construye el motor de stock.
func NewEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	audit ports.AuditSink,
) *Engine {
	return &Engine{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		audit:         audit,
	}
}

// ReceiveInput entrada para una recepción de stock (entrada).
// Reason admitidos: purchase, adjustment.
type ReceiveInput struct {
	Actor       string
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reason      entity.MovementReason
	Note        string
}

// IssueInput entrada para una salida de stock.
// Reason admitidos: sale, damage, adjustment.
type IssueInput struct {
	Actor       string
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reason      entity.MovementReason
	Note        string
}

// TransferInput entrada para un traslado entre bodegas.
type TransferInput struct {
	Actor           string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Note            string
}

// TransferResult balances resultantes de un traslado (origen y destino).
// El balance de origen puede quedar en cantidad 0 (asociación cortada).
type TransferResult struct {
	Source      *entity.StockBalance
	Destination *entity.StockBalance
}

// Receive registra una entrada de stock: suma la cantidad al balance del par y
// añade un movimiento "in" con la causa indicada, todo en una transacción.
// Crea el balance implícitamente si es la primera vez que el producto entra a
// la bodega.
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (*entity.StockBalance, error) {
	if in.Quantity <= 0 || (in.Reason != entity.ReasonPurchase && in.Reason != entity.ReasonAdjustment) {
		return nil, domain.ErrInvalidInput
	}
	if err := e.checkProductActive(ctx, in.ProductID); err != nil {
		return nil, err
	}
	// Regla de actividad en destino: toda operación que agrega stock exige
	// bodega activa.
	if err := e.checkWarehouse(ctx, in.WarehouseID, true); err != nil {
		return nil, err
	}

	now := time.Now()
	var updated *entity.StockBalance
	err := e.txRunner.Run(ctx, func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
	) error {
		b, err := e.ReceiveInTx(ctx, balances, movements,
			in.ProductID, in.WarehouseID, in.Quantity, in.Reason, in.Note, in.Actor, now)
		if err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, in.Actor, "stock.receive", in.ProductID, in.WarehouseID,
		updated.Quantity-in.Quantity, updated.Quantity)
	return updated, nil
}

// ReceiveInTx aplica una entrada usando los repositorios de una transacción ya
// abierta por el caller. Lo usa Receive y también la máquina de estados de
// órdenes de compra al completar una orden (una llamada por línea, misma tx
// que el cambio de estado).
func (e *Engine) ReceiveInTx(
	ctx context.Context,
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
	productID, warehouseID string,
	quantity int64,
	reason entity.MovementReason,
	note, actor string,
	now time.Time,
) (*entity.StockBalance, error) {
	// Suma aditiva a nivel de fila: crea el balance si el par es nuevo y
	// queda serializada contra recepciones concurrentes del mismo par sin
	// necesidad de bloquear antes (un par sin fila no tiene nada que
	// bloquear con FOR UPDATE).
	balance, err := balances.ApplyDelta(ctx, productID, warehouseID, quantity)
	if err != nil {
		return nil, err
	}
	mov, err := entity.NewStockMovement(productID, warehouseID, entity.DirectionIn, reason, quantity, note, now)
	if err != nil {
		return nil, err
	}
	mov.ID = uuid.New().String()
	mov.CreatedBy = actor
	if err := movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return balance, nil
}

// Issue registra una salida de stock: verifica disponibilidad, resta la
// cantidad y añade un movimiento "out", todo en una transacción. Si la salida
// deja el balance exactamente en 0, la fila se elimina (el producto deja de
// estar stockeado en la bodega).
func (e *Engine) Issue(ctx context.Context, in IssueInput) (*entity.StockBalance, error) {
	if in.Quantity <= 0 ||
		(in.Reason != entity.ReasonSale && in.Reason != entity.ReasonDamage && in.Reason != entity.ReasonAdjustment) {
		return nil, domain.ErrInvalidInput
	}
	if err := e.checkProductActive(ctx, in.ProductID); err != nil {
		return nil, err
	}
	// Las salidas no exigen bodega activa: se permite drenar una bodega
	// desactivada. Solo se exige que exista.
	if err := e.checkWarehouse(ctx, in.WarehouseID, false); err != nil {
		return nil, err
	}

	now := time.Now()
	var updated *entity.StockBalance
	var before int64
	err := e.txRunner.Run(ctx, func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
	) error {
		balance, err := balances.GetForUpdate(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		if balance.Quantity < in.Quantity {
			return &domain.InsufficientStockError{
				ProductID:   in.ProductID,
				WarehouseID: in.WarehouseID,
				Required:    in.Quantity,
				Available:   balance.Quantity,
			}
		}
		before = balance.Quantity
		if balance.Quantity == in.Quantity {
			if err := balances.Delete(ctx, in.ProductID, in.WarehouseID); err != nil {
				return err
			}
			balance.Quantity = 0
			balance.UpdatedAt = now
		} else {
			balance, err = balances.ApplyDelta(ctx, in.ProductID, in.WarehouseID, -in.Quantity)
			if err != nil {
				return err
			}
		}
		mov, err := entity.NewStockMovement(in.ProductID, in.WarehouseID, entity.DirectionOut, in.Reason, in.Quantity, in.Note, now)
		if err != nil {
			return err
		}
		mov.ID = uuid.New().String()
		mov.CreatedBy = in.Actor
		if err := movements.Create(ctx, mov); err != nil {
			return err
		}
		updated = balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, in.Actor, "stock.issue", in.ProductID, in.WarehouseID, before, updated.Quantity)
	return updated, nil
}

// Transfer traslada stock entre dos bodegas en una sola transacción: resta en
// origen, suma en destino y registra dos movimientos (out en origen, in en
// destino) con causa transfer. O se confirma todo o no se observa nada.
//
// Las filas de balance se bloquean en orden fijo por identificador de bodega
// para evitar deadlocks entre traslados cruzados concurrentes.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.Quantity <= 0 || in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if err := e.checkProductActive(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if err := e.checkWarehouse(ctx, in.FromWarehouseID, false); err != nil {
		return nil, err
	}
	// El destino recibe stock: exige bodega activa.
	if err := e.checkWarehouse(ctx, in.ToWarehouseID, true); err != nil {
		return nil, err
	}

	now := time.Now()
	var result *TransferResult
	var sourceBefore int64
	err := e.txRunner.Run(ctx, func(
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
	) error {
		// Orden global de bloqueo: menor ID de bodega primero.
		first, second := in.FromWarehouseID, in.ToWarehouseID
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*entity.StockBalance, 2)
		for _, warehouseID := range []string{first, second} {
			b, err := balances.GetForUpdate(ctx, in.ProductID, warehouseID)
			if err != nil {
				return err
			}
			locked[warehouseID] = b
		}
		source := locked[in.FromWarehouseID]

		if source.Quantity < in.Quantity {
			return &domain.InsufficientStockError{
				ProductID:   in.ProductID,
				WarehouseID: in.FromWarehouseID,
				Required:    in.Quantity,
				Available:   source.Quantity,
			}
		}
		sourceBefore = source.Quantity
		if source.Quantity == in.Quantity {
			if err := balances.Delete(ctx, in.ProductID, in.FromWarehouseID); err != nil {
				return err
			}
			source.Quantity = 0
			source.UpdatedAt = now
		} else {
			drained, err := balances.ApplyDelta(ctx, in.ProductID, in.FromWarehouseID, -in.Quantity)
			if err != nil {
				return err
			}
			source = drained
		}
		// El destino puede no tener fila todavía; la suma aditiva la crea y
		// serializa contra otras entradas concurrentes al mismo par.
		dest, err := balances.ApplyDelta(ctx, in.ProductID, in.ToWarehouseID, in.Quantity)
		if err != nil {
			return err
		}

		outMov, err := entity.NewStockMovement(in.ProductID, in.FromWarehouseID, entity.DirectionOut, entity.ReasonTransfer, in.Quantity, in.Note, now)
		if err != nil {
			return err
		}
		outMov.ID = uuid.New().String()
		outMov.CreatedBy = in.Actor
		if err := movements.Create(ctx, outMov); err != nil {
			return err
		}
		inMov, err := entity.NewStockMovement(in.ProductID, in.ToWarehouseID, entity.DirectionIn, entity.ReasonTransfer, in.Quantity, in.Note, now)
		if err != nil {
			return err
		}
		inMov.ID = uuid.New().String()
		inMov.CreatedBy = in.Actor
		if err := movements.Create(ctx, inMov); err != nil {
			return err
		}

		result = &TransferResult{Source: source, Destination: dest}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, in.Actor, "stock.transfer", in.ProductID, in.FromWarehouseID, sourceBefore, result.Source.Quantity)
	e.emit(ctx, in.Actor, "stock.transfer", in.ProductID, in.ToWarehouseID,
		result.Destination.Quantity-in.Quantity, result.Destination.Quantity)
	return result, nil
}

// checkProductActive valida que el producto exista y esté activo.
func (e *Engine) checkProductActive(ctx context.Context, productID string) error {
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if !product.Active {
		return domain.ErrInactiveProduct
	}
	return nil
}

// checkWarehouse valida que la bodega exista; con requireActive exige además
// que esté activa.
func (e *Engine) checkWarehouse(ctx context.Context, warehouseID string, requireActive bool) error {
	warehouse, err := e.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return domain.ErrNotFound
	}
	if requireActive && !warehouse.Active {
		return domain.ErrInactiveWarehouse
	}
	return nil
}

// emit envía el hecho de auditoría del cambio de balance ya confirmado.
func (e *Engine) emit(ctx context.Context, actor, kind, productID, warehouseID string, before, after int64) {
	if e.audit == nil {
		return
	}
	e.audit.Record(ctx, ports.AuditFact{
		Actor:      actor,
		EventKind:  kind,
		EntityType: "stock_balance",
		EntityID:   productID + ":" + warehouseID,
		Before:     map[string]any{"quantity": before},
		After:      map[string]any{"quantity": after},
	})
}
