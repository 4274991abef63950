package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del motor de stock (protegido).
// Las mutaciones pasan por el motor; las consultas van directo a los repos.
type StockHandler struct {
	engine    *stock.Engine
	balances  repository.StockBalanceRepository
	movements repository.StockMovementRepository
}

// NewStockHandler construye el handler.
func NewStockHandler(
	engine *stock.Engine,
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) *StockHandler {
	return &StockHandler{engine: engine, balances: balances, movements: movements}
}

// Receive godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "product_id, warehouse_id, quantity, reason (purchase|adjustment)"
// @Success      200   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/receive [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	reason, ok := entity.ParseMovementReason(in.Reason)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason inválido"})
	}
	balance, err := h.engine.Receive(c.Context(), stock.ReceiveInput{
		Actor:       GetUserID(c),
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reason:      reason,
		Note:        in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToBalanceResponse(balance))
}

// Issue godoc
// @Summary      Registrar salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueStockRequest  true  "product_id, warehouse_id, quantity, reason (sale|damage|adjustment)"
// @Success      200   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/issue [post]
func (h *StockHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	reason, ok := entity.ParseMovementReason(in.Reason)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason inválido"})
	}
	balance, err := h.engine.Issue(c.Context(), stock.IssueInput{
		Actor:       GetUserID(c),
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reason:      reason,
		Note:        in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToBalanceResponse(balance))
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.engine.Transfer(c.Context(), stock.TransferInput{
		Actor:           GetUserID(c),
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Note:            in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransferResponse{
		Source:      dto.ToBalanceResponse(result.Source),
		Destination: dto.ToBalanceResponse(result.Destination),
	})
}

// GetBalance godoc
// @Summary      Consultar existencias
// @Description  Con product_id y warehouse_id devuelve el par (cantidad 0 si nunca
// @Description  tuvo stock). Con solo uno de los dos, lista las existencias de ese
// @Description  producto o bodega.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "ID del producto"
// @Param        warehouse_id  query  string  false  "ID de la bodega"
// @Param        limit         query  int     false  "Límite (solo listado por bodega)"  default(50)
// @Param        offset        query  int     false  "Offset (solo listado por bodega)"  default(0)
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/balances [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	switch {
	case productID != "" && warehouseID != "":
		balance, err := h.balances.Get(c.Context(), productID, warehouseID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.ToBalanceResponse(balance))
	case warehouseID != "":
		limit := c.QueryInt("limit", 50)
		offset := c.QueryInt("offset", 0)
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}
		list, err := h.balances.ListByWarehouse(c.Context(), warehouseID, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toBalanceResponses(list))
	case productID != "":
		list, err := h.balances.ListByProduct(c.Context(), productID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toBalanceResponses(list))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id o warehouse_id es requerido"})
	}
}

// ListWarehouseBalances godoc
// @Summary      Listar existencias de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la bodega"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/warehouses/{id}/balances [get]
func (h *StockHandler) ListWarehouseBalances(c *fiber.Ctx) error {
	warehouseID := c.Params("id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := h.balances.ListByWarehouse(c.Context(), warehouseID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBalanceResponses(list))
}

// ListProductBalances godoc
// @Summary      Existencias de un producto en todas las bodegas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/products/{id}/balances [get]
func (h *StockHandler) ListProductBalances(c *fiber.Ctx) error {
	productID := c.Params("id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	list, err := h.balances.ListByProduct(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBalanceResponses(list))
}

func toBalanceResponses(list []*entity.StockBalance) []dto.BalanceResponse {
	out := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.ToBalanceResponse(b))
	}
	return out
}

// ListMovements godoc
// @Summary      Consultar el libro de movimientos
// @Description  Filtros opcionales por producto, bodega, causa y rango de fechas (RFC 3339).
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "ID del producto"
// @Param        warehouse_id  query  string  false  "ID de la bodega"
// @Param        reason        query  string  false  "purchase|sale|transfer|adjustment|damage"
// @Param        from          query  string  false  "Desde (RFC 3339)"
// @Param        to            query  string  false  "Hasta (RFC 3339)"
// @Param        limit         query  int     false  "Límite"  default(50)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       c.QueryInt("limit", 50),
		Offset:      c.QueryInt("offset", 0),
	}
	if s := c.Query("reason"); s != "" {
		reason, ok := entity.ParseMovementReason(s)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason inválido"})
		}
		filter.Reason = reason
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, use RFC 3339"})
		}
		filter.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, use RFC 3339"})
		}
		filter.To = &t
	}
	list, err := h.movements.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.ToMovementResponse(m))
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Verificar consistencia balance vs. libro
// @Description  Compara el balance materializado contra la suma con signo del libro de movimientos.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileRequest  true  "product_id, warehouse_id"
// @Success      200   {object}  dto.ReconcileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/reconcile [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" || in.WarehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id son requeridos"})
	}
	result, err := h.engine.Reconcile(c.Context(), in.ProductID, in.WarehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToReconcileResponse(result))
}
