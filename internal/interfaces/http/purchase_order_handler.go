package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/purchase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PurchaseOrderHandler maneja las peticiones HTTP de órdenes de compra (protegido).
type PurchaseOrderHandler struct {
	uc *purchase.UseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *purchase.UseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

func toItemInputs(items []dto.OrderItemRequest) []purchase.ItemInput {
	out := make([]purchase.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, purchase.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  Crea la orden en estado draft o confirmed. El proveedor se resuelve desde los productos de las líneas.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "items, order_date, status (draft|confirmed)"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	status, ok := entity.ParseOrderStatus(in.Status)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status inválido"})
	}
	order, err := h.uc.Create(c.Context(), purchase.CreateInput{
		Actor:     GetUserID(c),
		Items:     toItemInputs(in.Items),
		OrderDate: in.OrderDate,
		Status:    status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToPurchaseOrderResponse(order))
}

// GetByID godoc
// @Summary      Obtener orden de compra por ID
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	order, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPurchaseOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "draft|confirmed|completed|cancelled"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	var status entity.OrderStatus
	if s := c.Query("status"); s != "" {
		parsed, ok := entity.ParseOrderStatus(s)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status inválido"})
		}
		status = parsed
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	orders, err := h.uc.List(c.Context(), status, c.Query("supplier_id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.PurchaseOrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, dto.ToPurchaseOrderResponse(order))
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar orden de compra
// @Description  Reemplaza líneas y cabecera de una orden no terminal. Status solo admite draft o confirmed.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.UpdatePurchaseOrderRequest  true  "items, order_date, status"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	status, ok := entity.ParseOrderStatus(in.Status)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status inválido"})
	}
	order, err := h.uc.Update(c.Context(), id, purchase.UpdateInput{
		Actor:     GetUserID(c),
		Items:     toItemInputs(in.Items),
		OrderDate: in.OrderDate,
		Status:    status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPurchaseOrderResponse(order))
}

// Complete godoc
// @Summary      Completar orden de compra
// @Description  Recibe todas las líneas en la bodega indicada y marca la orden como completed, todo en una transacción.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.CompletePurchaseOrderRequest  true  "warehouse_id destino"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/complete [post]
func (h *PurchaseOrderHandler) Complete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.CompletePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.WarehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es requerido"})
	}
	order, err := h.uc.Complete(c.Context(), id, in.WarehouseID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPurchaseOrderResponse(order))
}

// Cancel godoc
// @Summary      Cancelar orden de compra
// @Description  Cancela una orden no terminal. La nota explicando la cancelación es obligatoria.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.CancelPurchaseOrderRequest  true  "note obligatoria"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.CancelPurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.Cancel(c.Context(), id, in.Note, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPurchaseOrderResponse(order))
}
