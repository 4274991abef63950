package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// respondError traduce los errores de dominio a respuestas HTTP uniformes.
// Los handlers delegan aquí todo error que no manejan de forma especial.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInactiveProduct):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INACTIVE_PRODUCT", Message: "producto desactivado"})
	case errors.Is(err, domain.ErrInactiveWarehouse):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INACTIVE_WAREHOUSE", Message: "bodega desactivada"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return insufficientStockResponse(c, err)
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BUSY", Message: "recurso ocupado, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// insufficientStockResponse incluye lo requerido y lo disponible cuando el
// error trae el detalle del par afectado.
func insufficientStockResponse(c *fiber.Ctx, err error) error {
	var detail *domain.InsufficientStockError
	if errors.As(err, &detail) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":         "INSUFFICIENT_STOCK",
			"message":      "stock insuficiente",
			"product_id":   detail.ProductID,
			"warehouse_id": detail.WarehouseID,
			"required":     detail.Required,
			"available":    detail.Available,
		})
	}
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
}
