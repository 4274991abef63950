package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Se comparan con errors.Is
// y se mapean a códigos HTTP en la capa de interfaces.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInactiveProduct        = errors.New("producto desactivado")
	ErrInactiveWarehouse      = errors.New("bodega desactivada")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	// ErrBusy: timeout esperando el lock de una fila de stock. La operación no
	// aplicó ningún cambio; el caller puede reintentar.
	ErrBusy = errors.New("recurso ocupado, reintente")
)

// InsufficientStockError detalla un rechazo por stock insuficiente: cuánto se
// pidió y cuánto había. errors.Is(err, ErrInsufficientStock) devuelve true.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Required    int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en bodega %s: solicitado %d, disponible %d",
		e.ProductID, e.WarehouseID, e.Required, e.Available)
}

// Is permite el match contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
