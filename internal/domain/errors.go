package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrNoActiveRange    = errors.New("no hay rango de folios activo para el tipo de documento")
	ErrRangeExhausted   = errors.New("rango de folios agotado")
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
	ErrValidationFailed = errors.New("datos de la factura inválidos")
	ErrRenderFailed     = errors.New("no fue posible generar el documento")
)
