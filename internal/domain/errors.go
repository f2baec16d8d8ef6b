package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrMissingUnit       = errors.New("el artículo no tiene unidades definidas")
	ErrConversionData    = errors.New("configuración de unidades inconsistente")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrStorage envuelve cualquier falla del almacén persistente; se propaga
	// con %w y provoca rollback de la unidad atómica en curso.
	ErrStorage = errors.New("error de almacenamiento")
)
