package entity

import "time"

// Article representa un artículo del catálogo (multi-unidad, multi-bodega).
// El stock nunca se guarda como contador único: se deriva de los movimientos.
type Article struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
