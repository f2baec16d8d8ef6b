package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitVariant representa una unidad de conteo de un artículo (pieza, caja, cartón...).
// Las variantes de un artículo forman una cadena estricta ordenada por Level:
// Level 0 es la unidad base y Factor indica cuántas unidades del nivel
// inmediatamente inferior representa (el factor de la base se define como 1).
type UnitVariant struct {
	ID        string
	ArticleID string
	Code      string // código visible por variante (ej. "PZA", "CJ12")
	Level     int
	Factor    decimal.Decimal
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
