package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa el stock calculado de una variante de unidad en una
// bodega (caché materializada). Derivado de los movimientos; descartable y
// reconstruible por completo, nunca es la fuente de verdad.
type StockLevel struct {
	UnitVariantID string
	WarehouseID   string
	ArticleID     string
	Quantity      decimal.Decimal
	UpdatedAt     time.Time
}
