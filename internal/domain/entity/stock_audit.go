package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAudit registra cada ajuste de la caché de stock (solo inserción,
// nunca se modifica ni se borra).
type StockAudit struct {
	ID            string
	UnitVariantID string
	WarehouseID   string
	PreviousQty   decimal.Decimal
	NewQty        decimal.Decimal
	Actor         string
	Reason        string
	CreatedAt     time.Time
}
