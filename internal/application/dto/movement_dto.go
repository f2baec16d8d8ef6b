package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movements.
// Para TRANSFER usar from_warehouse_id/to_warehouse_id en vez de warehouse_id.
type RegisterMovementRequest struct {
	ArticleID       string          `json:"article_id"`
	UnitVariantID   string          `json:"unit_variant_id"`
	WarehouseID     string          `json:"warehouse_id,omitempty"`
	FromWarehouseID string          `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string          `json:"to_warehouse_id,omitempty"`
	Kind            string          `json:"kind"`
	Quantity        decimal.Decimal `json:"quantity"`
	Validated       bool            `json:"validated,omitempty"`
	Actor           string          `json:"actor"`
	Note            string          `json:"note,omitempty"`
}

// MovementDTO representación de un movimiento del libro.
type MovementDTO struct {
	ID            string          `json:"id"`
	TransferID    string          `json:"transfer_id,omitempty"`
	ArticleID     string          `json:"article_id"`
	UnitVariantID string          `json:"unit_variant_id"`
	WarehouseID   string          `json:"warehouse_id"`
	Kind          string          `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity"`
	Validated     bool            `json:"validated"`
	Voided        bool            `json:"voided"`
	Date          time.Time       `json:"date"`
	CreatedBy     string          `json:"created_by,omitempty"`
	Note          string          `json:"note,omitempty"`
}

// VoidMovementRequest body para POST /api/movements/:id/void.
type VoidMovementRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// ValidateSaleRequest body para POST /api/movements/:id/validate.
type ValidateSaleRequest struct {
	Actor string `json:"actor"`
}
