package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockResponse resultado de un cómputo autoritativo de stock.
type StockResponse struct {
	ArticleID     string          `json:"article_id"`
	UnitVariantID string          `json:"unit_variant_id"`
	VariantCode   string          `json:"variant_code"`
	WarehouseID   string          `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Clamped       bool            `json:"clamped,omitempty"`
	AsOf          *time.Time      `json:"as_of,omitempty"`
}

// SyncRequest body para POST /api/stock/sync.
type SyncRequest struct {
	ArticleID   string `json:"article_id"`
	WarehouseID string `json:"warehouse_id"`
	Actor       string `json:"actor"`
	Reason      string `json:"reason"`
}

// StockLevelDTO fila de caché materializada.
type StockLevelDTO struct {
	UnitVariantID string          `json:"unit_variant_id"`
	WarehouseID   string          `json:"warehouse_id"`
	ArticleID     string          `json:"article_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CorrectionRequest body para POST /api/stock/corrections.
type CorrectionRequest struct {
	ArticleID         string          `json:"article_id"`
	WarehouseID       string          `json:"warehouse_id"`
	ObservedVariantID string          `json:"observed_variant_id"`
	ObservedQuantity  decimal.Decimal `json:"observed_quantity"`
	Actor             string          `json:"actor"`
	Note              string          `json:"note"`
}

// CorrectionLineDTO cantidad implicada por variante tras un conteo físico.
type CorrectionLineDTO struct {
	UnitVariantID string          `json:"unit_variant_id"`
	VariantCode   string          `json:"variant_code"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// CorrectionResponse resumen del ajuste aplicado.
type CorrectionResponse struct {
	BaseQuantity decimal.Decimal     `json:"base_quantity"`
	Lines        []CorrectionLineDTO `json:"lines"`
	Levels       []StockLevelDTO     `json:"levels"`
}
