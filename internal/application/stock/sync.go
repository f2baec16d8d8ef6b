package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/almacen-api/internal/domain/stock"
)

// Sync recalcula el stock de todas las variantes del artículo en la bodega y
// materializa el resultado en la caché, dejando una entrada de auditoría por
// cada fila que cambie. Unidad atómica: o se actualizan todas las filas del
// ámbito o ninguna.
func (e *Engine) Sync(ctx context.Context, articleID, warehouseID, actor, reason string) ([]entity.StockLevel, error) {
	var out []entity.StockLevel
	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		unitRepo repository.UnitVariantRepository,
		levelRepo repository.StockLevelRepository,
		auditRepo repository.StockAuditRepository,
	) error {
		if err := levelRepo.LockScope(articleID, warehouseID); err != nil {
			return err
		}
		rows, err := e.SyncInTx(movRepo, unitRepo, levelRepo, auditRepo, articleID, warehouseID, actor, reason)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SyncInTx ejecuta la sincronización con los repositorios de la transacción
// del caller (el ámbito ya debe estar bloqueado). Los productores la invocan
// justo después de confirmar su movimiento, en la misma transacción.
//
// Compara contra la fila actual de caché: si la cantidad no cambió dentro de
// la tolerancia, la fila no se toca y no se audita (Sync es idempotente).
func (e *Engine) SyncInTx(
	movRepo repository.MovementRepository,
	unitRepo repository.UnitVariantRepository,
	levelRepo repository.StockLevelRepository,
	auditRepo repository.StockAuditRepository,
	articleID, warehouseID, actor, reason string,
) ([]entity.StockLevel, error) {
	h, err := e.resolve(unitRepo, articleID)
	if err != nil {
		return nil, err
	}
	base, _, err := e.computeBase(movRepo, h, articleID, warehouseID, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	levels := make([]entity.StockLevel, 0, len(h.Variants()))
	for _, rv := range h.Variants() {
		qty := base.DivRound(rv.FactorToBase, domstock.QuantityScale)

		prev, err := levelRepo.Get(rv.Variant.ID, warehouseID)
		if err != nil {
			return nil, err
		}
		if prev != nil && domstock.QuantityEqual(prev.Quantity, qty) {
			levels = append(levels, *prev)
			continue
		}

		level := entity.StockLevel{
			UnitVariantID: rv.Variant.ID,
			WarehouseID:   warehouseID,
			ArticleID:     articleID,
			Quantity:      qty,
			UpdatedAt:     now,
		}
		if err := levelRepo.Upsert(&level); err != nil {
			return nil, err
		}

		previousQty := decimal.Zero
		if prev != nil {
			previousQty = prev.Quantity
		}
		entry := entity.StockAudit{
			ID:            uuid.New().String(),
			UnitVariantID: rv.Variant.ID,
			WarehouseID:   warehouseID,
			PreviousQty:   previousQty,
			NewQty:        qty,
			Actor:         actor,
			Reason:        reason,
			CreatedAt:     now,
		}
		if err := auditRepo.Append(&entry); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}
