package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/almacen-api/internal/domain/stock"
)

// CorrectionInput es la entrada de un ajuste por conteo físico: la cantidad
// observada en una variante concreta.
type CorrectionInput struct {
	ArticleID         string
	WarehouseID       string
	ObservedVariantID string
	ObservedQuantity  decimal.Decimal
	Actor             string
	Note              string
}

// CorrectionLine es la cantidad implicada para una variante hermana,
// devuelta para confirmación en pantalla.
type CorrectionLine struct {
	UnitVariantID string
	VariantCode   string
	Quantity      decimal.Decimal
}

// CorrectionResult resume el ajuste aplicado.
type CorrectionResult struct {
	BaseQuantity decimal.Decimal
	Lines        []CorrectionLine
	Levels       []entity.StockLevel
}

// Correct orquesta un ajuste por conteo físico: convierte la cantidad
// observada a unidades base, deriva la cantidad implicada de cada variante
// hermana, escribe un movimiento INVENTORY_COUNT por variante (un solo lote,
// mismo TransferID y fecha) y sincroniza la caché. Todo en una transacción
// bajo el bloqueo exclusivo del ámbito: una acción del usuario produce N
// hechos derivados que se ven como uno solo.
func (e *Engine) Correct(ctx context.Context, in CorrectionInput) (*CorrectionResult, error) {
	if in.ObservedQuantity.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}

	var result *CorrectionResult
	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		unitRepo repository.UnitVariantRepository,
		levelRepo repository.StockLevelRepository,
		auditRepo repository.StockAuditRepository,
	) error {
		if err := levelRepo.LockScope(in.ArticleID, in.WarehouseID); err != nil {
			return err
		}

		h, err := e.resolve(unitRepo, in.ArticleID)
		if err != nil {
			return err
		}
		base, ok := h.ToBase(in.ObservedVariantID, in.ObservedQuantity)
		if !ok {
			return domain.ErrMissingUnit
		}

		// Lote de conteo: una fila por variante, misma fecha y mismo grupo.
		// La clave de cada fila es el ID de variante; el código solo viaja
		// como dato de presentación.
		now := time.Now()
		batchID := uuid.New().String()
		lines := make([]CorrectionLine, 0, len(h.Variants()))
		for _, rv := range h.Variants() {
			implied := base.DivRound(rv.FactorToBase, domstock.QuantityScale)
			mov := entity.Movement{
				ID:            uuid.New().String(),
				TransferID:    batchID,
				ArticleID:     in.ArticleID,
				UnitVariantID: rv.Variant.ID,
				WarehouseID:   in.WarehouseID,
				Kind:          entity.MovementKindInventoryCount,
				Quantity:      implied,
				Date:          now,
				CreatedAt:     now,
				CreatedBy:     in.Actor,
				Note:          in.Note,
			}
			if err := movRepo.Create(&mov); err != nil {
				return err
			}
			lines = append(lines, CorrectionLine{
				UnitVariantID: rv.Variant.ID,
				VariantCode:   rv.Variant.Code,
				Quantity:      implied,
			})
		}

		levels, err := e.SyncInTx(movRepo, unitRepo, levelRepo, auditRepo,
			in.ArticleID, in.WarehouseID, in.Actor, "conteo físico: "+in.Note)
		if err != nil {
			return err
		}
		result = &CorrectionResult{BaseQuantity: base, Lines: lines, Levels: levels}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
