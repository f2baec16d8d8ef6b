package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/almacen-api/internal/domain/stock"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Engine es el motor de stock multi-unidad: deriva la cantidad disponible de
// un artículo en una bodega a partir del libro de movimientos, normalizando
// todas las variantes de unidad a la base. Es la única fuente de verdad; la
// caché (StockLevel) solo materializa su resultado.
type Engine struct {
	txRunner TxRunner
	unitRepo repository.UnitVariantRepository
	movRepo  repository.MovementRepository
	log      *logger.Logger
}

// NewEngine construye el motor. unitRepo y movRepo van atados al pool (ruta de
// lectura); las escrituras pasan siempre por txRunner.
func NewEngine(
	txRunner TxRunner,
	unitRepo repository.UnitVariantRepository,
	movRepo repository.MovementRepository,
	log *logger.Logger,
) *Engine {
	return &Engine{txRunner: txRunner, unitRepo: unitRepo, movRepo: movRepo, log: log}
}

// ComputeResult es la cantidad derivada de un artículo en la variante pedida.
// Clamped indica que el total base era negativo (inconsistencia de datos río
// arriba) y se recortó a cero para presentación.
type ComputeResult struct {
	ArticleID     string
	UnitVariantID string
	VariantCode   string
	WarehouseID   string
	Quantity      decimal.Decimal
	Clamped       bool
	AsOf          *time.Time
}

// Compute calcula el stock disponible del artículo en la bodega, expresado en
// la variante objetivo, opcionalmente a una fecha de corte (asOf). Ruta
// autoritativa: siempre recalcula desde el libro completo, nunca lee la caché.
func (e *Engine) Compute(ctx context.Context, articleID, targetVariantID, warehouseID string, asOf *time.Time) (*ComputeResult, error) {
	_ = ctx
	return e.ComputeWith(e.unitRepo, e.movRepo, articleID, targetVariantID, warehouseID, asOf)
}

// ComputeWith calcula con los repositorios proporcionados. Lo usan los
// productores dentro de su propia transacción para el chequeo de suficiencia
// previo al commit (misma tx que el bloqueo de ámbito).
func (e *Engine) ComputeWith(
	unitRepo repository.UnitVariantRepository,
	movRepo repository.MovementRepository,
	articleID, targetVariantID, warehouseID string,
	asOf *time.Time,
) (*ComputeResult, error) {
	h, err := e.resolve(unitRepo, articleID)
	if err != nil {
		return nil, err
	}
	targetFactor, ok := h.FactorToBase(targetVariantID)
	if !ok {
		return nil, domain.ErrMissingUnit
	}

	base, clamped, err := e.computeBase(movRepo, h, articleID, warehouseID, asOf)
	if err != nil {
		return nil, err
	}

	var code string
	for _, rv := range h.Variants() {
		if rv.Variant.ID == targetVariantID {
			code = rv.Variant.Code
			break
		}
	}
	return &ComputeResult{
		ArticleID:     articleID,
		UnitVariantID: targetVariantID,
		VariantCode:   code,
		WarehouseID:   warehouseID,
		Quantity:      base.DivRound(targetFactor, domstock.QuantityScale),
		Clamped:       clamped,
		AsOf:          asOf,
	}, nil
}

// resolve carga las variantes no eliminadas y construye la jerarquía validada.
func (e *Engine) resolve(unitRepo repository.UnitVariantRepository, articleID string) (*domstock.Hierarchy, error) {
	variants, err := unitRepo.ListByArticle(articleID)
	if err != nil {
		return nil, err
	}
	return domstock.BuildHierarchy(variants)
}

// computeBase reconstruye el total en unidades base del ámbito (artículo,
// bodega): parte del último conteo físico vigente (línea base absoluta) y
// agrega la suma firmada de cada variante posterior al conteo, normalizada
// por su factor acumulado. La suma no depende del orden de iteración.
//
// Un total negativo se recorta a cero y se reporta exactamente una vez como
// advertencia de consistencia; nunca se oculta en silencio.
func (e *Engine) computeBase(
	movRepo repository.MovementRepository,
	h *domstock.Hierarchy,
	articleID, warehouseID string,
	asOf *time.Time,
) (decimal.Decimal, bool, error) {
	base := decimal.Zero
	var since *time.Time

	count, err := movRepo.LatestCount(articleID, warehouseID, asOf)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	if count != nil {
		countBase, ok := h.ToBase(count.UnitVariantID, count.Quantity)
		if !ok {
			// El conteo referencia una variante que ya no pertenece a la jerarquía.
			return decimal.Decimal{}, false, domain.ErrConversionData
		}
		base = countBase
		since = &count.Date
	}

	for _, rv := range h.Variants() {
		sums, err := movRepo.SumByKind(articleID, rv.Variant.ID, warehouseID, since, asOf)
		if err != nil {
			return decimal.Decimal{}, false, err
		}
		base = base.Add(domstock.NetQuantity(sums).Mul(rv.FactorToBase))
	}

	if base.IsNegative() {
		e.log.Warn().
			Str("article_id", articleID).
			Str("warehouse_id", warehouseID).
			Str("base_total", base.String()).
			Msg("total base negativo: libro de movimientos inconsistente, se recorta a cero")
		return decimal.Zero, true, nil
	}
	return base, false, nil
}
