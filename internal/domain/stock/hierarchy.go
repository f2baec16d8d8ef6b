package stock

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ResolvedVariant es una variante de unidad junto con su factor acumulado a la
// unidad base: producto de los factores desde la base hasta su nivel (base = 1).
type ResolvedVariant struct {
	Variant      entity.UnitVariant
	FactorToBase decimal.Decimal
}

// Hierarchy es la jerarquía de unidades validada de un artículo, ordenada
// ascendente por nivel. Es un valor inmutable: se construye una vez por
// cómputo y no tiene efectos secundarios.
type Hierarchy struct {
	variants []ResolvedVariant
	byID     map[string]int
}

// BuildHierarchy valida las variantes de un artículo y calcula el factor
// acumulado de cada una (servicio de dominio puro).
//
// Reglas: debe existir al menos una variante no eliminada (ErrMissingUnit);
// exactamente una con nivel 0; niveles sin duplicados; todo factor > 0
// (ErrConversionData en los demás casos).
func BuildHierarchy(variants []entity.UnitVariant) (*Hierarchy, error) {
	active := make([]entity.UnitVariant, 0, len(variants))
	for _, v := range variants {
		if !v.Deleted {
			active = append(active, v)
		}
	}
	if len(active) == 0 {
		return nil, domain.ErrMissingUnit
	}

	sort.Slice(active, func(i, j int) bool { return active[i].Level < active[j].Level })

	baseCount := 0
	for i, v := range active {
		if v.Level == 0 {
			baseCount++
		}
		if v.Factor.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrConversionData
		}
		if i > 0 && active[i-1].Level == v.Level {
			return nil, domain.ErrConversionData
		}
	}
	if baseCount != 1 {
		return nil, domain.ErrConversionData
	}

	h := &Hierarchy{
		variants: make([]ResolvedVariant, 0, len(active)),
		byID:     make(map[string]int, len(active)),
	}
	// El factor de la base se define como 1 sin importar lo almacenado;
	// los niveles superiores acumulan multiplicando hacia arriba.
	cumulative := decimal.NewFromInt(1)
	for i, v := range active {
		if i > 0 {
			cumulative = cumulative.Mul(v.Factor)
		}
		h.byID[v.ID] = len(h.variants)
		h.variants = append(h.variants, ResolvedVariant{Variant: v, FactorToBase: cumulative})
	}
	return h, nil
}

// Variants devuelve las variantes resueltas en orden ascendente por nivel.
func (h *Hierarchy) Variants() []ResolvedVariant {
	return h.variants
}

// Base devuelve la variante de nivel 0.
func (h *Hierarchy) Base() ResolvedVariant {
	return h.variants[0]
}

// FactorToBase devuelve el factor acumulado de una variante por su ID.
func (h *Hierarchy) FactorToBase(variantID string) (decimal.Decimal, bool) {
	i, ok := h.byID[variantID]
	if !ok {
		return decimal.Decimal{}, false
	}
	return h.variants[i].FactorToBase, true
}

// ToBase convierte una cantidad expresada en la variante dada a unidades base.
func (h *Hierarchy) ToBase(variantID string, qty decimal.Decimal) (decimal.Decimal, bool) {
	f, ok := h.FactorToBase(variantID)
	if !ok {
		return decimal.Decimal{}, false
	}
	return qty.Mul(f), true
}

// FromBase convierte una cantidad en unidades base a la variante dada.
func (h *Hierarchy) FromBase(variantID string, baseQty decimal.Decimal) (decimal.Decimal, bool) {
	f, ok := h.FactorToBase(variantID)
	if !ok {
		return decimal.Decimal{}, false
	}
	return baseQty.DivRound(f, QuantityScale), true
}
