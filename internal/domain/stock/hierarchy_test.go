package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/stock"
)

// variante de prueba: la cadena típica pieza / caja / cartón.
func testVariant(id string, level int, factor int64) entity.UnitVariant {
	return entity.UnitVariant{
		ID:        id,
		ArticleID: "art-1",
		Code:      id,
		Level:     level,
		Factor:    decimal.NewFromInt(factor),
	}
}

func TestBuildHierarchy_FactoresAcumulados(t *testing.T) {
	h, err := stock.BuildHierarchy([]entity.UnitVariant{
		testVariant("CARTON", 2, 4),
		testVariant("PIECE", 0, 1),
		testVariant("BOX", 1, 12),
	})
	require.NoError(t, err)

	rvs := h.Variants()
	require.Len(t, rvs, 3)
	assert.Equal(t, "PIECE", rvs[0].Variant.ID, "la jerarquía se ordena ascendente por nivel")
	assert.Equal(t, "BOX", rvs[1].Variant.ID)
	assert.Equal(t, "CARTON", rvs[2].Variant.ID)

	// base = 1, caja = 12, cartón = 12 × 4 = 48
	assert.True(t, rvs[0].FactorToBase.Equal(decimal.NewFromInt(1)))
	assert.True(t, rvs[1].FactorToBase.Equal(decimal.NewFromInt(12)))
	assert.True(t, rvs[2].FactorToBase.Equal(decimal.NewFromInt(48)))

	assert.Equal(t, "PIECE", h.Base().Variant.ID)
}

func TestBuildHierarchy_FactorBaseSeIgnora(t *testing.T) {
	// El factor almacenado de la base no importa: su factor acumulado es 1.
	h, err := stock.BuildHierarchy([]entity.UnitVariant{
		testVariant("PIECE", 0, 7),
		testVariant("BOX", 1, 12),
	})
	require.NoError(t, err)

	f, ok := h.FactorToBase("PIECE")
	require.True(t, ok)
	assert.True(t, f.Equal(decimal.NewFromInt(1)))
	f, ok = h.FactorToBase("BOX")
	require.True(t, ok)
	assert.True(t, f.Equal(decimal.NewFromInt(12)))
}

func TestBuildHierarchy_IgnoraEliminadas(t *testing.T) {
	deleted := testVariant("PALLET", 2, 10)
	deleted.Deleted = true

	h, err := stock.BuildHierarchy([]entity.UnitVariant{
		testVariant("PIECE", 0, 1),
		testVariant("BOX", 1, 12),
		deleted,
	})
	require.NoError(t, err)
	assert.Len(t, h.Variants(), 2)

	_, ok := h.FactorToBase("PALLET")
	assert.False(t, ok, "una variante eliminada no participa en conversiones")
}

func TestBuildHierarchy_Errores(t *testing.T) {
	cases := []struct {
		name     string
		variants []entity.UnitVariant
		wantErr  error
	}{
		{"sin variantes", nil, domain.ErrMissingUnit},
		{
			"todas eliminadas",
			func() []entity.UnitVariant {
				v := testVariant("PIECE", 0, 1)
				v.Deleted = true
				return []entity.UnitVariant{v}
			}(),
			domain.ErrMissingUnit,
		},
		{
			"sin nivel base",
			[]entity.UnitVariant{testVariant("BOX", 1, 12)},
			domain.ErrConversionData,
		},
		{
			"dos bases",
			[]entity.UnitVariant{testVariant("PIECE", 0, 1), testVariant("UNIT", 0, 1)},
			domain.ErrConversionData,
		},
		{
			"niveles duplicados",
			[]entity.UnitVariant{
				testVariant("PIECE", 0, 1),
				testVariant("BOX", 1, 12),
				testVariant("BAG", 1, 6),
			},
			domain.ErrConversionData,
		},
		{
			"factor cero",
			[]entity.UnitVariant{testVariant("PIECE", 0, 1), testVariant("BOX", 1, 0)},
			domain.ErrConversionData,
		},
		{
			"factor negativo",
			[]entity.UnitVariant{testVariant("PIECE", 0, 1), testVariant("BOX", 1, -3)},
			domain.ErrConversionData,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stock.BuildHierarchy(tc.variants)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// TestHierarchy_CierreDeConversion: convertir a base y de vuelta reproduce la
// cantidad original dentro de la tolerancia, para toda variante de la cadena.
func TestHierarchy_CierreDeConversion(t *testing.T) {
	h, err := stock.BuildHierarchy([]entity.UnitVariant{
		testVariant("PIECE", 0, 1),
		testVariant("BOX", 1, 12),
		testVariant("CARTON", 2, 4),
	})
	require.NoError(t, err)

	quantities := []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.NewFromInt(115),
		decimal.RequireFromString("9.583333333"),
		decimal.RequireFromString("0.25"),
	}
	for _, rv := range h.Variants() {
		for _, q := range quantities {
			base, ok := h.ToBase(rv.Variant.ID, q)
			require.True(t, ok)
			back, ok := h.FromBase(rv.Variant.ID, base)
			require.True(t, ok)
			assert.True(t, stock.QuantityEqual(q, back),
				"ida y vuelta por %s debe cerrar: %s vs %s", rv.Variant.ID, q, back)
		}
	}
}

func TestHierarchy_VarianteDesconocida(t *testing.T) {
	h, err := stock.BuildHierarchy([]entity.UnitVariant{testVariant("PIECE", 0, 1)})
	require.NoError(t, err)

	_, ok := h.ToBase("OTRA", decimal.NewFromInt(1))
	assert.False(t, ok)
	_, ok = h.FromBase("OTRA", decimal.NewFromInt(1))
	assert.False(t, ok)
}
