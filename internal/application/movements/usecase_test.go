package movements_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/movements"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domstock "github.com/jhoicas/almacen-api/internal/domain/stock"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

const (
	artID   = "art-001"
	whMain  = "wh-main"
	whNorth = "wh-north"
	pieceID = "uv-piece"
	boxID   = "uv-box"
)

// newFixture arma el catálogo mínimo (pieza / caja de 12, dos bodegas) sobre
// el almacén en memoria y devuelve el caso de uso listo para registrar.
func newFixture() (*memory.Store, *stock.Engine, *movements.UseCase) {
	s := memory.NewStore()
	s.SeedArticle(entity.Article{ID: artID, Name: "Cuaderno rayado 100h"})
	s.SeedWarehouse(entity.Warehouse{ID: whMain, Name: "Bodega principal"})
	s.SeedWarehouse(entity.Warehouse{ID: whNorth, Name: "Sucursal norte"})
	s.SeedVariant(entity.UnitVariant{
		ID: pieceID, ArticleID: artID, Code: "PZA", Level: 0, Factor: decimal.NewFromInt(1),
	})
	s.SeedVariant(entity.UnitVariant{
		ID: boxID, ArticleID: artID, Code: "CJ12", Level: 1, Factor: decimal.NewFromInt(12),
	})

	e := stock.NewEngine(s, s.Variants(), s.Movements(), logger.Nop())
	uc := movements.NewUseCase(s, e, s.Articles(), s.Warehouses(), s.Variants())
	return s, e, uc
}

func requireQty(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	w := decimal.RequireFromString(want)
	require.True(t, domstock.QuantityEqual(w, got), "cantidad esperada %s, fue %s", w, got)
}

func cachedQty(t *testing.T, s *memory.Store, variantID, warehouseID string) decimal.Decimal {
	t.Helper()
	lv, err := s.Levels().Get(variantID, warehouseID)
	require.NoError(t, err)
	require.NotNil(t, lv, "la fila de caché debe existir para %s en %s", variantID, warehouseID)
	return lv.Quantity
}

func receipt(qty string, variantID string) movements.MovementInput {
	return movements.MovementInput{
		ArticleID:     artID,
		UnitVariantID: variantID,
		WarehouseID:   whMain,
		Kind:          entity.MovementKindReceipt,
		Quantity:      decimal.RequireFromString(qty),
		Actor:         "tester",
	}
}

// Compra de 10 cajas y venta validada de 5 piezas: quedan 115 piezas y la
// caché refleja cada variante.
func TestRegister_CompraYVentaValidada(t *testing.T) {
	s, e, uc := newFixture()
	ctx := context.Background()

	mov, err := uc.Register(ctx, receipt("10", boxID))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindReceipt, mov.Kind)
	requireQty(t, "120", cachedQty(t, s, pieceID, whMain))
	requireQty(t, "10", cachedQty(t, s, boxID, whMain))

	_, err = uc.Register(ctx, movements.MovementInput{
		ArticleID:     artID,
		UnitVariantID: pieceID,
		WarehouseID:   whMain,
		Kind:          entity.MovementKindSale,
		Quantity:      decimal.NewFromInt(5),
		Validated:     true,
		Actor:         "cajero",
	})
	require.NoError(t, err)

	res, err := e.Compute(ctx, artID, pieceID, whMain, nil)
	require.NoError(t, err)
	requireQty(t, "115", res.Quantity)
	requireQty(t, "115", cachedQty(t, s, pieceID, whMain))
	requireQty(t, "9.583333333", cachedQty(t, s, boxID, whMain))
}

func TestRegister_VentaValidadaSinStock(t *testing.T) {
	s, _, uc := newFixture()
	ctx := context.Background()

	_, err := uc.Register(ctx, receipt("1", boxID)) // 12 piezas
	require.NoError(t, err)

	_, err = uc.Register(ctx, movements.MovementInput{
		ArticleID:     artID,
		UnitVariantID: pieceID,
		WarehouseID:   whMain,
		Kind:          entity.MovementKindSale,
		Quantity:      decimal.NewFromInt(13),
		Validated:     true,
		Actor:         "cajero",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// el rechazo no deja rastro en el libro
	movs, listErr := s.Movements().ListByScope(artID, whMain, 0, 0)
	require.NoError(t, listErr)
	assert.Len(t, movs, 1)
	requireQty(t, "12", cachedQty(t, s, pieceID, whMain))
}

// Una venta sin validar se registra pero no toca el stock hasta validarse.
func TestRegister_VentaSinValidarYLuegoValidada(t *testing.T) {
	s, e, uc := newFixture()
	ctx := context.Background()

	_, err := uc.Register(ctx, receipt("10", boxID))
	require.NoError(t, err)

	sale, err := uc.Register(ctx, movements.MovementInput{
		ArticleID:     artID,
		UnitVariantID: pieceID,
		WarehouseID:   whMain,
		Kind:          entity.MovementKindSale,
		Quantity:      decimal.NewFromInt(5),
		Validated:     false,
		Actor:         "cajero",
	})
	require.NoError(t, err)
	assert.False(t, sale.Validated)

	res, err := e.Compute(ctx, artID, pieceID, whMain, nil)
	require.NoError(t, err)
	requireQty(t, "120", res.Quantity)
	requireQty(t, "120", cachedQty(t, s, pieceID, whMain))

	require.NoError(t, uc.ValidateSale(ctx, sale.ID, "supervisor"))

	got, err := s.Movements().GetByID(sale.ID)
	require.NoError(t, err)
	assert.True(t, got.Validated)

	res, err = e.Compute(ctx, artID, pieceID, whMain, nil)
	require.NoError(t, err)
	requireQty(t, "115", res.Quantity)
	requireQty(t, "115", cachedQty(t, s, pieceID, whMain))
}

func TestValidateSale_SinStockSuficiente(t *testing.T) {
	s, _, uc := newFixture()
	ctx := context.Background()

	_, err := uc.Register(ctx, receipt("1", boxID)) // 12 piezas
	require.NoError(t, err)

	// sin validar no hay chequeo: la venta imposible entra al libro
	sale, err := uc.Register(ctx, movements.MovementInput{
		ArticleID:     artID,
		UnitVariantID: pieceID,
		WarehouseID:   whMain,
		Kind:          entity.MovementKindSale,
		Quantity:      decimal.NewFromInt(200),
		Actor:         "cajero",
	})
	require.NoError(t, err)

	err = uc.ValidateSale(ctx, sale.ID, "supervisor")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := s.Movements().GetByID(sale.ID)
	require.NoError(t, err)
	assert.False(t, got.Validated, "la validación rechazada no marca la venta")
}

func TestValidateSale_Conflictos(t *testing.T) {
	_, _, uc := newFixture()
	ctx := context.Background()

	rec, err := uc.Register(ctx, receipt("10", boxID))
	require.NoError(t, err)

	sale, err := uc.Register(ctx, movements.MovementInput{
		ArticleID:     artID,
		UnitVariantID: pieceID,
		WarehouseID:   whMain,
		Kind:          entity.MovementKindSale,
		Quantity:      decimal.NewFromInt(5),
		Actor:         "cajero",
	})
	require.NoError(t, err)

	require.NoError(t, uc.ValidateSale(ctx, sale.ID, "supervisor"))
	assert.ErrorIs(t, uc.ValidateSale(ctx, sale.ID, "supervisor"), domain.ErrConflict)
	assert.ErrorIs(t, uc.ValidateSale(ctx, rec.ID, "supervisor"), domain.ErrConflict,
		"solo las ventas se validan")
	assert.ErrorIs(t, uc.ValidateSale(ctx, "mov-inexistente", "supervisor"), domain.ErrNotFound)
}

// Un traslado produce dos filas con el mismo grupo: resta en origen y suma en
// destino, ambas cachés en la misma transacción.
func TestRegister_Traslado(t *testing.T) {
	s, _, uc := newFixture()
	ctx := context.Background()

	_, err := uc.Register(ctx, receipt("10", boxID))
	require.NoError(t, err)

	out, err := uc.Register(ctx, movements.MovementInput{
		ArticleID:       artID,
		UnitVariantID:   boxID,
		FromWarehouseID: whMain,
		ToWarehouseID:   whNorth,
		Kind:            movements.KindTransfer,
		Quantity:        decimal.NewFromInt(2),
		Actor:           "almacenista",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindTransferOut, out.Kind)
	require.NotEmpty(t, out.TransferID)

	legs, err := s.Movements().ListByTransferID(out.TransferID)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	kinds := map[string]string{}
	for _, m := range legs {
		kinds[m.Kind] = m.WarehouseID
	}
	assert.Equal(t, whMain, kinds[entity.MovementKindTransferOut])
	assert.Equal(t, whNorth, kinds[entity.MovementKindTransferIn])

	requireQty(t, "96", cachedQty(t, s, pieceID, whMain))  // 120 - 24
	requireQty(t, "24", cachedQty(t, s, pieceID, whNorth)) // 2 cajas
}

func TestRegister_TrasladoSinStock(t *testing.T) {
	s, _, uc := newFixture()
	ctx := context.Background()

	_, err := uc.Register(ctx, receipt("1", boxID))
	require.NoError(t, err)

	_, err = uc.Register(ctx, movements.MovementInput{
		ArticleID:       artID,
		UnitVariantID:   boxID,
		FromWarehouseID: whMain,
		ToWarehouseID:   whNorth,
		Kind:            movements.KindTransfer,
		Quantity:        decimal.NewFromInt(5),
		Actor:           "almacenista",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	movs, listErr := s.Movements().ListByScope(artID, whMain, 0, 0)
	require.NoError(t, listErr)
	assert.Len(t, movs, 1, "el traslado rechazado no escribe ninguna pata")
}

// Anular una pata de un traslado anula ambas: representan un único hecho
// físico, y el stock vuelve al estado previo en las dos bodegas.
func TestVoid_TrasladoAnulaAmbasPatas(t *testing.T) {
	s, e, uc := newFixture()
	ctx := context.Background()

	_, err := uc.Register(ctx, receipt("10", boxID))
	require.NoError(t, err)

	out, err := uc.Register(ctx, movements.MovementInput{
		ArticleID:       artID,
		UnitVariantID:   boxID,
		FromWarehouseID: whMain,
		ToWarehouseID:   whNorth,
		Kind:            movements.KindTransfer,
		Quantity:        decimal.NewFromInt(2),
		Actor:           "almacenista",
	})
	require.NoError(t, err)

	require.NoError(t, uc.Void(ctx, out.ID, "supervisor", "traslado erróneo"))

	legs, err := s.Movements().ListByTransferID(out.TransferID)
	require.NoError(t, err)
	for _, m := range legs {
		assert.True(t, m.Voided, "ambas patas quedan anuladas")
	}

	res, err := e.Compute(ctx, artID, pieceID, whMain, nil)
	require.NoError(t, err)
	requireQty(t, "120", res.Quantity)
	res, err = e.Compute(ctx, artID, pieceID, whNorth, nil)
	require.NoError(t, err)
	requireQty(t, "0", res.Quantity)

	requireQty(t, "120", cachedQty(t, s, pieceID, whMain))
	requireQty(t, "0", cachedQty(t, s, pieceID, whNorth))
}

func TestVoid_MovimientoSimple(t *testing.T) {
	s, _, uc := newFixture()
	ctx := context.Background()

	rec, err := uc.Register(ctx, receipt("10", boxID))
	require.NoError(t, err)

	require.NoError(t, uc.Void(ctx, rec.ID, "supervisor", "factura duplicada"))
	requireQty(t, "0", cachedQty(t, s, pieceID, whMain))

	assert.ErrorIs(t, uc.Void(ctx, rec.ID, "supervisor", "de nuevo"), domain.ErrConflict)
	assert.ErrorIs(t, uc.Void(ctx, "mov-inexistente", "supervisor", ""), domain.ErrNotFound)
}

func TestRegister_EntradasInvalidas(t *testing.T) {
	_, _, uc := newFixture()
	ctx := context.Background()

	cases := []struct {
		name    string
		in      movements.MovementInput
		wantErr error
	}{
		{
			"cantidad cero",
			movements.MovementInput{
				ArticleID: artID, UnitVariantID: pieceID, WarehouseID: whMain,
				Kind: entity.MovementKindReceipt, Quantity: decimal.Zero,
			},
			domain.ErrInvalidQuantity,
		},
		{
			"cantidad negativa",
			movements.MovementInput{
				ArticleID: artID, UnitVariantID: pieceID, WarehouseID: whMain,
				Kind: entity.MovementKindReceipt, Quantity: decimal.NewFromInt(-3),
			},
			domain.ErrInvalidQuantity,
		},
		{
			"sin bodega",
			movements.MovementInput{
				ArticleID: artID, UnitVariantID: pieceID,
				Kind: entity.MovementKindReceipt, Quantity: decimal.NewFromInt(1),
			},
			domain.ErrInvalidInput,
		},
		{
			"conteo directo",
			movements.MovementInput{
				ArticleID: artID, UnitVariantID: pieceID, WarehouseID: whMain,
				Kind: entity.MovementKindInventoryCount, Quantity: decimal.NewFromInt(1),
			},
			domain.ErrInvalidInput,
		},
		{
			"traslado a la misma bodega",
			movements.MovementInput{
				ArticleID: artID, UnitVariantID: pieceID,
				FromWarehouseID: whMain, ToWarehouseID: whMain,
				Kind: movements.KindTransfer, Quantity: decimal.NewFromInt(1),
			},
			domain.ErrInvalidInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Register(ctx, tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRegister_CatalogoInexistente(t *testing.T) {
	s, _, uc := newFixture()
	ctx := context.Background()

	// variante de otro artículo
	s.SeedArticle(entity.Article{ID: "art-otro", Name: "Otro"})
	s.SeedVariant(entity.UnitVariant{
		ID: "uv-otro", ArticleID: "art-otro", Code: "PZA", Level: 0, Factor: decimal.NewFromInt(1),
	})

	cases := []struct {
		name string
		in   movements.MovementInput
	}{
		{
			"artículo desconocido",
			movements.MovementInput{
				ArticleID: "art-fantasma", UnitVariantID: pieceID, WarehouseID: whMain,
				Kind: entity.MovementKindReceipt, Quantity: decimal.NewFromInt(1),
			},
		},
		{
			"variante de otro artículo",
			movements.MovementInput{
				ArticleID: artID, UnitVariantID: "uv-otro", WarehouseID: whMain,
				Kind: entity.MovementKindReceipt, Quantity: decimal.NewFromInt(1),
			},
		},
		{
			"bodega desconocida",
			movements.MovementInput{
				ArticleID: artID, UnitVariantID: pieceID, WarehouseID: "wh-fantasma",
				Kind: entity.MovementKindReceipt, Quantity: decimal.NewFromInt(1),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Register(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}
