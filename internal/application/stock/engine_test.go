package stock_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domstock "github.com/jhoicas/almacen-api/internal/domain/stock"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Catálogo de prueba: un artículo con la cadena pieza / caja (12) / cartón (4)
// y dos bodegas. El cartón acumula 48 piezas.
const (
	artID    = "art-001"
	whMain   = "wh-main"
	whNorth  = "wh-north"
	pieceID  = "uv-piece"
	boxID    = "uv-box"
	cartonID = "uv-carton"
)

func seedCatalog(s *memory.Store) {
	s.SeedArticle(entity.Article{ID: artID, Name: "Cuaderno rayado 100h"})
	s.SeedWarehouse(entity.Warehouse{ID: whMain, Name: "Bodega principal"})
	s.SeedWarehouse(entity.Warehouse{ID: whNorth, Name: "Sucursal norte"})
	s.SeedVariant(entity.UnitVariant{
		ID: pieceID, ArticleID: artID, Code: "PZA", Level: 0, Factor: decimal.NewFromInt(1),
	})
	s.SeedVariant(entity.UnitVariant{
		ID: boxID, ArticleID: artID, Code: "CJ12", Level: 1, Factor: decimal.NewFromInt(12),
	})
	s.SeedVariant(entity.UnitVariant{
		ID: cartonID, ArticleID: artID, Code: "CTN4", Level: 2, Factor: decimal.NewFromInt(4),
	})
}

func newTestEngine(s *memory.Store) *stock.Engine {
	return stock.NewEngine(s, s.Variants(), s.Movements(), logger.Nop())
}

// addMovement inserta un movimiento directamente en el libro, saltándose el
// caso de uso de registro (los tests del motor ejercitan solo la lectura).
func addMovement(t *testing.T, s *memory.Store, kind, variantID, warehouseID string, qty string, at time.Time) *entity.Movement {
	t.Helper()
	mov := &entity.Movement{
		ID:            uuid.New().String(),
		ArticleID:     artID,
		UnitVariantID: variantID,
		WarehouseID:   warehouseID,
		Kind:          kind,
		Quantity:      decimal.RequireFromString(qty),
		Validated:     kind == entity.MovementKindSale,
		Date:          at,
		CreatedAt:     at,
	}
	require.NoError(t, s.Movements().Create(mov))
	return mov
}

func requireQty(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	w := decimal.RequireFromString(want)
	require.True(t, domstock.QuantityEqual(w, got), "cantidad esperada %s, fue %s", w, got)
}

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// Compra de 10 cajas y venta de 5 piezas: el stock queda en 115 piezas y se
// expresa en cualquier variante de la cadena.
func TestCompute_RecepcionYVenta(t *testing.T) {
	s := memory.NewStore()
	seedCatalog(s)
	e := newTestEngine(s)
	ctx := context.Background()

	addMovement(t, s, entity.MovementKindReceipt, boxID, whMain, "10", t0)
	addMovement(t, s, entity.MovementKindSale, pieceID, whMain, "5", t0.Add(time.Hour))

	res, err := e.Compute(ctx, artID, pieceID, whMain, nil)
	require.NoError(t, err)
	requireQty(t, "115", res.Quantity)
	assert.Equal(t, "PZA", res.VariantCode)
	assert.False(t, res.Clamped)

	res, err = e.Compute(ctx, artID, boxID, whMain, nil)
	require.NoError(t, err)
	requireQty(t, "9.583333333", res.Quantity) // 115 / 12

	res, err = e.Compute(ctx, artID, cartonID, whMain, nil)
	require.NoError(t, err)
	requireQty(t, "2.395833333", res.Quantity) // 115 / 48
}

// El resultado no depende del orden de inserción de los movimientos.
func TestCompute_IndependienteDelOrden(t *testing.T) {
	build := func(order []int) decimal.Decimal {
		s := memory.NewStore()
		seedCatalog(s)
		movs := []struct {
			kind, variant, qty string
			offset             time.Duration
		}{
			{entity.MovementKindReceipt, boxID, "10", 0},
			{entity.MovementKindSale, pieceID, "5", time.Hour},
			{entity.MovementKindCreditReturn, pieceID, "2", 2 * time.Hour},
			{entity.MovementKindExit, boxID, "1", 3 * time.Hour},
		}
		for _, i := range order {
			m := movs[i]
			addMovement(t, s, m.kind, m.variant, whMain, m.qty, t0.Add(m.offset))
		}
		res, err := newTestEngine(s).Compute(context.Background(), artID, pieceID, whMain, nil)
		require.NoError(t, err)
		return res.Quantity
	}

	// 120 - 5 + 2 - 12 = 105
	want := build([]int{0, 1, 2, 3})
	requireQty(t, "105", want)
	for _, order := range [][]int{{3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}} {
		got := build(order)
		require.True(t, want.Equal(got), "orden %v produjo %s en vez de %s", order, got, want)
	}
}

// Compute es de solo lectura: repetirlo no altera el resultado ni el estado.
func TestCompute_Idempotente(t *testing.T) {
	s := memory.NewStore()
	seedCatalog(s)
	e := newTestEngine(s)
	ctx := context.Background()

	addMovement(t, s, entity.MovementKindReceipt, boxID, whMain, "10", t0)

	first, err := e.Compute(ctx, artID, pieceID, whMain, nil)
	require.NoError(t, err)
	second, err := e.Compute(ctx, artID, pieceID, whMain, nil)
	require.NoError(t, err)
	assert.True(t, first.Quantity.Equal(second.Quantity))
	assert.Equal(t, 0, s.AuditCount(), "un cómputo no deja rastro en auditoría")
}

func TestCompute_FechaDeCorte(t *testing.T) {
	s := memory.NewStore()
	seedCatalog(s)
	e := newTestEngine(s)
	ctx := context.Background()

	addMovement(t, s, entity.MovementKindReceipt, boxID, whMain, "10", t0)
	addMovement(t, s, entity.MovementKindSale, pieceID, whMain, "5", t0.Add(time.Hour))

	// la venta es posterior al corte y no cuenta
	cut := t0.Add(30 * time.Minute)
	res, err := e.Compute(ctx, artID, pieceID, whMain, &cut)
	require.NoError(t, err)
	requireQty(t, "120", res.Quantity)

	before := t0.Add(-time.Minute)
	res, err = e.Compute(ctx, artID, pieceID, whMain, &before)
	require.NoError(t, err)
	requireQty(t, "0", res.Quantity)
}

func TestCompute_SinMovimientos(t *testing.T) {
	s := memory.NewStore()
	seedCatalog(s)

	res, err := newTestEngine(s).Compute(context.Background(), artID, pieceID, whMain, nil)
	require.NoError(t, err)
	assert.True(t, res.Quantity.IsZero(), "sin movimientos el stock es cero, no un error")
	assert.False(t, res.Clamped)
}

func TestCompute_IgnoraAnuladosYVentasSinValidar(t *testing.T) {
	s := memory.NewStore()
	seedCatalog(s)

	addMovement(t, s, entity.MovementKindReceipt, boxID, whMain, "10", t0)

	voided := addMovement(t, s, entity.MovementKindReceipt, boxID, whMain, "99", t0.Add(time.Minute))
	require.NoError(t, s.Movements().SetVoided(voided.ID, true))

	unvalidated := &entity.Movement{
		ID:            uuid.New().String(),
		ArticleID:     artID,
		UnitVariantID: pieceID,
		WarehouseID:   whMain,
		Kind:          entity.MovementKindSale,
		Quantity:      decimal.NewFromInt(50),
		Date:          t0.Add(2 * time.Minute),
		CreatedAt:     t0.Add(2 * time.Minute),
	}
	require.NoError(t, s.Movements().Create(unvalidated))

	res, err := newTestEngine(s).Compute(context.Background(), artID, pieceID, whMain, nil)
	require.NoError(t, err)
	// ni la recepción anulada ni la venta pendiente afectan el stock
	requireQty(t, "120", res.Quantity)
}

// Un libro inconsistente (más salidas que entradas) se recorta a cero y se
// reporta exactamente una advertencia por cómputo.
func TestCompute_RecorteNegativoConAdvertenciaUnica(t *testing.T) {
	s := memory.NewStore()
	seedCatalog(s)

	var buf bytes.Buffer
	e := stock.NewEngine(s, s.Variants(), s.Movements(), logger.FromZerolog(zerolog.New(&buf)))

	addMovement(t, s, entity.MovementKindReceipt, pieceID, whMain, "10", t0)
	addMovement(t, s, entity.MovementKindSale, pieceID, whMain, "25", t0.Add(time.Hour))

	res, err := e.Compute(context.Background(), artID, pieceID, whMain, nil)
	require.NoError(t, err)
	assert.True(t, res.Quantity.IsZero(), "el total negativo se presenta como cero")
	assert.True(t, res.Clamped)

	warns := strings.Count(buf.String(), "total base negativo")
	assert.Equal(t, 1, warns, "exactamente una advertencia por cómputo")
}

func TestCompute_VarianteFueraDeLaJerarquia(t *testing.T) {
	s := memory.NewStore()
	seedCatalog(s)

	_, err := newTestEngine(s).Compute(context.Background(), artID, "uv-ajena", whMain, nil)
	assert.ErrorIs(t, err, domain.ErrMissingUnit)
}

func TestCompute_ArticuloSinUnidades(t *testing.T) {
	s := memory.NewStore()
	s.SeedArticle(entity.Article{ID: "art-huerfano", Name: "Sin unidades"})
	s.SeedWarehouse(entity.Warehouse{ID: whMain, Name: "Bodega principal"})

	_, err := newTestEngine(s).Compute(context.Background(), "art-huerfano", pieceID, whMain, nil)
	assert.ErrorIs(t, err, domain.ErrMissingUnit)
}
