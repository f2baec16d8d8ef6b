package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// QuantityScale es la escala decimal de las cantidades derivadas (la división
// por factores de conversión no siempre es entera).
const QuantityScale = 9

// Tolerance es la tolerancia fija para comparar cantidades tras conversiones.
var Tolerance = decimal.New(1, -QuantityScale)

// QuantityEqual compara dos cantidades dentro de la tolerancia fija.
func QuantityEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// MovementSign devuelve la convención de signos del libro de inventario:
// entradas +1, salidas -1. El signo se aplica aquí, una sola vez, y no en
// cada consulta.
//
// INVENTORY_COUNT no es un delta sino una línea base absoluta: el conteo
// físico vigente fija la cantidad en unidades base y solo los movimientos
// posteriores al conteo suman o restan. Sumarlo como entrada duplicaría el
// lote (una fila por variante para la misma cantidad física) y jamás podría
// corregir hacia abajo, porque Quantity es no negativa.
func MovementSign(kind string) int {
	switch kind {
	case entity.MovementKindReceipt, entity.MovementKindTransferIn, entity.MovementKindCreditReturn:
		return 1
	case entity.MovementKindSale, entity.MovementKindExit, entity.MovementKindTransferOut:
		return -1
	default:
		return 0
	}
}

// NetQuantity aplica la convención de signos a las sumas por tipo de una
// variante y devuelve la cantidad neta firmada en esa variante.
// Un mapa vacío devuelve cero: la ausencia de movimientos es un estado válido.
func NetQuantity(sumsByKind map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for kind, sum := range sumsByKind {
		switch MovementSign(kind) {
		case 1:
			total = total.Add(sum)
		case -1:
			total = total.Sub(sum)
		}
	}
	return total
}
