package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementKindReceipt        = "RECEIPT"         // entrada por compra
	MovementKindSale           = "SALE"            // venta (solo validadas afectan stock)
	MovementKindExit           = "EXIT"            // salida manual
	MovementKindTransferIn     = "TRANSFER_IN"     // llegada de traslado
	MovementKindTransferOut    = "TRANSFER_OUT"    // salida de traslado
	MovementKindInventoryCount = "INVENTORY_COUNT" // conteo físico (corrección)
	MovementKindCreditReturn   = "CREDIT_RETURN"   // devolución por nota crédito
)

// Movement representa un hecho inmutable del libro de inventario: una cantidad
// de un artículo, en una unidad concreta, que entró o salió de una bodega.
// Quantity siempre es no negativa; el signo lo aplica el agregador según Kind.
// Una vez confirmado solo cambia Voided (borrado lógico) y, para ventas,
// Validated. Un traslado físico produce dos filas (TRANSFER_OUT en origen y
// TRANSFER_IN en destino) que comparten TransferID.
type Movement struct {
	ID            string
	TransferID    string // agrupa las dos patas de un traslado o el lote de un conteo
	ArticleID     string
	UnitVariantID string
	WarehouseID   string
	Kind          string
	Quantity      decimal.Decimal
	Validated     bool // solo significativo para SALE
	Voided        bool
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
	Note          string
}

// Affects indica si el movimiento cuenta para el stock: excluye anulados
// y ventas sin validar.
func (m *Movement) Affects() bool {
	if m.Voided {
		return false
	}
	if m.Kind == MovementKindSale && !m.Validated {
		return false
	}
	return true
}
