package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos.
// Las filas son inmutables salvo el borrado lógico (Voided) y, para ventas,
// el estado de validación.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)

	// SumByKind suma las cantidades por tipo de movimiento para una variante en
	// una bodega, excluyendo anulados y ventas sin validar (predicado único de
	// exclusión, no repetido por pantalla). since acota a Date > since (exclusivo)
	// y asOf a Date <= asOf (inclusivo); nil = sin cota.
	SumByKind(articleID, unitVariantID, warehouseID string, since, asOf *time.Time) (map[string]decimal.Decimal, error)

	// LatestCount devuelve la fila más reciente de conteo físico no anulado del
	// ámbito (artículo, bodega) hasta asOf, prefiriendo la variante de menor
	// nivel dentro del lote. nil si nunca se ha contado.
	LatestCount(articleID, warehouseID string, asOf *time.Time) (*entity.Movement, error)

	ListByScope(articleID, warehouseID string, limit, offset int) ([]*entity.Movement, error)

	// ListByTransferID devuelve las filas que comparten grupo: las dos patas
	// de un traslado o el lote completo de un conteo físico.
	ListByTransferID(transferID string) ([]*entity.Movement, error)

	SetVoided(id string, voided bool) error
	SetValidated(id string) error
}
