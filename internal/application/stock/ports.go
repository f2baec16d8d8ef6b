package stock

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// o se escriben todas las filas de caché/auditoría del ámbito, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		unitRepo repository.UnitVariantRepository,
		levelRepo repository.StockLevelRepository,
		auditRepo repository.StockAuditRepository,
	) error) error
}
