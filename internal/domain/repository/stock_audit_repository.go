package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// StockAuditRepository define el puerto del registro de auditoría de stock
// (solo inserción).
type StockAuditRepository interface {
	Append(entry *entity.StockAudit) error
	ListByVariant(unitVariantID, warehouseID string, limit, offset int) ([]*entity.StockAudit, error)
}
