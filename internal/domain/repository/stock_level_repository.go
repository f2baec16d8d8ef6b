package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// StockLevelRepository define el puerto de la caché materializada de stock
// por (variante, bodega). Usado dentro de transacciones para garantizar
// consistencia.
type StockLevelRepository interface {
	// Get devuelve nil si la fila aún no existe (la caché se crea perezosamente).
	Get(unitVariantID, warehouseID string) (*entity.StockLevel, error)
	Upsert(level *entity.StockLevel) error
	ListByArticle(articleID, warehouseID string) ([]entity.StockLevel, error)

	// LockScope toma el bloqueo exclusivo del ámbito (artículo, bodega) por la
	// duración de la transacción actual. Cubre las filas de caché aún no
	// creadas, que un SELECT FOR UPDATE no alcanzaría.
	LockScope(articleID, warehouseID string) error
}
