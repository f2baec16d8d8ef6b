package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockAuditRepository = (*StockAuditRepo)(nil)

// StockAuditRepo implementación del registro de auditoría sobre PostgreSQL
// (usable con pool o tx). Solo inserción: no hay UPDATE ni DELETE.
type StockAuditRepo struct {
	q Querier
}

// NewStockAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAuditRepository(q Querier) *StockAuditRepo {
	return &StockAuditRepo{q: q}
}

// Append agrega una entrada de auditoría.
func (r *StockAuditRepo) Append(entry *entity.StockAudit) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_audit (id, unit_variant_id, warehouse_id, previous_qty, new_qty, actor, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.UnitVariantID, entry.WarehouseID,
		entry.PreviousQty, entry.NewQty, entry.Actor, entry.Reason, entry.CreatedAt)
	if err != nil {
		return storageErr("append stock audit", err)
	}
	return nil
}

// ListByVariant lista la auditoría de una variante en una bodega, más
// reciente primero.
func (r *StockAuditRepo) ListByVariant(unitVariantID, warehouseID string, limit, offset int) ([]*entity.StockAudit, error) {
	query := `
		SELECT id, unit_variant_id, warehouse_id, previous_qty, new_qty, actor, reason, created_at
		FROM stock_audit
		WHERE unit_variant_id = $1 AND warehouse_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, unitVariantID, warehouseID, limit, offset)
	if err != nil {
		return nil, storageErr("list stock audit", err)
	}
	defer rows.Close()

	var list []*entity.StockAudit
	for rows.Next() {
		var e entity.StockAudit
		if err := rows.Scan(&e.ID, &e.UnitVariantID, &e.WarehouseID,
			&e.PreviousQty, &e.NewQty, &e.Actor, &e.Reason, &e.CreatedAt); err != nil {
			return nil, storageErr("scan stock audit", err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list stock audit", err)
	}
	return list, nil
}
