package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de la caché de stock sobre PostgreSQL
// (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get devuelve la fila de caché o nil si aún no se ha materializado.
func (r *StockLevelRepo) Get(unitVariantID, warehouseID string) (*entity.StockLevel, error) {
	query := `
		SELECT unit_variant_id, warehouse_id, article_id, quantity, updated_at
		FROM stock_levels WHERE unit_variant_id = $1 AND warehouse_id = $2`
	var s entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, unitVariantID, warehouseID).Scan(
		&s.UnitVariantID, &s.WarehouseID, &s.ArticleID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get stock level", err)
	}
	return &s, nil
}

// Upsert inserta o sobrescribe la fila de caché (por variante y bodega).
func (r *StockLevelRepo) Upsert(level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (unit_variant_id, warehouse_id, article_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (unit_variant_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		level.UnitVariantID, level.WarehouseID, level.ArticleID, level.Quantity, level.UpdatedAt)
	if err != nil {
		return storageErr("upsert stock level", err)
	}
	return nil
}

// ListByArticle devuelve las filas de caché del artículo en la bodega
// (ruta rápida de lectura para la UI).
func (r *StockLevelRepo) ListByArticle(articleID, warehouseID string) ([]entity.StockLevel, error) {
	query := `
		SELECT sl.unit_variant_id, sl.warehouse_id, sl.article_id, sl.quantity, sl.updated_at
		FROM stock_levels sl
		JOIN unit_variants uv ON uv.id = sl.unit_variant_id
		WHERE sl.article_id = $1 AND sl.warehouse_id = $2
		ORDER BY uv.level`
	rows, err := r.q.Query(context.Background(), query, articleID, warehouseID)
	if err != nil {
		return nil, storageErr("list stock levels", err)
	}
	defer rows.Close()

	var list []entity.StockLevel
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.UnitVariantID, &s.WarehouseID, &s.ArticleID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, storageErr("scan stock level", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list stock levels", err)
	}
	return list, nil
}

// LockScope toma el lock consultivo transaccional del ámbito (artículo,
// bodega). A diferencia de SELECT FOR UPDATE, cubre también las filas de
// caché que todavía no existen.
func (r *StockLevelRepo) LockScope(articleID, warehouseID string) error {
	_, err := r.q.Exec(context.Background(),
		`SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, articleID, warehouseID)
	if err != nil {
		return storageErr("lock scope", err)
	}
	return nil
}
