package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.UnitVariantRepository = (*UnitVariantRepo)(nil)

// UnitVariantRepo implementación del puerto de variantes de unidad sobre
// PostgreSQL (usable con pool o tx).
type UnitVariantRepo struct {
	q Querier
}

// NewUnitVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUnitVariantRepository(q Querier) *UnitVariantRepo {
	return &UnitVariantRepo{q: q}
}

// ListByArticle devuelve las variantes no eliminadas del artículo.
func (r *UnitVariantRepo) ListByArticle(articleID string) ([]entity.UnitVariant, error) {
	query := `
		SELECT id, article_id, code, level, factor, deleted, created_at, updated_at
		FROM unit_variants
		WHERE article_id = $1 AND deleted = false
		ORDER BY level`
	rows, err := r.q.Query(context.Background(), query, articleID)
	if err != nil {
		return nil, storageErr("list unit variants", err)
	}
	defer rows.Close()

	var list []entity.UnitVariant
	for rows.Next() {
		var v entity.UnitVariant
		if err := rows.Scan(&v.ID, &v.ArticleID, &v.Code, &v.Level, &v.Factor,
			&v.Deleted, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, storageErr("scan unit variant", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list unit variants", err)
	}
	return list, nil
}

// GetByID obtiene una variante por ID; nil si no existe.
func (r *UnitVariantRepo) GetByID(id string) (*entity.UnitVariant, error) {
	query := `
		SELECT id, article_id, code, level, factor, deleted, created_at, updated_at
		FROM unit_variants WHERE id = $1`
	var v entity.UnitVariant
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &v.ArticleID, &v.Code, &v.Level, &v.Factor,
		&v.Deleted, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get unit variant", err)
	}
	return &v, nil
}
