package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implementación de lectura de artículos sobre PostgreSQL.
type ArticleRepo struct {
	pool *pgxpool.Pool
}

// NewArticleRepository construye el adaptador de persistencia para artículos.
func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool}
}

// GetByID obtiene un artículo por ID; nil si no existe.
func (r *ArticleRepo) GetByID(id string) (*entity.Article, error) {
	query := `SELECT id, name, created_at, updated_at FROM articles WHERE id = $1`
	var a entity.Article
	err := r.pool.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get article", err)
	}
	return &a, nil
}
