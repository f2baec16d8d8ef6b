package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// ArticleRepository define el puerto de lectura de artículos. La administración
// del catálogo ocurre en otras pantallas; el motor solo necesita verificar
// existencia.
type ArticleRepository interface {
	GetByID(id string) (*entity.Article, error)
}
