package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// UnitVariantRepository define el puerto de lectura de variantes de unidad.
type UnitVariantRepository interface {
	// ListByArticle devuelve las variantes no eliminadas de un artículo,
	// sin orden garantizado (la jerarquía ordena y valida).
	ListByArticle(articleID string) ([]entity.UnitVariant, error)
	GetByID(id string) (*entity.UnitVariant, error)
}
