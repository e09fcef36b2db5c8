package repository

import (
	"context"

	"github.com/jhoicas/control-v/internal/domain/entity"
)

// CatalogStore persiste el catálogo de productos. Replace es atómico: nunca queda un catálogo a medias.
type CatalogStore interface {
	Load(ctx context.Context) (entity.Catalog, error)
	Replace(ctx context.Context, catalog entity.Catalog) error
}
