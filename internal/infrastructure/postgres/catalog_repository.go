package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/repository"
)

var _ repository.CatalogStore = (*CatalogRepo)(nil)

// CatalogRepo persiste el último catálogo cargado.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository construye el repositorio.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// Load lee el catálogo completo.
func (r *CatalogRepo) Load(ctx context.Context) (entity.Catalog, error) {
	rows, err := r.pool.Query(ctx, `SELECT sku, description, location_hint FROM catalog_items`)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	defer rows.Close()

	out := entity.Catalog{}
	for rows.Next() {
		var it entity.CatalogItem
		if err := rows.Scan(&it.SKU, &it.Description, &it.LocationHint); err != nil {
			return nil, err
		}
		out[it.SKU] = it
	}
	return out, rows.Err()
}

// Replace sustituye el catálogo en una sola transacción (DELETE + COPY).
func (r *CatalogRepo) Replace(ctx context.Context, catalog entity.Catalog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM catalog_items`); err != nil {
		return fmt.Errorf("limpiar catálogo: %w", err)
	}
	rows := make([][]any, 0, len(catalog))
	for _, it := range catalog {
		rows = append(rows, []any{it.SKU, it.Description, it.LocationHint})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"catalog_items"}, []string{"sku", "description", "location_hint"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copiar catálogo: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
