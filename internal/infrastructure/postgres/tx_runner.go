package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/repository"
)

// Ensure TxRunner implements repository.LedgerTxRunner.
var _ repository.LedgerTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, toma un advisory lock por (libro, SKU) para serializar
// a los escritores del mismo producto y ejecuta fn con un repo atado a la tx.
func (r *TxRunner) Run(ctx context.Context, kind entity.LedgerKind, sku string, fn func(tx repository.LedgerTx) error) error {
	return withTx(ctx, r.pool, kind, func(repo *EntryRepo) error {
		if _, err := repo.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(kind)+":"+sku); err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
		return fn(repo)
	})
}
