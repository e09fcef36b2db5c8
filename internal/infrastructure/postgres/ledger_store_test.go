package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/repository"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
	"github.com/jhoicas/control-v/pkg/config"
)

// Estas pruebas necesitan una base PostgreSQL desechable: vacían el libro de picking y el catálogo.
const testDSNEnv = "CONTROLV_TEST_DATABASE_URL"

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s no definido", testDSNEnv)
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `DELETE FROM ledger_entries WHERE ledger = $1`, string(entity.LedgerPicking))
	require.NoError(t, err)
	return pool
}

func sumar(ctx context.Context, tx repository.LedgerTx, sku string, qty int64) error {
	list, err := tx.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range list {
		if e.SKU == sku {
			return tx.Update(ctx, e.ID, entity.EntryPatch{Quantity: e.Quantity + qty, RecordedAt: time.Now().UTC()})
		}
	}
	return tx.Insert(ctx, &entity.Entry{SKU: sku, Location: "P1", Quantity: qty, RecordedAt: time.Now().UTC()})
}

func TestTxRunner_InsertaYFusiona(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)
	store := NewLedgerStore(pool, realtime.NewHub())

	for i := 0; i < 2; i++ {
		require.NoError(t, runner.Run(ctx, entity.LedgerPicking, "A1", func(tx repository.LedgerTx) error {
			return sumar(ctx, tx, "A1", 4)
		}))
	}

	list, err := store.List(ctx, entity.LedgerPicking)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(8), list[0].Quantity)
	assert.Equal(t, entity.LedgerPicking, list[0].Ledger)
}

func TestEntryRepo_ClaveDuplicada_Conflicto(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewEntryRepository(pool, entity.LedgerPicking)

	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, &entity.Entry{SKU: "A1", Location: "P1", Quantity: 1, RecordedAt: now}))
	err := repo.Insert(ctx, &entity.Entry{SKU: "A1", Location: "P1", Quantity: 2, RecordedAt: now})
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, repo.Update(ctx, "no-existe", entity.EntryPatch{RecordedAt: now}), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Remove(ctx, "no-existe"), domain.ErrNotFound)
}

func TestTxRunner_ErrorHaceRollback(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)

	errCancelado := errors.New("cancelado por el operador")
	err := runner.Run(ctx, entity.LedgerPicking, "A1", func(tx repository.LedgerTx) error {
		if err := sumar(ctx, tx, "A1", 3); err != nil {
			return err
		}
		return errCancelado
	})
	assert.ErrorIs(t, err, errCancelado)

	list, err := NewEntryRepository(pool, entity.LedgerPicking).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTxRunner_FusionesConcurrentes(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- runner.Run(ctx, entity.LedgerPicking, "A1", func(tx repository.LedgerTx) error {
				return sumar(ctx, tx, "A1", 1)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := NewEntryRepository(pool, entity.LedgerPicking).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(writers), list[0].Quantity)
}

func TestLedgerStore_RemoveYRemoveAll(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	store := NewLedgerStore(pool, realtime.NewHub())

	e := &entity.Entry{SKU: "A1", Location: "P1", Quantity: 1, RecordedAt: time.Now().UTC()}
	require.NoError(t, store.Insert(ctx, entity.LedgerPicking, e))
	require.NoError(t, store.Insert(ctx, entity.LedgerPicking, &entity.Entry{SKU: "B2", Location: "P2", Quantity: 2, RecordedAt: time.Now().UTC()}))

	require.NoError(t, store.Remove(ctx, entity.LedgerPicking, e.ID))
	assert.ErrorIs(t, store.Remove(ctx, entity.LedgerPicking, e.ID), domain.ErrNotFound)

	require.NoError(t, store.RemoveAll(ctx, entity.LedgerPicking))
	list, err := store.List(ctx, entity.LedgerPicking)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogRepo_ReemplazaYCarga(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewCatalogRepository(pool)

	require.NoError(t, repo.Replace(ctx, entity.Catalog{
		"A1": {SKU: "A1", Description: "Tornillo"},
		"B2": {SKU: "B2", Description: "Tuerca", LocationHint: "P2"},
	}))
	require.NoError(t, repo.Replace(ctx, entity.Catalog{"C3": {SKU: "C3", Description: "Arandela"}}))

	cat, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cat, 1)
	assert.Equal(t, "Arandela", cat["C3"].Description)
}
