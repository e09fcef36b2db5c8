package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
)

// EntryRepo acceso a ledger_entries para un libro. Funciona con pool o con tx.
type EntryRepo struct {
	q    Querier
	kind entity.LedgerKind
}

// NewEntryRepository construye el repositorio sobre un Querier.
func NewEntryRepository(q Querier, kind entity.LedgerKind) *EntryRepo {
	return &EntryRepo{q: q, kind: kind}
}

// List devuelve las entradas del libro en orden de alta.
func (r *EntryRepo) List(ctx context.Context) ([]entity.Entry, error) {
	query := `SELECT id, sku, location, origin, destination, quantity, recorded_at, created_by
		FROM ledger_entries WHERE ledger = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, string(r.kind))
	if err != nil {
		return nil, fmt.Errorf("listar %s: %w", r.kind, err)
	}
	defer rows.Close()

	var list []entity.Entry
	for rows.Next() {
		e := entity.Entry{Ledger: r.kind}
		if err := rows.Scan(&e.ID, &e.SKU, &e.Location, &e.Origin, &e.Destination, &e.Quantity, &e.RecordedAt, &e.CreatedBy); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Insert inserta la entrada; la clave de identidad se calcula aquí para el índice único.
func (r *EntryRepo) Insert(ctx context.Context, e *entity.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Ledger = r.kind
	key := ledger.IdentityKeyFor(r.kind)(*e)
	query := `INSERT INTO ledger_entries (id, ledger, identity_key, sku, location, origin, destination, quantity, recorded_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, string(r.kind), key, e.SKU, e.Location, e.Origin, e.Destination, e.Quantity, e.RecordedAt.UTC(), e.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insertar en %s: %w", r.kind, err)
	}
	return nil
}

// Update aplica el patch; domain.ErrNotFound si la entrada no existe.
func (r *EntryRepo) Update(ctx context.Context, id string, patch entity.EntryPatch) error {
	query := `UPDATE ledger_entries SET quantity = $3, recorded_at = $4 WHERE ledger = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, string(r.kind), id, patch.Quantity, patch.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("actualizar en %s: %w", r.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Remove elimina una entrada; domain.ErrNotFound si no existe.
func (r *EntryRepo) Remove(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM ledger_entries WHERE ledger = $1 AND id = $2`, string(r.kind), id)
	if err != nil {
		return fmt.Errorf("eliminar de %s: %w", r.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveAll vacía el libro.
func (r *EntryRepo) RemoveAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM ledger_entries WHERE ledger = $1`, string(r.kind)); err != nil {
		return fmt.Errorf("vaciar %s: %w", r.kind, err)
	}
	return nil
}

// notify avisa a los oyentes; dentro de una tx se entrega al hacer commit.
func (r *EntryRepo) notify(ctx context.Context) error {
	_, err := r.q.Exec(ctx, `SELECT pg_notify($1, $2)`, changesChannel, string(r.kind))
	return err
}

// withTx ejecuta fn con un EntryRepo atado a una transacción, notificando el cambio.
func withTx(ctx context.Context, db txBeginner, kind entity.LedgerKind, fn func(repo *EntryRepo) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repo := NewEntryRepository(tx, kind)
	if err := fn(repo); err != nil {
		return err
	}
	if err := repo.notify(ctx); err != nil {
		return fmt.Errorf("notificar cambio: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
