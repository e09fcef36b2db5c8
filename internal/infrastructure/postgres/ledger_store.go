package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/repository"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
)

var _ repository.LedgerStore = (*LedgerStore)(nil)

// listenRetry espera entre reintentos de LISTEN si se cae la conexión.
const listenRetry = 3 * time.Second

// LedgerStore libros sobre PostgreSQL. Los cambios de cualquier instancia llegan vía LISTEN/NOTIFY.
type LedgerStore struct {
	pool *pgxpool.Pool
	hub  *realtime.Hub
}

// NewLedgerStore construye el store con el pool y el hub local de suscriptores.
func NewLedgerStore(pool *pgxpool.Pool, hub *realtime.Hub) *LedgerStore {
	return &LedgerStore{pool: pool, hub: hub}
}

// Name identifica la implementación.
func (s *LedgerStore) Name() string { return "postgres" }

// List devuelve el libro completo.
func (s *LedgerStore) List(ctx context.Context, kind entity.LedgerKind) ([]entity.Entry, error) {
	return NewEntryRepository(s.pool, kind).List(ctx)
}

// Subscribe registra el suscriptor y le envía el estado actual.
func (s *LedgerStore) Subscribe(ctx context.Context, kind entity.LedgerKind) (<-chan []entity.Entry, error) {
	return s.hub.Subscribe(ctx, kind, func(ctx context.Context) ([]entity.Entry, error) {
		return s.List(ctx, kind)
	})
}

// Insert agrega una entrada.
func (s *LedgerStore) Insert(ctx context.Context, kind entity.LedgerKind, e *entity.Entry) error {
	return withTx(ctx, s.pool, kind, func(repo *EntryRepo) error { return repo.Insert(ctx, e) })
}

// Update aplica el patch.
func (s *LedgerStore) Update(ctx context.Context, kind entity.LedgerKind, id string, patch entity.EntryPatch) error {
	return withTx(ctx, s.pool, kind, func(repo *EntryRepo) error { return repo.Update(ctx, id, patch) })
}

// Remove elimina una entrada.
func (s *LedgerStore) Remove(ctx context.Context, kind entity.LedgerKind, id string) error {
	return withTx(ctx, s.pool, kind, func(repo *EntryRepo) error { return repo.Remove(ctx, id) })
}

// RemoveAll vacía el libro.
func (s *LedgerStore) RemoveAll(ctx context.Context, kind entity.LedgerKind) error {
	return withTx(ctx, s.pool, kind, func(repo *EntryRepo) error { return repo.RemoveAll(ctx) })
}

// Listen escucha ledger_changes hasta que ctx termina y publica el snapshot del libro cambiado.
// Si la conexión se pierde, reintenta.
func (s *LedgerStore) Listen(ctx context.Context) {
	for {
		err := s.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("LISTEN ledger_changes interrumpido, reintentando")
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetry):
		}
	}
}

func (s *LedgerStore) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changesChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		kind, ok := entity.ParseLedgerKind(n.Payload)
		if !ok {
			continue
		}
		if s.hub.Subscribers(kind) == 0 {
			continue
		}
		snap, err := s.List(ctx, kind)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Str("ledger", string(kind)).Msg("no se pudo leer el libro tras NOTIFY")
			continue
		}
		s.hub.Publish(kind, snap)
	}
}
