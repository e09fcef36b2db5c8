// Package redisstore implementa los libros y el catálogo sobre Redis.
// Cada libro es un documento JSON bajo una clave; las escrituras usan WATCH/MULTI
// y avisan a las demás instancias por Pub/Sub.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/repository"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
	"github.com/jhoicas/control-v/pkg/config"
)

var (
	_ repository.LedgerStore    = (*Store)(nil)
	_ repository.LedgerTxRunner = (*Store)(nil)
	_ repository.CatalogStore   = (*Store)(nil)
)

const (
	keyPrefix      = "controlv:ledger:"
	changesChannel = "controlv:ledger:changes"
	catalogKey     = "controlv:catalog"
	maxTxRetries   = 8
	listenRetry    = 3 * time.Second
)

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Store libros y catálogo en Redis.
type Store struct {
	rdb *redis.Client
	hub *realtime.Hub
}

// New construye el store.
func New(rdb *redis.Client, hub *realtime.Hub) *Store {
	return &Store{rdb: rdb, hub: hub}
}

func ledgerKey(kind entity.LedgerKind) string { return keyPrefix + string(kind) }

// Name identifica la implementación.
func (s *Store) Name() string { return "redis" }

// List devuelve el libro completo.
func (s *Store) List(ctx context.Context, kind entity.LedgerKind) ([]entity.Entry, error) {
	doc, err := readDoc(ctx, s.rdb, kind)
	if err != nil {
		return nil, err
	}
	return doc.entries, nil
}

// Subscribe registra el suscriptor y le envía el estado actual.
func (s *Store) Subscribe(ctx context.Context, kind entity.LedgerKind) (<-chan []entity.Entry, error) {
	return s.hub.Subscribe(ctx, kind, func(ctx context.Context) ([]entity.Entry, error) {
		return s.List(ctx, kind)
	})
}

// Insert agrega una entrada.
func (s *Store) Insert(ctx context.Context, kind entity.LedgerKind, e *entity.Entry) error {
	return s.mutate(ctx, kind, func(doc *ledgerDoc) error {
		doc.insert(e)
		return nil
	})
}

// Update aplica el patch.
func (s *Store) Update(ctx context.Context, kind entity.LedgerKind, id string, patch entity.EntryPatch) error {
	return s.mutate(ctx, kind, func(doc *ledgerDoc) error { return doc.update(id, patch) })
}

// Remove elimina una entrada.
func (s *Store) Remove(ctx context.Context, kind entity.LedgerKind, id string) error {
	return s.mutate(ctx, kind, func(doc *ledgerDoc) error { return doc.remove(id) })
}

// RemoveAll vacía el libro.
func (s *Store) RemoveAll(ctx context.Context, kind entity.LedgerKind) error {
	return s.mutate(ctx, kind, func(doc *ledgerDoc) error {
		doc.entries = nil
		return nil
	})
}

// Run ejecuta fn de forma optimista: si otra instancia modifica el libro entre la
// lectura y el EXEC, se repite con el estado nuevo.
func (s *Store) Run(ctx context.Context, kind entity.LedgerKind, _ string, fn func(tx repository.LedgerTx) error) error {
	return s.mutate(ctx, kind, func(doc *ledgerDoc) error { return fn(doc) })
}

func (s *Store) mutate(ctx context.Context, kind entity.LedgerKind, fn func(doc *ledgerDoc) error) error {
	key := ledgerKey(kind)
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		var snap []entity.Entry
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			doc, err := readDoc(ctx, tx, kind)
			if err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
			raw, err := json.Marshal(doc.entries)
			if err != nil {
				return fmt.Errorf("codificar libro: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Set(ctx, key, raw, 0)
				p.Publish(ctx, changesChannel, string(kind))
				return nil
			})
			snap = doc.entries
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			log.Debug().Str("ledger", string(kind)).Int("intento", attempt+1).Msg("conflicto de escritura en redis, reintentando")
			continue
		}
		if err != nil {
			return err
		}
		s.hub.Publish(kind, snap)
		return nil
	}
	return fmt.Errorf("%w: demasiados conflictos de escritura en %s", domain.ErrConflict, kind)
}

// Listen reenvía al hub local los cambios publicados por otras instancias.
func (s *Store) Listen(ctx context.Context) {
	for {
		err := s.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("suscripción a cambios de redis interrumpida, reintentando")
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetry):
		}
	}
}

func (s *Store) listenOnce(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, changesChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("canal de suscripción cerrado")
			}
			kind, valid := entity.ParseLedgerKind(msg.Payload)
			if !valid || s.hub.Subscribers(kind) == 0 {
				continue
			}
			snap, err := s.List(ctx, kind)
			if err != nil {
				log.Error().Err(err).Str("ledger", string(kind)).Msg("no se pudo leer el libro tras aviso de cambio")
				continue
			}
			s.hub.Publish(kind, snap)
		}
	}
}

// Load lee el catálogo.
func (s *Store) Load(ctx context.Context) (entity.Catalog, error) {
	fields, err := s.rdb.HGetAll(ctx, catalogKey).Result()
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	out := make(entity.Catalog, len(fields))
	for sku, raw := range fields {
		var it entity.CatalogItem
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, fmt.Errorf("decodificar ítem %s: %w", sku, err)
		}
		out[sku] = it
	}
	return out, nil
}

// Replace escribe el catálogo en una clave temporal y la renombra para que el cambio sea atómico.
func (s *Store) Replace(ctx context.Context, catalog entity.Catalog) error {
	if len(catalog) == 0 {
		return s.rdb.Del(ctx, catalogKey).Err()
	}
	tmp := catalogKey + ":tmp:" + uuid.New().String()
	values := make(map[string]any, len(catalog))
	for sku, it := range catalog {
		raw, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("codificar ítem %s: %w", sku, err)
		}
		values[sku] = raw
	}
	if err := s.rdb.HSet(ctx, tmp, values).Err(); err != nil {
		s.rdb.Del(ctx, tmp)
		return fmt.Errorf("escribir catálogo: %w", err)
	}
	if err := s.rdb.Rename(ctx, tmp, catalogKey).Err(); err != nil {
		s.rdb.Del(ctx, tmp)
		return fmt.Errorf("publicar catálogo: %w", err)
	}
	return nil
}

// ledgerDoc copia en memoria de un libro durante una escritura.
type ledgerDoc struct {
	kind    entity.LedgerKind
	entries []entity.Entry
}

func readDoc(ctx context.Context, c redis.Cmdable, kind entity.LedgerKind) (*ledgerDoc, error) {
	raw, err := c.Get(ctx, ledgerKey(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &ledgerDoc{kind: kind}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", kind, err)
	}
	doc := &ledgerDoc{kind: kind}
	if err := json.Unmarshal(raw, &doc.entries); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", kind, err)
	}
	for i := range doc.entries {
		doc.entries[i].Ledger = kind
	}
	return doc, nil
}

func (d *ledgerDoc) List(_ context.Context) ([]entity.Entry, error) {
	out := make([]entity.Entry, len(d.entries))
	copy(out, d.entries)
	return out, nil
}

func (d *ledgerDoc) Insert(_ context.Context, e *entity.Entry) error {
	d.insert(e)
	return nil
}

func (d *ledgerDoc) Update(_ context.Context, id string, patch entity.EntryPatch) error {
	return d.update(id, patch)
}

func (d *ledgerDoc) insert(e *entity.Entry) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Ledger = d.kind
	d.entries = append(d.entries, *e)
}

func (d *ledgerDoc) update(id string, patch entity.EntryPatch) error {
	for i := range d.entries {
		if d.entries[i].ID == id {
			patch.Apply(&d.entries[i])
			return nil
		}
	}
	return domain.ErrNotFound
}

func (d *ledgerDoc) remove(id string) error {
	for i := range d.entries {
		if d.entries[i].ID == id {
			d.entries = append(d.entries[:i:i], d.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
