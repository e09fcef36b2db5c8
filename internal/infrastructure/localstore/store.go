// Package localstore implementa los puertos de persistencia sobre un archivo JSON local.
// Es el modo de respaldo cuando el almacenamiento remoto no está disponible al iniciar.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/repository"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
)

var (
	_ repository.LedgerStore    = (*Store)(nil)
	_ repository.LedgerTxRunner = (*Store)(nil)
	_ repository.CatalogStore   = (*Store)(nil)
)

// fileData formato del archivo persistido.
type fileData struct {
	Ledgers map[entity.LedgerKind][]entity.Entry `json:"ledgers"`
	Catalog entity.Catalog                       `json:"catalog"`
}

// Store guarda los libros en memoria y los escribe completos a disco tras cada cambio.
// Con path vacío no persiste (útil en tests).
type Store struct {
	mu   sync.Mutex
	path string
	data fileData
	hub  *realtime.Hub
}

// Open carga el archivo si existe; si no, arranca vacío.
func Open(path string, hub *realtime.Hub) (*Store, error) {
	s := &Store{
		path: path,
		hub:  hub,
		data: fileData{Ledgers: make(map[entity.LedgerKind][]entity.Entry), Catalog: entity.Catalog{}},
	}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer store local: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decodificar store local: %w", err)
	}
	if s.data.Ledgers == nil {
		s.data.Ledgers = make(map[entity.LedgerKind][]entity.Entry)
	}
	if s.data.Catalog == nil {
		s.data.Catalog = entity.Catalog{}
	}
	return s, nil
}

// Name identifica la implementación.
func (s *Store) Name() string { return "local" }

// List devuelve una copia del libro en orden de alta.
func (s *Store) List(_ context.Context, kind entity.LedgerKind) ([]entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(kind), nil
}

// Subscribe entrega el snapshot actual y luego cada cambio.
func (s *Store) Subscribe(ctx context.Context, kind entity.LedgerKind) (<-chan []entity.Entry, error) {
	return s.hub.Subscribe(ctx, kind, func(context.Context) ([]entity.Entry, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.snapshotLocked(kind), nil
	})
}

// Insert agrega la entrada y le asigna ID.
func (s *Store) Insert(ctx context.Context, kind entity.LedgerKind, e *entity.Entry) error {
	return s.mutate(kind, func() error {
		s.insertLocked(kind, e)
		return nil
	})
}

// Update aplica el patch a la entrada indicada.
func (s *Store) Update(ctx context.Context, kind entity.LedgerKind, id string, patch entity.EntryPatch) error {
	return s.mutate(kind, func() error { return s.updateLocked(kind, id, patch) })
}

// Remove elimina una entrada. Eliminar una inexistente devuelve domain.ErrNotFound.
func (s *Store) Remove(ctx context.Context, kind entity.LedgerKind, id string) error {
	return s.mutate(kind, func() error {
		list := s.data.Ledgers[kind]
		for i := range list {
			if list[i].ID == id {
				s.data.Ledgers[kind] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

// RemoveAll vacía el libro.
func (s *Store) RemoveAll(ctx context.Context, kind entity.LedgerKind) error {
	return s.mutate(kind, func() error {
		delete(s.data.Ledgers, kind)
		return nil
	})
}

// Run ejecuta fn con el libro bloqueado; si fn falla se restaura el estado previo.
// El bloqueo es por store completo: el store local tiene un único escritor.
func (s *Store) Run(ctx context.Context, kind entity.LedgerKind, _ string, fn func(tx repository.LedgerTx) error) error {
	return s.mutate(kind, func() error {
		return fn(&tx{s: s, kind: kind})
	})
}

// Load devuelve una copia del catálogo persistido.
func (s *Store) Load(_ context.Context) (entity.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(entity.Catalog, len(s.data.Catalog))
	for k, v := range s.data.Catalog {
		out[k] = v
	}
	return out, nil
}

// Replace reemplaza el catálogo completo.
func (s *Store) Replace(_ context.Context, catalog entity.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data.Catalog
	next := make(entity.Catalog, len(catalog))
	for k, v := range catalog {
		next[k] = v
	}
	s.data.Catalog = next
	if err := s.persistLocked(); err != nil {
		s.data.Catalog = prev
		return err
	}
	return nil
}

// mutate ejecuta fn bajo el lock, persiste y publica; revierte el libro si algo falla.
func (s *Store) mutate(kind entity.LedgerKind, fn func() error) error {
	s.mu.Lock()
	prev := s.snapshotLocked(kind)
	if err := fn(); err != nil {
		s.data.Ledgers[kind] = prev
		s.mu.Unlock()
		return err
	}
	if err := s.persistLocked(); err != nil {
		s.data.Ledgers[kind] = prev
		s.mu.Unlock()
		return err
	}
	snap := s.snapshotLocked(kind)
	s.mu.Unlock()
	s.hub.Publish(kind, snap)
	return nil
}

func (s *Store) snapshotLocked(kind entity.LedgerKind) []entity.Entry {
	list := s.data.Ledgers[kind]
	out := make([]entity.Entry, len(list))
	copy(out, list)
	return out
}

func (s *Store) insertLocked(kind entity.LedgerKind, e *entity.Entry) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Ledger = kind
	s.data.Ledgers[kind] = append(s.data.Ledgers[kind], *e)
}

func (s *Store) updateLocked(kind entity.LedgerKind, id string, patch entity.EntryPatch) error {
	list := s.data.Ledgers[kind]
	for i := range list {
		if list[i].ID == id {
			patch.Apply(&list[i])
			return nil
		}
	}
	return domain.ErrNotFound
}

// persistLocked escribe a un temporal y renombra para no dejar un archivo a medias.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("codificar store local: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("crear directorio del store local: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("escribir store local: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("reemplazar store local: %w", err)
	}
	return nil
}

// tx opera sobre el store ya bloqueado por Run.
type tx struct {
	s    *Store
	kind entity.LedgerKind
}

func (t *tx) List(_ context.Context) ([]entity.Entry, error) {
	return t.s.snapshotLocked(t.kind), nil
}

func (t *tx) Insert(_ context.Context, e *entity.Entry) error {
	t.s.insertLocked(t.kind, e)
	return nil
}

func (t *tx) Update(_ context.Context, id string, patch entity.EntryPatch) error {
	return t.s.updateLocked(t.kind, id, patch)
}
