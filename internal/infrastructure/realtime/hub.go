package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/control-v/internal/domain/entity"
)

// SnapshotFunc lee el estado actual del libro para el suscriptor que se conecta.
type SnapshotFunc func(ctx context.Context) ([]entity.Entry, error)

type subscriber struct {
	id   uint64
	kind entity.LedgerKind
	// events tiene capacidad 1: siempre contiene a lo sumo el snapshot más reciente.
	events chan []entity.Entry
}

// Hub mantiene los suscriptores por libro y les reparte los snapshots.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

// NewHub crea un hub vacío.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscriber)}
}

// Subscribe registra un suscriptor del libro y le entrega el snapshot de initial solo a él.
// Si initial falla el suscriptor se da de baja. El canal se cierra cuando ctx termina.
func (h *Hub) Subscribe(ctx context.Context, kind entity.LedgerKind, initial SnapshotFunc) (<-chan []entity.Entry, error) {
	h.mu.Lock()
	h.nextID++
	s := &subscriber{id: h.nextID, kind: kind, events: make(chan []entity.Entry, 1)}
	h.subs[s.id] = s
	total := len(h.subs)
	h.mu.Unlock()

	log.Debug().Str("ledger", string(kind)).Uint64("subscriber", s.id).Int("total", total).Msg("suscriptor registrado")

	if initial != nil {
		snap, err := initial(ctx)
		if err != nil {
			h.unsubscribe(s.id)
			return nil, err
		}
		// Un Publish posterior al registro ya dejó un estado igual o más nuevo.
		h.mu.Lock()
		if _, ok := h.subs[s.id]; ok && len(s.events) == 0 {
			s.events <- clone(snap)
		}
		h.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		h.unsubscribe(s.id)
	}()
	return s.events, nil
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		close(s.events)
		delete(h.subs, id)
	}
}

// Publish envía el snapshot a los suscriptores del libro sin bloquear. Si el suscriptor aún
// no leyó el anterior, ese snapshot viejo se reemplaza por este.
func (h *Hub) Publish(kind entity.LedgerKind, snapshot []entity.Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if s.kind != kind {
			continue
		}
		select {
		case <-s.events:
			log.Debug().Str("ledger", string(kind)).Uint64("subscriber", s.id).Msg("snapshot sin leer reemplazado")
		default:
		}
		s.events <- clone(snapshot)
	}
}

// Subscribers cantidad de suscriptores activos del libro.
func (h *Hub) Subscribers(kind entity.LedgerKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, s := range h.subs {
		if s.kind == kind {
			n++
		}
	}
	return n
}

func clone(snapshot []entity.Entry) []entity.Entry {
	cp := make([]entity.Entry, len(snapshot))
	copy(cp, snapshot)
	return cp
}
