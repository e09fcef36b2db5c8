package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
)

// IdentityKeyFunc calcula la clave de identidad que decide si dos entradas son "la misma línea".
type IdentityKeyFunc func(entity.Entry) string

const keySep = "\x1f"

// StockIdentityKey clave sku+ubicación (picking y almacén).
func StockIdentityKey(e entity.Entry) string {
	return e.SKU + keySep + e.Location
}

// MovementIdentityKey clave sku+origen+destino. Origen/destino no distinguen mayúsculas.
func MovementIdentityKey(e entity.Entry) string {
	return e.SKU + keySep + strings.ToUpper(e.Origin) + keySep + strings.ToUpper(e.Destination)
}

// IdentityKeyFor devuelve la función de identidad del libro.
func IdentityKeyFor(kind entity.LedgerKind) IdentityKeyFunc {
	if kind.IsMovement() {
		return MovementIdentityKey
	}
	return StockIdentityKey
}

// ActionKind tipo de acción de conciliación.
type ActionKind int

const (
	ActionInsert ActionKind = iota + 1
	ActionMerge
)

func (k ActionKind) String() string {
	switch k {
	case ActionInsert:
		return "insert"
	case ActionMerge:
		return "merge"
	}
	return "unknown"
}

// Action resultado de Reconcile; quien llama la aplica sobre el store.
type Action struct {
	Kind ActionKind
	// Merge
	TargetID   string
	Quantity   int64
	RecordedAt time.Time
	// Insert
	Record entity.Entry
	// Duplicates IDs adicionales con la misma clave (problema de integridad, no se tocan).
	Duplicates []string
}

// Reconcile decide si la entrada se suma a un registro existente con la misma clave o se inserta.
// Si hay más de un registro con la clave, se usa el primero en orden del snapshot.
// Una suma que supera MaxQuantity devuelve domain.ErrInvalidInput y no se aplica.
func Reconcile(snapshot []entity.Entry, incoming entity.Entry, key IdentityKeyFunc, now time.Time) (Action, error) {
	k := key(incoming)
	var target *entity.Entry
	var dups []string
	for i := range snapshot {
		if key(snapshot[i]) != k {
			continue
		}
		if target == nil {
			target = &snapshot[i]
			continue
		}
		dups = append(dups, snapshot[i].ID)
	}
	if target == nil {
		rec := incoming
		rec.ID = ""
		rec.RecordedAt = now
		return Action{Kind: ActionInsert, Record: rec}, nil
	}
	if incoming.Quantity > MaxQuantity-target.Quantity {
		return Action{}, fmt.Errorf("%w: %s acumularía más de %d unidades", domain.ErrInvalidInput, incoming.SKU, int64(MaxQuantity))
	}
	return Action{
		Kind:       ActionMerge,
		TargetID:   target.ID,
		Quantity:   target.Quantity + incoming.Quantity,
		RecordedAt: now,
		Duplicates: dups,
	}, nil
}

// CheckLocationConflict detecta un mismo SKU ya registrado en otra ubicación no vacía.
// Solo aplica a libros con ubicación; la advertencia nunca bloquea por sí misma.
func CheckLocationConflict(snapshot []entity.Entry, incoming entity.Entry) (Advisory, bool) {
	if incoming.Ledger.IsMovement() {
		return Advisory{}, false
	}
	for _, e := range snapshot {
		if e.SKU != incoming.SKU || e.Location == "" || e.Location == incoming.Location {
			continue
		}
		return Advisory{
			Code:             AdvisoryConflictingLocation,
			Message:          "el SKU ya está registrado en la ubicación " + e.Location,
			ExistingLocation: e.Location,
		}, true
	}
	return Advisory{}, false
}
