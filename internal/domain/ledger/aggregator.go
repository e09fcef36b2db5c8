package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/control-v/internal/domain/entity"
)

// GroupKeyFunc clave de agrupación para la agregación.
type GroupKeyFunc func(entity.Entry) string

// SKUGroupKey agrupa solo por SKU (picking y almacén).
func SKUGroupKey(e entity.Entry) string { return e.SKU }

// GroupKeyFor devuelve la clave de agrupación del libro: sku, o sku+origen+destino para movimientos.
func GroupKeyFor(kind entity.LedgerKind) GroupKeyFunc {
	if kind.IsMovement() {
		return MovementIdentityKey
	}
	return SKUGroupKey
}

// Rollup fila resumen por grupo.
type Rollup struct {
	Key           string    `json:"key"`
	SKU           string    `json:"sku"`
	Origin        string    `json:"origin,omitempty"`
	Destination   string    `json:"destination,omitempty"`
	TotalQuantity int64     `json:"total_quantity"`
	RecordedAt    time.Time `json:"recorded_at"`
	Locations     []string  `json:"locations,omitempty"`
	NeedsReview   bool      `json:"needs_review"`
	EntryIDs      []string  `json:"entry_ids"`
}

// LocationsLabel ubicaciones unidas para mostrar.
func (r Rollup) LocationsLabel() string { return strings.Join(r.Locations, " ; ") }

// TXT línea "sku,cantidad" para carga en sistemas externos.
func (r Rollup) TXT() string { return fmt.Sprintf("%s,%d", r.SKU, r.TotalQuantity) }

// Aggregate agrupa los registros del libro. Solo picking/almacén calculan NeedsReview.
func Aggregate(kind entity.LedgerKind, records []entity.Entry) []Rollup {
	return AggregateBy(records, GroupKeyFor(kind), !kind.IsMovement())
}

// AggregateBy suma cantidades por grupo en orden de primera aparición. La fecha del grupo es la del
// primer registro; las ubicaciones no vacías se deduplican conservando el orden.
func AggregateBy(records []entity.Entry, key GroupKeyFunc, review bool) []Rollup {
	out := make([]Rollup, 0)
	index := make(map[string]int)
	for _, e := range records {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Rollup{
				Key:         k,
				SKU:         e.SKU,
				Origin:      e.Origin,
				Destination: e.Destination,
				RecordedAt:  e.RecordedAt,
			})
		}
		r := &out[i]
		r.TotalQuantity += e.Quantity
		if e.ID != "" {
			r.EntryIDs = append(r.EntryIDs, e.ID)
		}
		if e.Location != "" && !contains(r.Locations, e.Location) {
			r.Locations = append(r.Locations, e.Location)
		}
	}
	if review {
		for i := range out {
			out[i].NeedsReview = len(out[i].Locations) > 1
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
