package entity

import (
	"strings"
	"time"
)

// LedgerKind identifica uno de los tres libros de captura.
type LedgerKind string

const (
	LedgerPicking   LedgerKind = "picking"
	LedgerWarehouse LedgerKind = "almacen"
	LedgerMovement  LedgerKind = "movimientos"
)

// LedgerKinds lista los libros en el orden en que se muestran.
var LedgerKinds = []LedgerKind{LedgerPicking, LedgerWarehouse, LedgerMovement}

// ParseLedgerKind acepta el nombre del libro o su alias en inglés.
func ParseLedgerKind(s string) (LedgerKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "picking":
		return LedgerPicking, true
	case "almacen", "almacén", "warehouse":
		return LedgerWarehouse, true
	case "movimientos", "movements", "movement":
		return LedgerMovement, true
	}
	return "", false
}

// IsMovement indica si el libro registra traslados (origen/destino) en vez de ubicación.
func (k LedgerKind) IsMovement() bool { return k == LedgerMovement }

// ExportPrefix prefijo del nombre de archivo de exportación.
func (k LedgerKind) ExportPrefix() string {
	switch k {
	case LedgerPicking:
		return "Picking"
	case LedgerWarehouse:
		return "Almacén"
	case LedgerMovement:
		return "Movimientos"
	}
	return string(k)
}

// Entry es un registro de un libro. Para picking/almacén se usa Location; para movimientos Origin y Destination.
type Entry struct {
	ID          string     `json:"id"`
	Ledger      LedgerKind `json:"ledger"`
	SKU         string     `json:"sku"`
	Location    string     `json:"location,omitempty"`
	Origin      string     `json:"origin,omitempty"`
	Destination string     `json:"destination,omitempty"`
	Quantity    int64      `json:"quantity"`
	RecordedAt  time.Time  `json:"recorded_at"`
	CreatedBy   string     `json:"created_by,omitempty"`
}

// EntryPatch actualización parcial (merge de cantidad).
type EntryPatch struct {
	Quantity   int64
	RecordedAt time.Time
}

// Apply aplica el patch sobre la entrada.
func (p EntryPatch) Apply(e *Entry) {
	e.Quantity = p.Quantity
	e.RecordedAt = p.RecordedAt
}
