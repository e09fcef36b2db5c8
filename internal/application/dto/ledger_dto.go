package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
)

// FormValue valor de formulario: acepta "12" o 12 en el JSON y se conserva como texto
// para que el validador aplique su propia regla de parseo.
type FormValue string

// UnmarshalJSON acepta string, número o null.
func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

// SubmitEntryRequest body para POST /api/ledgers/:ledger/entries.
// Confirm lista los códigos de advertencia que el operador ya aceptó.
type SubmitEntryRequest struct {
	SKU         FormValue `json:"sku"`
	Location    FormValue `json:"location,omitempty"`
	Boxes       FormValue `json:"boxes,omitempty"`
	UnitsPerBox FormValue `json:"units_per_box,omitempty"`
	Loose       FormValue `json:"loose,omitempty"`
	Quantity    FormValue `json:"quantity,omitempty"`
	Origin      FormValue `json:"origin,omitempty"`
	Destination FormValue `json:"destination,omitempty"`
	Confirm     []string  `json:"confirm,omitempty"`
}

// Raw convierte el body al formato del validador.
func (r SubmitEntryRequest) Raw() ledger.RawEntry {
	return ledger.RawEntry{
		SKU:         string(r.SKU),
		Location:    string(r.Location),
		Boxes:       string(r.Boxes),
		UnitsPerBox: string(r.UnitsPerBox),
		Loose:       string(r.Loose),
		Quantity:    string(r.Quantity),
		Origin:      string(r.Origin),
		Destination: string(r.Destination),
	}
}

// ConfirmedCodes códigos confirmados normalizados a mayúsculas.
func (r SubmitEntryRequest) ConfirmedCodes() []string {
	out := make([]string, 0, len(r.Confirm))
	for _, c := range r.Confirm {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// SubmitEntryResponse resultado de registrar una entrada.
type SubmitEntryResponse struct {
	Action      string            `json:"action"` // insert | merge
	Entry       entity.Entry      `json:"entry"`
	Description string            `json:"description"`
	Confirmed   []ledger.Advisory `json:"confirmed,omitempty"`
}

// ConfirmationRequiredResponse cuerpo del 409 cuando faltan confirmaciones.
type ConfirmationRequiredResponse struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Advisories []ledger.Advisory `json:"advisories"`
}

// EntryListResponse listado de un libro.
type EntryListResponse struct {
	Ledger entity.LedgerKind `json:"ledger"`
	Items  []entity.Entry    `json:"items"`
	Total  int               `json:"total"`
}

// RollupDTO fila resumen con los campos calculados para mostrar.
type RollupDTO struct {
	ledger.Rollup
	LocationsLabel string `json:"locations_label"`
	TXT            string `json:"txt"`
	Description    string `json:"description"`
}

// RollupListResponse vista agregada de un libro.
type RollupListResponse struct {
	Ledger entity.LedgerKind `json:"ledger"`
	Items  []RollupDTO       `json:"items"`
	Total  int               `json:"total"`
}

// DeleteEntriesRequest body para DELETE /api/ledgers/:ledger/entries: ids concretos o all=true.
type DeleteEntriesRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// DeleteEntriesResponse cantidad de entradas eliminadas.
type DeleteEntriesResponse struct {
	Deleted int `json:"deleted"`
}

// ExportFile archivo de exportación listo para descargar.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
