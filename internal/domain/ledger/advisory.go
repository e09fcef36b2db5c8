// Package ledger contiene las reglas de captura de los libros: validación de la entrada,
// conciliación contra el snapshot (merge o alta) y agregación para reportes.
// Todas las funciones son puras; la persistencia la aplica quien llama.
package ledger

// AdvisoryCode identifica una advertencia que requiere confirmación del operador.
type AdvisoryCode string

const (
	AdvisoryMissingLocation     AdvisoryCode = "MISSING_LOCATION"
	AdvisoryZeroQuantity        AdvisoryCode = "ZERO_QUANTITY"
	AdvisoryConflictingLocation AdvisoryCode = "CONFLICTING_LOCATION"
)

// Advisory advertencia blanda: no bloquea, pero la operación no continúa sin confirmación explícita.
type Advisory struct {
	Code             AdvisoryCode `json:"code"`
	Message          string       `json:"message"`
	ExistingLocation string       `json:"existing_location,omitempty"`
}

// Unconfirmed devuelve las advertencias cuyo código no figura en confirmed.
func Unconfirmed(advisories []Advisory, confirmed []string) []Advisory {
	if len(advisories) == 0 {
		return nil
	}
	ok := make(map[AdvisoryCode]bool, len(confirmed))
	for _, c := range confirmed {
		ok[AdvisoryCode(c)] = true
	}
	var pending []Advisory
	for _, a := range advisories {
		if !ok[a.Code] {
			pending = append(pending, a)
		}
	}
	return pending
}
