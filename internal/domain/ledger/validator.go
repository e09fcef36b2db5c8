package ledger

import (
	"fmt"
	"strings"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
)

// RawEntry campos del formulario tal como los escribe (o escanea) el operador.
type RawEntry struct {
	SKU         string
	Location    string
	Boxes       string
	UnitsPerBox string
	Loose       string
	// Quantity solo aplica a movimientos cuando no se informan cajas/unidades/sueltas.
	Quantity    string
	Origin      string
	Destination string
}

// Options opciones de validación que dependen de la sesión.
type Options struct {
	LocationRequired bool
}

// Validation resultado de una validación exitosa: entrada normalizada + advertencias.
type Validation struct {
	Entry      entity.Entry
	Advisories []Advisory
}

// Validate normaliza la entrada y clasifica las condiciones de error.
// Errores duros: domain.ErrMissingSKU, domain.ErrInvalidRoute, domain.ErrInvalidInput (cantidad negativa).
// MISSING_LOCATION y ZERO_QUANTITY se devuelven como advertencias, nunca como error.
func Validate(kind entity.LedgerKind, raw RawEntry, opts Options) (Validation, error) {
	sku := entity.NormalizeSKU(raw.SKU)
	if sku == "" {
		return Validation{}, domain.ErrMissingSKU
	}
	qty, err := ComputeQuantity(raw.Boxes, raw.UnitsPerBox, raw.Loose)
	if err != nil {
		return Validation{}, err
	}

	if kind.IsMovement() {
		if blank(raw.Boxes) && blank(raw.UnitsPerBox) && blank(raw.Loose) {
			if qty, err = parseField(raw.Quantity); err != nil {
				return Validation{}, err
			}
		}
		origin := strings.TrimSpace(raw.Origin)
		destination := strings.TrimSpace(raw.Destination)
		if origin == "" || destination == "" || strings.EqualFold(origin, destination) {
			return Validation{}, domain.ErrInvalidRoute
		}
		// Los movimientos exigen cantidad estrictamente positiva (a diferencia de picking/almacén).
		if qty <= 0 {
			return Validation{}, domain.ErrInvalidRoute
		}
		return Validation{Entry: entity.Entry{
			Ledger:      kind,
			SKU:         sku,
			Origin:      origin,
			Destination: destination,
			Quantity:    qty,
		}}, nil
	}

	if qty < 0 {
		return Validation{}, domain.ErrInvalidInput
	}
	location := NormalizeLocation(raw.Location)
	v := Validation{Entry: entity.Entry{
		Ledger:   kind,
		SKU:      sku,
		Location: location,
		Quantity: qty,
	}}
	if opts.LocationRequired && location == "" {
		v.Advisories = append(v.Advisories, Advisory{
			Code:    AdvisoryMissingLocation,
			Message: "ADVERTENCIA: se subirá el SKU sin ubicación",
		})
	}
	if qty == 0 {
		v.Advisories = append(v.Advisories, Advisory{
			Code:    AdvisoryZeroQuantity,
			Message: "la cantidad ingresada es 0",
		})
	}
	return v, nil
}

// Límites de cantidad. Con campos acotados a MaxFieldValue el cálculo nunca desborda int64.
const (
	MaxFieldValue = 1_000_000_000
	MaxQuantity   = 1_000_000_000_000
)

// ComputeQuantity cantidad = cajas × unidades por caja + sueltas. Campos vacíos o no numéricos valen 0.
// Un campo mayor a MaxFieldValue o un total mayor a MaxQuantity devuelve domain.ErrInvalidInput.
func ComputeQuantity(boxes, unitsPerBox, loose string) (int64, error) {
	b, err := parseField(boxes)
	if err != nil {
		return 0, err
	}
	u, err := parseField(unitsPerBox)
	if err != nil {
		return 0, err
	}
	l, err := parseField(loose)
	if err != nil {
		return 0, err
	}
	qty := b*u + l
	if qty > MaxQuantity || qty < -MaxQuantity {
		return 0, fmt.Errorf("%w: cantidad %d supera el máximo %d", domain.ErrInvalidInput, qty, int64(MaxQuantity))
	}
	return qty, nil
}

func parseField(s string) (int64, error) {
	n := parseInt(s)
	if n > MaxFieldValue || n < -MaxFieldValue {
		return 0, fmt.Errorf("%w: valor %q fuera de rango", domain.ErrInvalidInput, strings.TrimSpace(s))
	}
	return n, nil
}

// NormalizeLocation normaliza una ubicación (trim + mayúsculas), igual que el SKU.
func NormalizeLocation(location string) string {
	return strings.ToUpper(strings.TrimSpace(location))
}

// parseInt interpreta el prefijo entero del texto ("12 cajas" → 12); si no hay dígitos devuelve 0.
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int64(r-'0')
		// más allá de MaxFieldValue el valor ya es inválido; se corta antes de desbordar
		if n > MaxFieldValue {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
