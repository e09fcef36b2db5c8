package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
)

func codes(advs []ledger.Advisory) []ledger.AdvisoryCode {
	out := make([]ledger.AdvisoryCode, 0, len(advs))
	for _, a := range advs {
		out = append(out, a.Code)
	}
	return out
}

func TestComputeQuantity(t *testing.T) {
	cases := []struct {
		name                 string
		boxes, perBox, loose string
		want                 int64
	}{
		{"completo", "2", "10", "3", 23},
		{"vacios", "", "", "", 0},
		{"solo sueltas", "", "", "7", 7},
		{"no numerico", "abc", "10", "x", 0},
		{"prefijo numerico", "3 cajas", "12", "1", 37},
		{"espacios", " 1 ", " 10 ", " 0 ", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ledger.ComputeQuantity(tc.boxes, tc.perBox, tc.loose)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeQuantity_FueraDeRango(t *testing.T) {
	cases := []struct {
		name                 string
		boxes, perBox, loose string
	}{
		{"producto desborda int64", "4294967296", "4294967297", ""},
		{"campo mayor al limite", "", "", "1000000001"},
		{"campo negativo enorme", "-99999999999999999999", "1", ""},
		{"total mayor al maximo", "1000000000", "1001", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.ComputeQuantity(tc.boxes, tc.perBox, tc.loose)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	got, err := ledger.ComputeQuantity("1000000000", "1000", "")
	require.NoError(t, err)
	assert.Equal(t, int64(ledger.MaxQuantity), got)
}

func TestValidate_CantidadDesbordada_ErrorDeEntrada(t *testing.T) {
	_, err := ledger.Validate(entity.LedgerPicking, ledger.RawEntry{
		SKU: "A1", Location: "R1", Boxes: "4294967296", UnitsPerBox: "4294967297",
	}, ledger.Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// En movimientos el desborde no debe confundirse con una ruta inválida.
	_, err = ledger.Validate(entity.LedgerMovement, ledger.RawEntry{
		SKU: "A1", Origin: "Picking", Destination: "Almacén", Quantity: "99999999999999999999",
	}, ledger.Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrInvalidRoute)
}

func TestValidate_SinSKU_ErrorDuro(t *testing.T) {
	for _, kind := range entity.LedgerKinds {
		_, err := ledger.Validate(kind, ledger.RawEntry{SKU: "   ", Loose: "5", Origin: "Picking", Destination: "Almacén"}, ledger.Options{})
		assert.ErrorIs(t, err, domain.ErrMissingSKU, "libro %s", kind)
	}
}

func TestValidate_StockNormaliza(t *testing.T) {
	v, err := ledger.Validate(entity.LedgerPicking, ledger.RawEntry{
		SKU: " a1 ", Location: " r1 ", Boxes: "2", UnitsPerBox: "10", Loose: "3",
	}, ledger.Options{LocationRequired: true})
	require.NoError(t, err)
	assert.Equal(t, "A1", v.Entry.SKU)
	assert.Equal(t, "R1", v.Entry.Location)
	assert.Equal(t, int64(23), v.Entry.Quantity)
	assert.Equal(t, entity.LedgerPicking, v.Entry.Ledger)
	assert.Empty(t, v.Advisories)
}

func TestValidate_SinUbicacion_EsAdvertencia(t *testing.T) {
	raw := ledger.RawEntry{SKU: "A1", Loose: "4"}

	v, err := ledger.Validate(entity.LedgerWarehouse, raw, ledger.Options{LocationRequired: true})
	require.NoError(t, err, "la falta de ubicación no debe bloquear")
	assert.Equal(t, []ledger.AdvisoryCode{ledger.AdvisoryMissingLocation}, codes(v.Advisories))

	v, err = ledger.Validate(entity.LedgerWarehouse, raw, ledger.Options{LocationRequired: false})
	require.NoError(t, err)
	assert.Empty(t, v.Advisories, "sin requisito de ubicación no hay advertencia")
}

func TestValidate_CantidadCero_EsAdvertencia(t *testing.T) {
	v, err := ledger.Validate(entity.LedgerPicking, ledger.RawEntry{SKU: "A1", Location: "R1"}, ledger.Options{LocationRequired: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Entry.Quantity)
	assert.Equal(t, []ledger.AdvisoryCode{ledger.AdvisoryZeroQuantity}, codes(v.Advisories))
}

func TestValidate_CantidadNegativa_Stock(t *testing.T) {
	_, err := ledger.Validate(entity.LedgerPicking, ledger.RawEntry{SKU: "A1", Loose: "-3"}, ledger.Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate_Movimiento(t *testing.T) {
	v, err := ledger.Validate(entity.LedgerMovement, ledger.RawEntry{
		SKU: "b2", Origin: "Picking", Destination: "Almacén", Boxes: "1", UnitsPerBox: "5",
	}, ledger.Options{LocationRequired: true})
	require.NoError(t, err)
	assert.Equal(t, "B2", v.Entry.SKU)
	assert.Equal(t, "Picking", v.Entry.Origin)
	assert.Equal(t, "Almacén", v.Entry.Destination)
	assert.Equal(t, int64(5), v.Entry.Quantity)
	assert.Empty(t, v.Entry.Location)
	assert.Empty(t, v.Advisories, "los movimientos no llevan advertencias de ubicación")
}

func TestValidate_Movimiento_CantidadDirecta(t *testing.T) {
	v, err := ledger.Validate(entity.LedgerMovement, ledger.RawEntry{
		SKU: "B2", Origin: "Picking", Destination: "Almacén", Quantity: "8",
	}, ledger.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(8), v.Entry.Quantity)
}

func TestValidate_Movimiento_RutaInvalida(t *testing.T) {
	cases := []struct {
		name string
		raw  ledger.RawEntry
	}{
		{"origen igual a destino", ledger.RawEntry{SKU: "B2", Origin: "Picking", Destination: "Picking", Quantity: "5"}},
		{"origen igual a destino sin distinguir mayúsculas", ledger.RawEntry{SKU: "B2", Origin: "picking", Destination: "PICKING", Quantity: "5"}},
		{"origen igual a destino con cantidad cero", ledger.RawEntry{SKU: "B2", Origin: "Almacén", Destination: "Almacén"}},
		{"sin destino", ledger.RawEntry{SKU: "B2", Origin: "Picking", Quantity: "5"}},
		{"cantidad cero", ledger.RawEntry{SKU: "B2", Origin: "Picking", Destination: "Almacén", Quantity: "0"}},
		{"cantidad negativa", ledger.RawEntry{SKU: "B2", Origin: "Picking", Destination: "Almacén", Loose: "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.Validate(entity.LedgerMovement, tc.raw, ledger.Options{})
			assert.ErrorIs(t, err, domain.ErrInvalidRoute)
		})
	}
}

func TestUnconfirmed(t *testing.T) {
	advs := []ledger.Advisory{
		{Code: ledger.AdvisoryMissingLocation},
		{Code: ledger.AdvisoryZeroQuantity},
	}
	pending := ledger.Unconfirmed(advs, []string{"ZERO_QUANTITY"})
	assert.Equal(t, []ledger.AdvisoryCode{ledger.AdvisoryMissingLocation}, codes(pending))
	assert.Empty(t, ledger.Unconfirmed(advs, []string{"MISSING_LOCATION", "ZERO_QUANTITY"}))
	assert.Empty(t, ledger.Unconfirmed(nil, nil))
}
