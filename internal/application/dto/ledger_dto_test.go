package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitEntryRequest_AceptaNumerosYTexto(t *testing.T) {
	var req SubmitEntryRequest
	body := `{"sku":" ab-1 ","boxes":2,"units_per_box":"10","loose":null,"confirm":[" zero_quantity ",""]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	raw := req.Raw()
	assert.Equal(t, " ab-1 ", raw.SKU)
	assert.Equal(t, "2", raw.Boxes)
	assert.Equal(t, "10", raw.UnitsPerBox)
	assert.Equal(t, "", raw.Loose)
	assert.Equal(t, []string{"ZERO_QUANTITY"}, req.ConfirmedCodes())
}

func TestFormValue_Invalido(t *testing.T) {
	var v FormValue
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
}
