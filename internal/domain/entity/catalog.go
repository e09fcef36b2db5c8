package entity

import (
	"sort"
	"strings"
)

// UnknownDescription texto mostrado cuando el SKU no está en el catálogo.
const UnknownDescription = "Descripción no encontrada"

// CatalogItem producto del catálogo de referencia (no lo captura el operador).
type CatalogItem struct {
	SKU          string `json:"sku"`
	Description  string `json:"description"`
	LocationHint string `json:"location_hint,omitempty"`
}

// Catalog mapeo sku → producto. Se reemplaza completo en cada recarga.
type Catalog map[string]CatalogItem

// NormalizeSKU normaliza un SKU para usarlo como clave (trim + mayúsculas).
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Lookup busca un SKU. Un SKU ausente no es error: ok=false y descripción desconocida.
func (c Catalog) Lookup(sku string) (CatalogItem, bool) {
	key := NormalizeSKU(sku)
	item, ok := c[key]
	if !ok {
		return CatalogItem{SKU: key, Description: UnknownDescription}, false
	}
	return item, true
}

// Suggest devuelve hasta limit SKUs que comienzan con prefix, ordenados.
func (c Catalog) Suggest(prefix string, limit int) []CatalogItem {
	p := NormalizeSKU(prefix)
	out := make([]CatalogItem, 0)
	for sku, item := range c {
		if strings.HasPrefix(sku, p) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
