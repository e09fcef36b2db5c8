package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
)

var (
	zipMagic = []byte("PK\x03\x04")
	utf8BOM  = []byte("\xef\xbb\xbf")
)

// Parse decodifica un catálogo xlsx (primera hoja) o de texto delimitado (; , o tabulador).
// La primera fila es el encabezado.
func Parse(data []byte) (entity.Catalog, error) {
	var (
		rows [][]string
		err  error
	)
	if bytes.HasPrefix(data, zipMagic) {
		rows, err = readXLSX(data)
	} else {
		rows, err = readDelimited(data)
	}
	if err != nil {
		return nil, err
	}
	return buildCatalog(rows)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: abrir xlsx: %v", domain.ErrCatalogLoad, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: el libro no tiene hojas", domain.ErrCatalogLoad)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: leer hoja %s: %v", domain.ErrCatalogLoad, sheets[0], err)
	}
	return rows, nil
}

func readDelimited(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: decodificar Windows-1252: %v", domain.ErrCatalogLoad, err)
		}
		data = decoded
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: archivo vacío", domain.ErrCatalogLoad)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: formato no reconocido: %v", domain.ErrCatalogLoad, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter elige el separador más frecuente en la línea de encabezado.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{';', '\t', ','} {
		if n := bytes.Count(header, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// columns índices de las columnas reconocidas en el encabezado (-1 = ausente).
type columns struct {
	sku, desc, hint int
}

func findColumns(header []string) columns {
	c := columns{sku: -1, desc: -1, hint: -1}
	for i, h := range header {
		name := foldHeader(h)
		switch {
		case c.sku < 0 && strings.Contains(name, "sku"):
			c.sku = i
		case c.desc < 0 && (strings.Contains(name, "desc") || strings.Contains(name, "nombre")):
			c.desc = i
		case c.hint < 0 && (strings.Contains(name, "ubic") || strings.Contains(name, "location")):
			c.hint = i
		}
	}
	return c
}

// foldHeader pasa a minúsculas y quita acentos ("Descripción" → "descripcion").
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func buildCatalog(rows [][]string) (entity.Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sin encabezado", domain.ErrCatalogLoad)
	}
	cols := findColumns(rows[0])
	if cols.sku < 0 || cols.desc < 0 {
		return nil, fmt.Errorf("%w: el archivo no tiene columnas SKU/Descripción", domain.ErrCatalogLoad)
	}

	out := make(entity.Catalog, len(rows)-1)
	for _, row := range rows[1:] {
		sku := entity.NormalizeSKU(cell(row, cols.sku))
		if sku == "" {
			continue
		}
		out[sku] = entity.CatalogItem{
			SKU:          sku,
			Description:  strings.TrimSpace(cell(row, cols.desc)),
			LocationHint: strings.ToUpper(strings.TrimSpace(cell(row, cols.hint))),
		}
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
