package export

import (
	"bytes"
	"strings"
)

const bom = "\ufeff"

// WriteCSV separador ';', BOM UTF-8, todos los campos entre comillas dobles
// (comillas internas duplicadas) y fin de línea '\n' sin salto final.
func WriteCSV(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	buf.WriteString(bom)
	writeCSVRow(&buf, header)
	for _, r := range rows {
		buf.WriteByte('\n')
		writeCSVRow(&buf, r)
	}
	return buf.Bytes()
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(';')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}
