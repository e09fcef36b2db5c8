// Package export genera los archivos de exportación de un libro (CSV, XLSX y PDF)
// a partir de sus filas resumen.
package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
)

// Format formato de exportación.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// DateLayout formato de la columna FECHA.
const DateLayout = "02/01/2006 15:04:05"

// ParseFormat valida el formato pedido; vacío equivale a csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
}

// ContentType tipo MIME del formato.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename <Prefijo>_<YYYY-MM-DD>.<ext>, con la fecha en UTC.
func Filename(kind entity.LedgerKind, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", kind.ExportPrefix(), now.UTC().Format("2006-01-02"), f)
}

// Archiver guarda una copia de cada exportación (opcional).
type Archiver interface {
	Archive(ctx context.Context, kind entity.LedgerKind, doc *dto.ExportFile) error
}

// Exporter arma los documentos y, si hay archivador, guarda una copia.
type Exporter struct {
	archive Archiver
}

// NewExporter construye el exportador. archive puede ser nil.
func NewExporter(archive Archiver) *Exporter {
	return &Exporter{archive: archive}
}

// Export genera el documento del libro en el formato pedido (csv, xlsx o pdf).
// Una falla al archivar se registra y no afecta la descarga.
func (e *Exporter) Export(ctx context.Context, kind entity.LedgerKind, rollups []ledger.Rollup, format string, now time.Time) (*dto.ExportFile, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	t := buildTable(kind, rollups)

	var data []byte
	switch f {
	case FormatCSV:
		data = WriteCSV(t.header, t.rows)
	case FormatXLSX:
		data, err = writeXLSX(kind, t)
	case FormatPDF:
		data, err = writePDF(kind, t, rollups, now)
	}
	if err != nil {
		return nil, err
	}

	doc := &dto.ExportFile{Filename: Filename(kind, f, now), ContentType: f.ContentType(), Data: data}
	if e.archive != nil {
		if err := e.archive.Archive(ctx, kind, doc); err != nil {
			log.Warn().Err(err).Str("ledger", string(kind)).Str("file", doc.Filename).Msg("no se pudo archivar la exportación")
		}
	}
	return doc, nil
}

// table filas ya formateadas; qtyCol indica la columna numérica de cantidad.
type table struct {
	header []string
	rows   [][]string
	qtyCol int
}

var (
	stockHeader    = []string{"SKU", "CANTIDAD", "TXT", "FECHA", "UBICACIÓN", "REVISAR"}
	movementHeader = []string{"FECHA", "ORIGEN", "DESTINO", "SKU", "CANTIDAD", "TXT"}
)

func buildTable(kind entity.LedgerKind, rollups []ledger.Rollup) table {
	rows := make([][]string, 0, len(rollups))
	if kind.IsMovement() {
		for _, r := range rollups {
			rows = append(rows, []string{
				formatDate(r.RecordedAt), r.Origin, r.Destination, r.SKU,
				strconv.FormatInt(r.TotalQuantity, 10), r.TXT(),
			})
		}
		return table{header: movementHeader, rows: rows, qtyCol: 4}
	}
	for _, r := range rollups {
		review := "NO"
		if r.NeedsReview {
			review = "SI"
		}
		rows = append(rows, []string{
			r.SKU, strconv.FormatInt(r.TotalQuantity, 10), r.TXT(),
			formatDate(r.RecordedAt), r.LocationsLabel(), review,
		})
	}
	return table{header: stockHeader, rows: rows, qtyCol: 1}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateLayout)
}
