package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
)

type fakeArchiver struct {
	calls []string
	err   error
}

func (f *fakeArchiver) Archive(_ context.Context, kind entity.LedgerKind, doc *dto.ExportFile) error {
	f.calls = append(f.calls, ObjectName(kind, doc.Filename))
	return f.err
}

var fecha = time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)

func stockRollups() []ledger.Rollup {
	return ledger.Aggregate(entity.LedgerPicking, []entity.Entry{
		{ID: "1", SKU: "A1", Location: "P-01", Quantity: 23, RecordedAt: fecha},
		{ID: "2", SKU: "B2", Location: `P"02`, Quantity: 5, RecordedAt: fecha},
		{ID: "3", SKU: "A1", Location: "P-07", Quantity: 10, RecordedAt: fecha.Add(time.Hour)},
	})
}

func TestWriteCSV_Formato(t *testing.T) {
	got := WriteCSV([]string{"SKU", "TXT"}, [][]string{{"A1", `di "x"`}, {"", "b;c"}})
	want := bom + "\"SKU\";\"TXT\"\n\"A1\";\"di \"\"x\"\"\"\n\"\";\"b;c\""
	assert.Equal(t, want, string(got))
}

func TestExport_CSVStock(t *testing.T) {
	e := NewExporter(nil)
	doc, err := e.Export(context.Background(), entity.LedgerPicking, stockRollups(), "csv", fecha)
	require.NoError(t, err)

	assert.Equal(t, "Picking_"+fecha.UTC().Format("2006-01-02")+".csv", doc.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)
	want := bom +
		`"SKU";"CANTIDAD";"TXT";"FECHA";"UBICACIÓN";"REVISAR"` + "\n" +
		`"A1";"33";"A1,33";"09/03/2024 14:05:00";"P-01 ; P-07";"SI"` + "\n" +
		`"B2";"5";"B2,5";"09/03/2024 14:05:00";"P""02";"NO"`
	assert.Equal(t, want, string(doc.Data))
}

func TestExport_CSVMovimientos(t *testing.T) {
	rollups := ledger.Aggregate(entity.LedgerMovement, []entity.Entry{
		{ID: "1", SKU: "A1", Origin: "R1", Destination: "R2", Quantity: 4, RecordedAt: fecha},
		{ID: "2", SKU: "A1", Origin: "R1", Destination: "R2", Quantity: 6, RecordedAt: fecha},
	})
	doc, err := NewExporter(nil).Export(context.Background(), entity.LedgerMovement, rollups, "csv", fecha)
	require.NoError(t, err)
	want := bom +
		`"FECHA";"ORIGEN";"DESTINO";"SKU";"CANTIDAD";"TXT"` + "\n" +
		`"09/03/2024 14:05:00";"R1";"R2";"A1";"10";"A1,10"`
	assert.Equal(t, want, string(doc.Data))
	assert.Contains(t, doc.Filename, "Movimientos_")
}

func TestExport_XLSX(t *testing.T) {
	doc, err := NewExporter(nil).Export(context.Background(), entity.LedgerWarehouse, stockRollups(), "xlsx", fecha)
	require.NoError(t, err)
	assert.Contains(t, doc.Filename, "Almacén_")

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Almacén")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, stockHeader, rows[0])
	assert.Equal(t, "A1", rows[1][0])
	assert.Equal(t, "33", rows[1][1])
	assert.Equal(t, "SI", rows[1][5])
}

func TestExport_PDF(t *testing.T) {
	doc, err := NewExporter(nil).Export(context.Background(), entity.LedgerPicking, stockRollups(), "PDF", fecha)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestExport_ArchivaSinFallarDescarga(t *testing.T) {
	arch := &fakeArchiver{err: errors.New("minio caído")}
	doc, err := NewExporter(arch).Export(context.Background(), entity.LedgerPicking, stockRollups(), "csv", fecha)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, []string{"exports/picking/" + doc.Filename}, arch.calls)
}

func TestExport_FormatoNoSoportado(t *testing.T) {
	_, err := NewExporter(nil).Export(context.Background(), entity.LedgerPicking, nil, "docx", fecha)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
