package export

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
)

// maxQRPayload por encima de esto el QR deja de ser legible con lectores de mano.
const maxQRPayload = 1500

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 192, Green: 0, Blue: 0}
)

// columnas de 12 por libro, mismo orden que el encabezado del CSV.
var (
	stockColSizes    = []int{2, 1, 3, 2, 3, 1}
	movementColSizes = []int{2, 2, 2, 2, 1, 3}
)

// writePDF arma el resumen del libro con Maroto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Libro + fecha de generación                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: columnas del CSV                                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: filas / unidades / filas a revisar                 │
//	│  QR con las líneas TXT (sku,cantidad)                        │
//	└─────────────────────────────────────────────────────────────┘
func writePDF(kind entity.LedgerKind, t table, rollups []ledger.Rollup, now time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Resumen "+kind.ExportPrefix(), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(kind, now))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	sizes := stockColSizes
	if kind.IsMovement() {
		sizes = movementColSizes
	}
	m.AddRows(tableHeaderRow(t.header, sizes))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableRows(kind, t, sizes)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rollups))

	if qr := txtPayload(rollups); qr != "" && len(qr) <= maxQRPayload {
		m.AddRows(line.NewRow(3))
		m.AddRows(row.New(50).Add(
			col.New(4).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(text.New("Escanea el código QR para cargar las líneas TXT (sku,cantidad).", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			})),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: nombre del libro (izq) y fecha de generación (der).
func headerRow(kind entity.LedgerKind, now time.Time) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New(strings.ToUpper(kind.ExportPrefix()), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Resumen por producto", props.Text{Size: 9, Top: 8, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Generado: "+now.Local().Format(DateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(header []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(header))
	for i, h := range header {
		cols = append(cols, col.New(sizes[i]).Add(text.New(h, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...)
}

func tableRows(kind entity.LedgerKind, t table, sizes []int) []core.Row {
	result := make([]core.Row, 0, len(t.rows))
	for _, r := range t.rows {
		review := !kind.IsMovement() && r[len(r)-1] == "SI"
		cols := make([]core.Col, 0, len(r))
		for i, v := range r {
			p := props.Text{Size: 7.5, Top: 1, Left: 1, Right: 1}
			if i == t.qtyCol {
				p.Align = align.Right
			}
			if review {
				p.Color = colorAlert
			}
			cols = append(cols, col.New(sizes[i]).Add(text.New(v, p)))
		}
		result = append(result, row.New(6).Add(cols...))
	}
	return result
}

func totalsRow(rollups []ledger.Rollup) core.Row {
	var units int64
	review := 0
	for _, r := range rollups {
		units += r.TotalQuantity
		if r.NeedsReview {
			review++
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(label("Filas:"), label("Unidades:"), label("Por revisar:")),
		col.New(3).Add(
			value(fmt.Sprintf("%d", len(rollups))),
			value(fmt.Sprintf("%d", units)),
			value(fmt.Sprintf("%d", review)),
		),
	)
}

func txtPayload(rollups []ledger.Rollup) string {
	lines := make([]string, 0, len(rollups))
	for _, r := range rollups {
		lines = append(lines, r.TXT())
	}
	return strings.Join(lines, "\n")
}
