package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/control-v/internal/domain/entity"
)

func writeXLSX(kind entity.LedgerKind, t table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := kind.ExportPrefix()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx: nombrar hoja: %w", err)
	}

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	reviewStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
	})

	for i, h := range t.header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, r := range t.rows {
		for i, v := range r {
			col, _ := excelize.ColumnNumberToName(i + 1)
			cell := fmt.Sprintf("%s%d", col, rowIdx+2)
			if i == t.qtyCol {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					f.SetCellValue(sheet, cell, n)
					continue
				}
			}
			f.SetCellValue(sheet, cell, v)
			if !kind.IsMovement() && i == len(r)-1 && v == "SI" {
				f.SetCellStyle(sheet, cell, cell, reviewStyle)
			}
		}
	}

	colWidths := []float64{18, 12, 22, 20, 28, 10}
	if kind.IsMovement() {
		colWidths = []float64{20, 14, 14, 18, 12, 22}
	}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
