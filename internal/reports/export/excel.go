package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gst-reporter/gst-reporter/internal/ledger"
)

const excelSheet = "Report"

// WriteExcel serialises the working table, including the derived GST and
// Total columns, to a single-sheet workbook.
func WriteExcel(ws *ledger.Workset) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	index, err := f.NewSheet(excelSheet)
	if err != nil {
		return nil, fmt.Errorf("export: new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: drop default sheet: %w", err)
	}

	header := make([]interface{}, len(ws.Columns))
	for i, col := range ws.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(excelSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}

	for i, row := range ws.Rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			// Numeric cells become numbers so spreadsheet formulas work.
			if v, err := ledger.ParseAmount(cell); err == nil {
				cells[j] = v
			} else {
				cells[j] = cell
			}
		}
		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(excelSheet, anchor, &cells); err != nil {
			return nil, fmt.Errorf("export: write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExcelFilename returns the timestamped download name for a workbook.
func ExcelFilename(now time.Time) string {
	return "report_" + now.Format("20060102_150405") + ".xlsx"
}
