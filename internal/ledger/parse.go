package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseUpload dispatches on the uploaded file name. Delimited text goes
// through encoding/csv, spreadsheets through excelize.
func ParseUpload(filename string, r io.Reader) (Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return Table{}, ErrUnsupportedFormat
	}
}

// ParseCSV reads a delimited text upload. The first record is the header.
func ParseCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("ledger: read csv: %w", err)
	}
	return tableFromRecords(records)
}

// ParseXLSX reads the first sheet of a spreadsheet upload.
func ParseXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("ledger: open xlsx: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyTable
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("ledger: read xlsx rows: %w", err)
	}
	return tableFromRecords(rows)
}

func tableFromRecords(records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrEmptyTable
	}
	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}
	return Table{Columns: columns, Rows: records[1:]}, nil
}
