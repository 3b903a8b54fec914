// Package ledger parses uploaded transaction tables and computes GST totals.
package ledger

import (
	"errors"
	"fmt"
)

// AmountColumn is the obligatory input column, matched by exact name.
const AmountColumn = "Amount"

// Rates lists the selectable GST percentages.
var Rates = []int{5, 12, 18, 28}

var (
	// ErrMissingAmount indicates the upload has no Amount column.
	ErrMissingAmount = errors.New("ledger: file must contain an 'Amount' column")
	// ErrInvalidRate indicates a GST rate outside the supported set.
	ErrInvalidRate = errors.New("ledger: gst rate must be one of 5, 12, 18 or 28")
	// ErrEmptyTable indicates an upload without a header row.
	ErrEmptyTable = errors.New("ledger: file contains no header row")
	// ErrUnsupportedFormat indicates an upload with an unknown extension.
	ErrUnsupportedFormat = errors.New("ledger: unsupported file format")
)

// ParseError reports a malformed numeric cell in the Amount column.
type ParseError struct {
	Row   int
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ledger: row %d: cannot parse amount %q", e.Row, e.Value)
}

// Table is an ordered tabular upload: a header plus raw string cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Cell returns the value at (row, column index), tolerating ragged rows.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	cells := t.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// ColumnIndex returns the position of an exact column name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ValidRate reports whether rate is one of the supported GST percentages.
func ValidRate(rate int) bool {
	for _, r := range Rates {
		if r == rate {
			return true
		}
	}
	return false
}
