package ledger

import (
	"strconv"
	"strings"
)

// Derived column names appended to the working table.
const (
	GSTColumn   = "GST"
	TotalColumn = "Total"
)

// Totals carries the three scalar sums of a working table.
type Totals struct {
	TotalAmount float64 `json:"total_amount"`
	TotalGST    float64 `json:"total_gst"`
	GrandTotal  float64 `json:"grand_total"`
}

// Workset is the fully derived working table for one upload: the original
// columns plus GST and Total, per-row numeric values, and the three totals.
// It lives only for the duration of one upload (see Cache).
type Workset struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Amounts   []float64  `json:"amounts"`
	GSTs      []float64  `json:"gsts"`
	RowTotals []float64  `json:"row_totals"`
	Totals    Totals     `json:"totals"`
	// GSTSource is the name of the input column GST was copied from,
	// empty when a rate was applied instead.
	GSTSource string `json:"gst_source"`
	// Rate is the applied percentage, zero when GSTSource is set.
	Rate int `json:"rate"`
}

// HasGSTColumn reports whether the table carries its own GST or tax column,
// matched case-insensitively. When true, no rate selection is needed.
func (t Table) HasGSTColumn() bool {
	return t.gstColumnIndex() >= 0
}

func (t Table) gstColumnIndex() int {
	for i, c := range t.Columns {
		switch strings.ToLower(c) {
		case "gst", "tax":
			return i
		}
	}
	return -1
}

// Aggregate derives GST and Total for every row and reduces the table to
// its three scalar totals. The rate argument is consulted only when the
// table has no GST/tax column of its own.
func Aggregate(t Table, rate int) (*Workset, error) {
	amountIdx := t.ColumnIndex(AmountColumn)
	if amountIdx < 0 {
		return nil, ErrMissingAmount
	}

	gstIdx := t.gstColumnIndex()
	if gstIdx < 0 && !ValidRate(rate) {
		return nil, ErrInvalidRate
	}

	ws := &Workset{
		Amounts:   make([]float64, len(t.Rows)),
		GSTs:      make([]float64, len(t.Rows)),
		RowTotals: make([]float64, len(t.Rows)),
	}
	if gstIdx >= 0 {
		ws.GSTSource = t.Columns[gstIdx]
	} else {
		ws.Rate = rate
	}

	for i := range t.Rows {
		amount, err := ParseAmount(t.Cell(i, amountIdx))
		if err != nil {
			return nil, &ParseError{Row: i + 1, Value: t.Cell(i, amountIdx)}
		}

		var gst float64
		if gstIdx >= 0 {
			// Malformed or missing tax cells coerce to zero.
			gst = coerceNumeric(t.Cell(i, gstIdx))
		} else {
			gst = amount * float64(rate) / 100
		}

		ws.Amounts[i] = amount
		ws.GSTs[i] = gst
		ws.RowTotals[i] = amount + gst

		ws.Totals.TotalAmount += amount
		ws.Totals.TotalGST += gst
		ws.Totals.GrandTotal += amount + gst
	}

	ws.Columns, ws.Rows = deriveCells(t, amountIdx, ws)
	return ws, nil
}

// ParseAmount parses a numeric cell, stripping thousands separators.
func ParseAmount(cell string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

func coerceNumeric(cell string) float64 {
	v, err := ParseAmount(cell)
	if err != nil {
		return 0
	}
	return v
}

// deriveCells rebuilds the display table: Amount cells normalised, GST and
// Total written in place when a column of that exact name exists, appended
// otherwise.
func deriveCells(t Table, amountIdx int, ws *Workset) ([]string, [][]string) {
	columns := append([]string(nil), t.Columns...)
	gstIdx := indexOf(columns, GSTColumn)
	if gstIdx < 0 {
		columns = append(columns, GSTColumn)
		gstIdx = len(columns) - 1
	}
	totalIdx := indexOf(columns, TotalColumn)
	if totalIdx < 0 {
		columns = append(columns, TotalColumn)
		totalIdx = len(columns) - 1
	}

	rows := make([][]string, len(t.Rows))
	for i := range t.Rows {
		cells := make([]string, len(columns))
		for j := range t.Columns {
			cells[j] = t.Cell(i, j)
		}
		cells[amountIdx] = strconv.FormatFloat(ws.Amounts[i], 'f', -1, 64)
		cells[gstIdx] = strconv.FormatFloat(ws.GSTs[i], 'f', 2, 64)
		cells[totalIdx] = strconv.FormatFloat(ws.RowTotals[i], 'f', 2, 64)
		rows[i] = cells
	}
	return columns, rows
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
