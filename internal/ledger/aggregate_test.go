package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func almost(t *testing.T, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 1e-9 {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestAggregateWithRate(t *testing.T) {
	table := Table{
		Columns: []string{"Invoice", "Amount"},
		Rows: [][]string{
			{"INV-1", "1000"},
			{"INV-2", "2,500.50"},
		},
	}

	ws, err := Aggregate(table, 18)
	require.NoError(t, err)

	almost(t, 3500.50, ws.Totals.TotalAmount)
	almost(t, 630.09, ws.Totals.TotalGST)
	almost(t, 4130.59, ws.Totals.GrandTotal)

	assert.Equal(t, 18, ws.Rate)
	assert.Empty(t, ws.GSTSource)
	assert.Equal(t, []string{"Invoice", "Amount", "GST", "Total"}, ws.Columns)
	assert.Equal(t, []string{"INV-1", "1000", "180.00", "1180.00"}, ws.Rows[0])
	assert.Equal(t, []string{"INV-2", "2500.5", "450.09", "2950.59"}, ws.Rows[1])
}

func TestAggregateUsesGSTColumn(t *testing.T) {
	table := Table{
		Columns: []string{"Amount", "gst"},
		Rows: [][]string{
			{"100", "18"},
			{"200", "36"},
		},
	}

	// Rate must be ignored when the table already carries GST.
	ws, err := Aggregate(table, 0)
	require.NoError(t, err)

	almost(t, 300, ws.Totals.TotalAmount)
	almost(t, 54, ws.Totals.TotalGST)
	almost(t, 354, ws.Totals.GrandTotal)
	assert.Equal(t, "gst", ws.GSTSource)
	assert.Zero(t, ws.Rate)
}

func TestAggregateTaxColumnCaseInsensitive(t *testing.T) {
	table := Table{
		Columns: []string{"Amount", "TAX"},
		Rows:    [][]string{{"100", "5"}},
	}
	require.True(t, table.HasGSTColumn())

	ws, err := Aggregate(table, 0)
	require.NoError(t, err)
	almost(t, 5, ws.Totals.TotalGST)
	assert.Equal(t, "TAX", ws.GSTSource)
}

func TestAggregateCoercesBadTaxCellsToZero(t *testing.T) {
	table := Table{
		Columns: []string{"Amount", "GST"},
		Rows: [][]string{
			{"100", "n/a"},
			{"200", ""},
			{"300", "30"},
		},
	}

	ws, err := Aggregate(table, 0)
	require.NoError(t, err)
	almost(t, 600, ws.Totals.TotalAmount)
	almost(t, 30, ws.Totals.TotalGST)
	almost(t, 630, ws.Totals.GrandTotal)
}

func TestAggregateMissingAmountColumn(t *testing.T) {
	table := Table{Columns: []string{"amount"}, Rows: [][]string{{"100"}}}
	_, err := Aggregate(table, 18)
	assert.True(t, errors.Is(err, ErrMissingAmount), "column match must be exact")
}

func TestAggregateInvalidRate(t *testing.T) {
	table := Table{Columns: []string{"Amount"}, Rows: [][]string{{"100"}}}
	for _, rate := range []int{0, -5, 7, 100} {
		_, err := Aggregate(table, rate)
		assert.True(t, errors.Is(err, ErrInvalidRate), "rate %d", rate)
	}
	for _, rate := range Rates {
		_, err := Aggregate(table, rate)
		assert.NoError(t, err, "rate %d", rate)
	}
}

func TestAggregateBadAmountCell(t *testing.T) {
	table := Table{
		Columns: []string{"Amount"},
		Rows:    [][]string{{"100"}, {"abc"}},
	}

	_, err := Aggregate(table, 18)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Row)
	assert.Equal(t, "abc", parseErr.Value)
}

func TestAggregateOverwritesExistingDerivedColumns(t *testing.T) {
	table := Table{
		Columns: []string{"Amount", "GST", "Total"},
		Rows:    [][]string{{"100", "18", "stale"}},
	}

	ws, err := Aggregate(table, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount", "GST", "Total"}, ws.Columns)
	assert.Equal(t, []string{"100", "18.00", "118.00"}, ws.Rows[0])
}

func TestParseAmountStripsSeparators(t *testing.T) {
	v, err := ParseAmount(" 1,234,567.89 ")
	require.NoError(t, err)
	almost(t, 1234567.89, v)

	_, err = ParseAmount("12a")
	assert.Error(t, err)
}
