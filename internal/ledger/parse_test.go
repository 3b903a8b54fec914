package ledger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	in := "Invoice, Amount\nINV-1,1000\nINV-2,2500.50\n"

	table, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Invoice", "Amount"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2500.50", table.Cell(1, 1))
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyTable))
}

func TestParseCSVHeaderOnly(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("Amount\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Invoice", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"INV-1", 1000}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice", "Amount"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "1000", table.Cell(0, 1))
}

func TestParseUploadDispatch(t *testing.T) {
	table, err := ParseUpload("ledger.TXT", strings.NewReader("Amount\n100\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount"}, table.Columns)

	_, err = ParseUpload("ledger.pdf", strings.NewReader("x"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
