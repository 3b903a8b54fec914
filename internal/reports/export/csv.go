package export

import (
	"encoding/csv"
	"io"

	"github.com/gst-reporter/gst-reporter/internal/ledger"
)

// WriteCSV emits the working table, header first, as CSV.
func WriteCSV(w io.Writer, ws *ledger.Workset) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(ws.Columns); err != nil {
		return err
	}
	for _, row := range ws.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
