// Package export turns a working table and its totals into downloadable
// artifacts.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gst-reporter/gst-reporter/internal/ledger"
	"github.com/gst-reporter/gst-reporter/internal/money"
)

// PDFRenderer converts an HTML document into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFExporter renders the working table as a paginated compliance report.
type PDFExporter struct {
	Renderer PDFRenderer
}

// RenderReport builds the report HTML and converts it to PDF.
func (p *PDFExporter) RenderReport(ctx context.Context, ws *ledger.Workset) ([]byte, error) {
	if p == nil || p.Renderer == nil {
		return nil, fmt.Errorf("export: pdf renderer not initialised")
	}
	return p.Renderer.RenderHTML(ctx, BuildReportHTML(ws))
}

// PDFFilename returns the timestamped download name for a generated PDF.
func PDFFilename(now time.Time) string {
	return "report_" + now.Format("20060102_150405") + ".pdf"
}

// BuildReportHTML lays out the title block, the bordered table with a
// shaded bold header and right-aligned numeric cells, and the three
// labeled total lines.
func BuildReportHTML(ws *ledger.Workset) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:Helvetica,sans-serif;margin:40px;}h1{font-size:22px;}")
	b.WriteString("table{border-collapse:collapse;margin:30px auto 40px;}")
	b.WriteString("th,td{border:1px solid #000;padding:8px;}")
	b.WriteString("th{background:#d3d3d3;font-weight:bold;text-align:left;}")
	b.WriteString("td{text-align:right;}td:first-child{text-align:left;}")
	b.WriteString("h3{font-size:14px;margin:6px 0;}")
	b.WriteString("</style></head><body>")
	b.WriteString("<h1>GST Compliance Report</h1>")

	b.WriteString("<table><thead><tr>")
	for _, col := range ws.Columns {
		b.WriteString("<th>")
		b.WriteString(htmlEscape(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range ws.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(htmlEscape(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	for _, line := range TotalLines(ws.Totals) {
		b.WriteString("<h3>")
		b.WriteString(htmlEscape(line))
		b.WriteString("</h3>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

// TotalLines formats the three labeled totals as currency strings.
func TotalLines(totals ledger.Totals) []string {
	return []string{
		"Total Amount : " + money.FormatRs(totals.TotalAmount),
		"Total GST    : " + money.FormatRs(totals.TotalGST),
		"Grand Total  : " + money.FormatRs(totals.GrandTotal),
	}
}

func htmlEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(v)
}
