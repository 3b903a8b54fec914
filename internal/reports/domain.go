// Package reports persists computed GST totals per user and derives
// monthly summaries from them.
package reports

import "github.com/gst-reporter/gst-reporter/internal/ledger"

// DateLayout is the timestamp format stored with every report.
const DateLayout = "2006-01-02 15:04"

// MonthLayout is the bucket key granularity for monthly rollups.
const MonthLayout = "2006-01"

// Report is one immutable saved aggregate, owned by a single user.
type Report struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Date        string  `json:"date"`
	TotalAmount float64 `json:"total_amount"`
	TotalGST    float64 `json:"total_gst"`
	GrandTotal  float64 `json:"grand_total"`
}

// Totals re-exports the three scalar sums for persistence callers.
type Totals = ledger.Totals

// MonthlyBucket sums all of a user's reports falling in one calendar month.
type MonthlyBucket struct {
	Month       string  `json:"month"`
	TotalAmount float64 `json:"total_amount"`
	TotalGST    float64 `json:"total_gst"`
	GrandTotal  float64 `json:"grand_total"`
}
