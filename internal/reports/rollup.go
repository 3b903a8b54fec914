package reports

import (
	"sort"
	"time"
)

// Rollup groups reports by the calendar month of their date and sums each
// column per group. The input arrives newest first, so chronological order
// is re-derived from the month key, ascending. An empty report list yields
// an empty bucket list. Rows whose stored date does not parse are skipped;
// Save always writes DateLayout, so this only guards hand-edited data.
func Rollup(reports []Report) []MonthlyBucket {
	byMonth := make(map[string]*MonthlyBucket)
	for _, r := range reports {
		ts, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			continue
		}
		key := ts.Format(MonthLayout)
		bucket := byMonth[key]
		if bucket == nil {
			bucket = &MonthlyBucket{Month: key}
			byMonth[key] = bucket
		}
		bucket.TotalAmount += r.TotalAmount
		bucket.TotalGST += r.TotalGST
		bucket.GrandTotal += r.GrandTotal
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, bucket := range byMonth {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}
