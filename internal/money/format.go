// Package money formats monetary values for display and documents.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Prefix is the fixed currency marker used across reports. A plain ASCII
// prefix keeps PDF and CSV artifacts free of font and encoding issues.
const Prefix = "Rs. "

var printer = message.NewPrinter(language.English)

// Format renders a value with thousands separators and two decimals,
// e.g. 3500.5 becomes "3,500.50".
func Format(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatRs renders a value with the fixed currency prefix,
// e.g. "Rs. 3,500.50".
func FormatRs(v float64) string {
	return Prefix + Format(v)
}
