// Package charts renders dashboard figures as inline SVG.
package charts

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	Colors      []string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// PieOpts customises the pie chart renderer.
type PieOpts struct {
	Title       string
	Description string
	Colors      []string
	LabelColor  string
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 420
	DefaultHeight  = 300
	DefaultPadding = 32.0
	DefaultTicks   = 5
)

// Palette mirrors the dashboard accent colors: green for amounts, red for
// GST, blue for grand totals.
var Palette = []string{"#2ecc71", "#e74c3c", "#3498db"}
