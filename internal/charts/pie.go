package charts

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Pie renders a share chart with percentage labels per slice. Slices with
// non-positive values are dropped; at least one positive value is required.
func Pie(size int, values []float64, labels []string, opts PieOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("charts: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("charts: values length must match labels")
	}
	if size <= 0 {
		size = DefaultHeight
	}

	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return "", fmt.Errorf("charts: at least one positive value required")
	}

	colors := opts.Colors
	if len(colors) == 0 {
		colors = Palette
	}
	labelColor := fallback(opts.LabelColor, "#475569")

	cx := float64(size) / 2
	cy := float64(size) / 2
	radius := float64(size)/2 - 24

	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", size, size, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share comparison"))))

	// Start at twelve o'clock and sweep clockwise.
	angle := -math.Pi / 2
	for i, v := range values {
		if v <= 0 {
			continue
		}
		share := v / total
		sweep := share * 2 * math.Pi
		color := colors[i%len(colors)]

		if almostEqual(share, 1) {
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" aria-label=\"%s\"></circle>",
				cx, cy, radius, color, template.HTMLEscapeString(labels[i])))
		} else {
			x1 := cx + radius*math.Cos(angle)
			y1 := cy + radius*math.Sin(angle)
			x2 := cx + radius*math.Cos(angle+sweep)
			y2 := cy + radius*math.Sin(angle+sweep)
			largeArc := 0
			if sweep > math.Pi {
				largeArc = 1
			}
			b.WriteString(fmt.Sprintf("<path d=\"M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z\" fill=\"%s\" aria-label=\"%s\"></path>",
				cx, cy, x1, y1, radius, radius, largeArc, x2, y2, color, template.HTMLEscapeString(labels[i])))
		}

		mid := angle + sweep/2
		lx := cx + radius*0.6*math.Cos(mid)
		ly := cy + radius*0.6*math.Sin(mid)
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#ffffff\" font-size=\"12\" text-anchor=\"middle\">%s</text>",
			lx, ly, template.HTMLEscapeString(fmt.Sprintf("%.1f%%", share*100))))

		angle += sweep
	}

	// Legend along the bottom edge.
	legendX := 12.0
	legendY := float64(size) - 8
	for i, label := range labels {
		if values[i] <= 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, legendY-9, colors[i%len(colors)]))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", legendX+14, legendY, labelColor, template.HTMLEscapeString(label)))
		legendX += float64(14 + 7*len(label) + 16)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
