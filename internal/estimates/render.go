package estimates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"github.com/shopspring/decimal"
)

//go:embed templates/estimate.html.tmpl
var templateFS embed.FS

var estimateTemplate = template.Must(
	template.New("estimate.html.tmpl").Funcs(template.FuncMap{
		"inr":  func(d decimal.Decimal) string { return "₹ " + FormatINR(d) },
		"sqft": formatSquareFeet,
		"date": func(e Estimate) string { return e.Date.Format("02/01/2006") },
		"last": func(i int, items []Item) bool { return i == len(items)-1 },
	}).ParseFS(templateFS, "templates/estimate.html.tmpl"),
)

// Render produces the printable HTML document for an estimate. All values
// are escaped by html/template.
func Render(e Estimate) (string, error) {
	var buf bytes.Buffer
	if err := estimateTemplate.Execute(&buf, e); err != nil {
		return "", fmt.Errorf("render estimate %s: %w", e.Number, err)
	}
	return buf.String(), nil
}

// formatSquareFeet leaves the cell blank for zero.
func formatSquareFeet(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
