// Package receipt renders committed sales as plain-text till receipts.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

const width = 40

const receiptTemplate = `{{center .Shop}}
{{rule}}
Receipt #{{.Receipt.ID}}
Date:     {{.Receipt.SaleDatetime.Format "2006-01-02 15:04"}}
Cashier:  {{.Receipt.Username}}
{{- with .Receipt.CustomerName}}
Customer: {{.}}
{{- end}}
{{rule}}
{{- range .Receipt.Lines}}
{{.Name}}
  {{qty .Quantity}} {{.Unit}} x {{money .UnitPrice}}{{right (money .LineTotal)}}
{{- end}}
{{rule}}
TOTAL{{right (money .Receipt.TotalAmount)}}
{{rule}}
{{center "Thank you!"}}
`

var tmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"rule":   func() string { return strings.Repeat("-", width) },
	"center": center,
	"right":  func(s string) string { return fmt.Sprintf("%*s", width/2, s) },
	"money":  func(d decimal.Decimal) string { return d.StringFixed(2) },
	"qty":    func(d decimal.Decimal) string { return d.String() },
}).Parse(receiptTemplate))

func center(s string) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}

// Render writes r as a fixed-width text receipt headed by shop.
func Render(w io.Writer, shop string, r *models.Receipt) error {
	if r == nil {
		return fmt.Errorf("render receipt: nil receipt")
	}
	data := struct {
		Shop    string
		Receipt *models.Receipt
	}{shop, r}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render receipt %d: %w", r.ID, err)
	}
	return nil
}
