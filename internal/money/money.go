package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Parse reads an amount typed by a person or sent by a catalog.
// Format examples: "1.234,56" -> 1234.56, "12,5" -> 12.5, "R$ 3.99" -> 3.99, "1,234.56" -> 1234.56.
// When both separators appear, the last one is the decimal separator.
func Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.ReplaceAll(clean, " ", "")

	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	comma := strings.LastIndex(clean, ",")
	dot := strings.LastIndex(clean, ".")

	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0:
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return d, nil
}

// Format renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
func Format(d decimal.Decimal) string {
	return printer.Sprintf("R$ %.2f", d.Round(2).InexactFloat64())
}
