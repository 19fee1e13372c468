package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// Currency renders a decimal-as-text price as Brazilian currency, e.g.
// "1234.5" becomes "R$ 1.234,50". A single decimal comma is accepted in
// place of a dot. Values that do not parse as a number are returned
// unchanged so rows with unexpected price payloads still render.
func Currency(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return v
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return v
	}
	f, _ := d.Float64()
	return brl.Sprintf("R$ %.2f", f)
}

// NormalizeDecimal canonicalizes user-entered decimal text to dot
// notation, returning ok=false when the text is not a valid number.
// Prices travel as text end to end; they are never held as floats.
func NormalizeDecimal(v string) (string, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return "", false
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return "", false
	}
	return d.String(), true
}
