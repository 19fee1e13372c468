// Package format holds the display helpers shared by every section:
// locale currency rendering and the Brazilian CNPJ / phone input masks.
package format

import "strings"

// Digits strips everything but ASCII digits from s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskCNPJ formats a CNPJ as 00.000.000/0000-00, inserting separators as
// digits accumulate. The output depends only on the digit content of the
// input, so re-masking an already masked value is a no-op.
func MaskCNPJ(v string) string {
	d := Digits(v)
	if len(d) > 14 {
		d = d[:14]
	}
	p1 := slice(d, 0, 2)
	p2 := slice(d, 2, 5)
	p3 := slice(d, 5, 8)
	p4 := slice(d, 8, 12)
	p5 := slice(d, 12, 14)

	switch {
	case len(d) <= 2:
		return p1
	case len(d) <= 5:
		return p1 + "." + p2
	case len(d) <= 8:
		return p1 + "." + p2 + "." + p3
	case len(d) <= 12:
		return p1 + "." + p2 + "." + p3 + "/" + p4
	default:
		return p1 + "." + p2 + "." + p3 + "/" + p4 + "-" + p5
	}
}

// MaskPhone formats a Brazilian phone number. Ten digits render as
// (00) 0000-0000, eleven as (00) 00000-0000; the exchange part grows by
// one digit for mobile numbers. Idempotent like MaskCNPJ.
func MaskPhone(v string) string {
	d := Digits(v)
	if len(d) > 11 {
		d = d[:11]
	}

	exchangeEnd := 6
	if len(d) == 11 {
		exchangeEnd = 7
	}

	area := slice(d, 0, 2)
	exchange := slice(d, 2, exchangeEnd)
	line := slice(d, exchangeEnd, exchangeEnd+4)

	var b strings.Builder
	if area != "" {
		b.WriteString("(" + area + ") ")
	}
	b.WriteString(exchange)
	if exchange != "" {
		b.WriteString("-")
	}
	b.WriteString(line)
	return b.String()
}

func slice(s string, from, to int) string {
	if from > len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
