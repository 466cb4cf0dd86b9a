// Package currencyutils formats money for display.
package currencyutils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// Symbol returns the display prefix for a currency code: a symbol when one
// is known, otherwise the code followed by a space. Empty in, empty out.
func Symbol(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return ""
	}
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// FormatAmount formats an amount with two decimal places, thousands
// separators and its currency, e.g. "$1,234.56", "-€4.50" or "CHF 12.00".
func FormatAmount(amount decimal.Decimal, currency string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + Symbol(currency) + groupThousands(amount.Abs().StringFixed(2))
}

func groupThousands(fixed string) string {
	whole, frac, _ := strings.Cut(fixed, ".")
	if len(whole) <= 3 {
		return fixed
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
