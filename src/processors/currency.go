package processors

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "")

// ParseCurrency converts a brokerage money string such as "($1,234.56)" or "-$5.00"
// into a decimal. Parentheses mean negative. Anything unparsable, including "", is zero.
func ParseCurrency(s string) decimal.Decimal {
	s = currencyReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Abs().Neg()
	}
	return d
}
