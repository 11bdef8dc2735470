package processors

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/tradeledger/src/models"
)

// symbolPattern: ticker, optional MM/DD/YYYY expiry, optional strike with optional "$",
// optional put/call indicator.
var symbolPattern = regexp.MustCompile(
	`(?i)^([A-Z0-9_./\-]+)(?:\s+(\d{1,2}/\d{1,2}/\d{4}))?(?:\s+\$?(\d+(?:\.\d+)?))?(?:\s+(PUT|CALL|P|C))?$`,
)

// ParseSymbol splits a Symbol cell into its ticker and, when a put/call indicator is
// present, the option contract terms. Text not following the pattern yields its first
// token as a stock ticker.
func ParseSymbol(s string) (string, *models.OptionDetail) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", nil
	}

	m := symbolPattern.FindStringSubmatch(s)
	if m == nil {
		return strings.Fields(s)[0], nil
	}

	ticker, expiry, strike, right := m[1], m[2], m[3], strings.ToUpper(m[4])
	if right == "" {
		return ticker, nil
	}

	opt := &models.OptionDetail{Expiry: ParseDate(expiry)}
	if strike != "" {
		if d, err := decimal.NewFromString(strike); err == nil {
			opt.Strike = d
		}
	}
	switch right {
	case "P", "PUT":
		opt.Right = models.Put
	case "C", "CALL":
		opt.Right = models.Call
	}
	return ticker, opt
}
