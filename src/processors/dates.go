package processors

import (
	"regexp"
	"strings"
	"time"

	"github.com/username/tradeledger/src/models"
)

// asOfMarker separates the posted date from the effective date, e.g. "02/01/2024 as of 01/31/2024".
// Matched on the cell itself so offsets stay valid for any input bytes.
var asOfMarker = regexp.MustCompile(`(?i)as of`)

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"01/02/06",
}

// ParseDate parses one date cell. Text that matches no known layout is kept verbatim
// (trimmed) with Valid=false.
func ParseDate(s string) models.LedgerDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.LedgerDate{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewLedgerDate(t)
		}
	}
	return models.LedgerDate{Raw: s}
}

// SplitDate returns the posted and transaction dates of a Date cell. Without an
// "as of" suffix both are the same date.
func SplitDate(s string) (posted, transaction models.LedgerDate) {
	loc := asOfMarker.FindStringIndex(s)
	if loc == nil {
		d := ParseDate(s)
		return d, d
	}
	return ParseDate(s[:loc[0]]), ParseDate(s[loc[1]:])
}
