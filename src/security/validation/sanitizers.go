package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxQueryLength bounds the free-text question sent to the assistant.
const MaxQueryLength = 2000

var ErrInvalidQuery = errors.New("invalid query")

// SanitizeForFormulaInjection prefixes a single quote when the cell would start a
// spreadsheet formula, so it is shown as text.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// StripUnprintable drops non-printable runes, keeping tab, newline and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CleanQuery strips unprintable characters from a user question and enforces its length.
func CleanQuery(q string) (string, error) {
	q = strings.TrimSpace(StripUnprintable(q))
	if q == "" {
		return "", fmt.Errorf("%w: query is empty", ErrInvalidQuery)
	}
	if len([]rune(q)) > MaxQueryLength {
		return "", fmt.Errorf("%w: query exceeds %d characters", ErrInvalidQuery, MaxQueryLength)
	}
	return q, nil
}
