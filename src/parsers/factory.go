package parsers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/username/tradeledger/src/parsers/ibkr"
	"github.com/username/tradeledger/src/parsers/schwab"
)

// Supported export formats.
const (
	SourceSchwab = "schwab"
	SourceIBKR   = "ibkr"

	// DefaultSource is used when the caller does not name the broker.
	DefaultSource = SourceSchwab
)

// GetParser returns the parser for a broker export format. requiredColumns lists the
// columns whose absence rejects a CSV file; XML reports have a fixed schema.
func GetParser(source string, requiredColumns []string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", SourceSchwab, "generic":
		return schwab.NewParser(requiredColumns), nil
	case SourceIBKR:
		return ibkr.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}

// DetectSource guesses the export format from the first bytes of the file.
func DetectSource(data []byte) string {
	head := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	if bytes.HasPrefix(head, []byte("<")) {
		return SourceIBKR
	}
	return SourceSchwab
}
