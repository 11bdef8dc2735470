package parsers

import (
	"io"

	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/parsers/tabular"
)

// ErrMissingColumns is returned (wrapped in a *tabular.MissingColumnsError) when the
// export lacks a required column.
var ErrMissingColumns = tabular.ErrMissingColumns

// Parser turns a broker export into raw transaction rows, one per data line.
type Parser interface {
	Parse(file io.Reader) ([]models.RawTransaction, error)
}
