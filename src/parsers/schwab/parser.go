package schwab

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/parsers/tabular"
)

// Column names of a brokerage transaction export.
const (
	colDate        = "Date"
	colAction      = "Action"
	colSymbol      = "Symbol"
	colDescription = "Description"
	colQuantity    = "Quantity"
	colPrice       = "Price"
	colAmount      = "Amount"
)

// DefaultRequiredColumns are checked when the caller passes none.
var DefaultRequiredColumns = []string{colDate, colAction, colSymbol, colQuantity, colPrice, colAmount}

// totalRowPrefix marks the summary line some exports append after the data.
const totalRowPrefix = "transactions total"

// Parser reads Schwab-style transaction history CSV exports.
type Parser struct {
	required []string
}

// NewParser creates a parser that rejects files lacking any of the required columns.
func NewParser(required []string) *Parser {
	if len(required) == 0 {
		required = DefaultRequiredColumns
	}
	return &Parser{required: required}
}

// Parse reads the whole export. Title lines above the header and trailing total
// rows are skipped; blank lines are ignored. A missing fee column is not an error.
func (p *Parser) Parse(file io.Reader) ([]models.RawTransaction, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}
	if len(records) == 0 {
		return nil, tabular.ErrEmptyFile
	}

	headerIdx := tabular.FindHeader(records, colDate, colAction)
	if headerIdx < 0 {
		headerIdx = 0
	}
	header := records[headerIdx]
	cols := tabular.IndexColumns(header)

	if missing := cols.Missing(p.required); len(missing) > 0 {
		original := make([]string, len(header))
		for i, name := range header {
			original[i] = strings.TrimSpace(name)
		}
		return nil, &tabular.MissingColumnsError{Missing: missing, Columns: original}
	}
	if _, ok := cols[tabular.FeesColumn]; !ok {
		logger.L.Debug("No fee column in export, fees default to zero", "columns", header)
	}

	var rawTxs []models.RawTransaction
	for _, record := range records[headerIdx+1:] {
		if tabular.IsBlank(record) {
			continue
		}
		date := cols.Get(record, colDate)
		if strings.HasPrefix(strings.ToLower(date), totalRowPrefix) {
			continue
		}
		rawTxs = append(rawTxs, models.RawTransaction{
			Line:        len(rawTxs) + 1,
			Date:        date,
			Action:      cols.Get(record, colAction),
			Symbol:      cols.Get(record, colSymbol),
			Description: cols.Get(record, colDescription),
			Quantity:    cols.Get(record, colQuantity),
			Price:       cols.Get(record, colPrice),
			Fees:        cols.Get(record, tabular.FeesColumn),
			Amount:      cols.Get(record, colAmount),
		})
	}

	logger.L.Debug("Parsed brokerage export", "rows", len(rawTxs), "headerLine", headerIdx+1)
	return rawTxs, nil
}
