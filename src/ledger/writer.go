// Package ledger encodes finalized ledger rows as CSV and reads processed CSVs back.
package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/security/validation"
)

// textColumns hold free text taken from the export and are sanitized when requested.
var textColumns = map[string]bool{
	config.ColPostedDate:      true,
	config.ColTransactionDate: true,
	config.ColAction:          true,
	config.ColTicker:          true,
	config.ColType:            true,
	config.ColTag:             true,
}

// Writer renders rows in a configured column order.
type Writer struct {
	columns  []string
	sanitize bool
}

func NewWriter(cfg *config.PipelineConfig) *Writer {
	if cfg == nil {
		cfg = config.DefaultPipelineConfig()
	}
	return &Writer{columns: cfg.OutputColumns(), sanitize: cfg.SanitizeFormulas}
}

// Header returns the output column names in order.
func (w *Writer) Header() []string {
	return append([]string(nil), w.columns...)
}

// Write emits the header followed by one record per row.
func (w *Writer) Write(out io.Writer, rows []models.NormalizedTransaction) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(w.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(w.columns))
	for _, row := range rows {
		for i, col := range w.columns {
			cell := Cell(row, col)
			if w.sanitize && textColumns[col] {
				cell = validation.SanitizeForFormulaInjection(cell)
			}
			record[i] = cell
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.RowID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Encode renders rows to a CSV string.
func (w *Writer) Encode(rows []models.NormalizedTransaction) (string, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf, rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Cell formats one column of a row. Money and strike use two decimals.
func Cell(row models.NormalizedTransaction, col string) string {
	switch col {
	case config.ColPostedDate:
		return row.PostedDate.String()
	case config.ColTransactionDate:
		return row.TransactionDate.String()
	case config.ColAction:
		return row.Action
	case config.ColTicker:
		return row.Ticker
	case config.ColExpiry:
		if row.Option == nil {
			return ""
		}
		return row.Option.Expiry.String()
	case config.ColStrike:
		if !row.Option.HasStrike() {
			return ""
		}
		return row.Option.Strike.StringFixed(2)
	case config.ColOptionType:
		return string(row.Right())
	case config.ColType:
		return row.Category
	case config.ColQuantity:
		return row.Quantity.String()
	case config.ColPrice:
		return row.Price.StringFixed(2)
	case config.ColFees:
		return row.Fees.StringFixed(2)
	case config.ColAmount:
		return row.Amount.StringFixed(2)
	case config.ColNetAmount:
		return row.NetAmount.StringFixed(2)
	case config.ColStatus:
		return string(row.Status)
	case config.ColTag:
		return row.Tag
	}
	return ""
}
