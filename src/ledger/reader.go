package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/parsers/tabular"
	"github.com/username/tradeledger/src/processors"
)

var ErrNotLedger = errors.New("not a processed ledger CSV")

// ReadCSV decodes a CSV produced by Writer. Columns may appear in any order; the
// Ticker and Type columns are required. RowID is the data row index.
func ReadCSV(r io.Reader) ([]models.NormalizedTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, tabular.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger header: %w", err)
	}

	cols := tabular.IndexColumns(header)
	if missing := cols.Missing([]string{config.ColTicker, config.ColType}); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotLedger, strings.Join(missing, ", "))
	}

	var rows []models.NormalizedTransaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger row %d: %w", len(rows)+1, err)
		}
		if tabular.IsBlank(record) {
			continue
		}
		rows = append(rows, decodeRow(cols, record, len(rows)))
	}
	return rows, nil
}

func decodeRow(cols tabular.Columns, record []string, rowID int) models.NormalizedTransaction {
	get := func(name string) string {
		return strings.TrimPrefix(cols.Get(record, name), "'")
	}

	row := models.NormalizedTransaction{
		RowID:           rowID,
		PostedDate:      processors.ParseDate(get(config.ColPostedDate)),
		TransactionDate: processors.ParseDate(get(config.ColTransactionDate)),
		Action:          get(config.ColAction),
		Ticker:          get(config.ColTicker),
		Category:        get(config.ColType),
		Quantity:        processors.ParseCurrency(get(config.ColQuantity)),
		Price:           processors.ParseCurrency(get(config.ColPrice)),
		Fees:            processors.ParseCurrency(get(config.ColFees)).Abs(),
		Amount:          processors.ParseCurrency(get(config.ColAmount)),
		Status:          models.LifecycleStatus(get(config.ColStatus)),
		Tag:             get(config.ColTag),
	}

	if _, ok := cols[config.ColNetAmount]; ok {
		row.NetAmount = processors.ParseCurrency(get(config.ColNetAmount))
	} else {
		row.NetAmount = row.Amount.Sub(row.Fees)
	}

	switch models.OptionRight(get(config.ColOptionType)) {
	case models.Put:
		row.Option = &models.OptionDetail{Right: models.Put}
	case models.Call:
		row.Option = &models.OptionDetail{Right: models.Call}
	}
	if row.Option != nil {
		row.Option.Expiry = processors.ParseDate(get(config.ColExpiry))
		row.Option.Strike = processors.ParseCurrency(get(config.ColStrike))
	}
	return row
}
