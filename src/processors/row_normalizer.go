package processors

import (
	"strings"
	"time"

	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
)

// RowNormalizer converts raw export rows into typed ledger rows. It never fails a row:
// malformed values degrade to zero, empty, or the original text.
type RowNormalizer struct {
	cfg *config.PipelineConfig
	now func() time.Time
}

func NewRowNormalizer(cfg *config.PipelineConfig) *RowNormalizer {
	if cfg == nil {
		cfg = config.DefaultPipelineConfig()
	}
	return &RowNormalizer{cfg: cfg, now: time.Now}
}

// WithClock replaces the processing clock used to expire options.
func (n *RowNormalizer) WithClock(now func() time.Time) *RowNormalizer {
	n.now = now
	return n
}

// Excluded reports whether the row is a cash sweep or an excluded action and must be dropped.
func (n *RowNormalizer) Excluded(raw models.RawTransaction) bool {
	ticker, _ := ParseSymbol(raw.Symbol)
	return n.cfg.IsExcludedTicker(ticker) || n.cfg.IsExcludedAction(raw.Action)
}

// Normalize converts a single raw row. rowID identifies the row in the raw table.
func (n *RowNormalizer) Normalize(raw models.RawTransaction, rowID int) models.NormalizedTransaction {
	return n.normalize(raw, rowID, n.now())
}

// NormalizeAll drops excluded rows and normalizes the rest, keeping input order.
// RowID is the index of the row in raws.
func (n *RowNormalizer) NormalizeAll(raws []models.RawTransaction) []models.NormalizedTransaction {
	now := n.now()
	rows := make([]models.NormalizedTransaction, 0, len(raws))
	dropped := 0
	for i, raw := range raws {
		if n.Excluded(raw) {
			dropped++
			continue
		}
		rows = append(rows, n.normalize(raw, i, now))
	}
	logger.L.Debug("Normalized raw rows", "input", len(raws), "kept", len(rows), "excluded", dropped)
	return rows
}

func (n *RowNormalizer) normalize(raw models.RawTransaction, rowID int, now time.Time) models.NormalizedTransaction {
	posted, transaction := SplitDate(raw.Date)
	ticker, opt := ParseSymbol(raw.Symbol)
	action := strings.TrimSpace(raw.Action)

	var right models.OptionRight
	if opt != nil {
		right = opt.Right
	}
	category := Classify(action, right)

	amount := ParseCurrency(raw.Amount)
	fees := ParseCurrency(raw.Fees).Abs()

	if !posted.Valid && !posted.IsEmpty() {
		logger.L.Debug("Unparsable date kept as text", "rowID", rowID, "date", raw.Date)
	}

	return models.NormalizedTransaction{
		RowID:           rowID,
		PostedDate:      posted,
		TransactionDate: transaction,
		Action:          action,
		Ticker:          ticker,
		Option:          opt,
		Category:        category,
		Quantity:        ParseCurrency(raw.Quantity),
		Price:           ParseCurrency(raw.Price),
		Fees:            fees,
		Amount:          amount,
		NetAmount:       amount.Sub(fees),
		Status:          ProvisionalStatus(action, category, opt, now, n.cfg.CloseOnActionText),
	}
}
