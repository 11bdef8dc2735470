package processors

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/username/tradeledger/src/models"
)

// SummaryProcessor aggregates a finalized ledger.
type SummaryProcessor struct {
	netFees bool
}

// NewSummaryProcessor creates a summarizer. With netFees the total is computed on NetAmount.
func NewSummaryProcessor(netFees bool) *SummaryProcessor {
	return &SummaryProcessor{netFees: netFees}
}

func (p *SummaryProcessor) Summarize(rows []models.NormalizedTransaction) models.Summary {
	summary := models.Summary{
		TotalTrades:   len(rows),
		SymbolsTraded: []string{},
		OptionTypes:   make(map[string]int),
	}

	seen := make(map[string]bool)
	var minDate, maxDate time.Time
	total := decimal.Zero

	for _, row := range rows {
		if row.Ticker != "" && !seen[row.Ticker] {
			seen[row.Ticker] = true
			summary.SymbolsTraded = append(summary.SymbolsTraded, row.Ticker)
		}

		if row.PostedDate.Valid {
			if minDate.IsZero() || row.PostedDate.Time.Before(minDate) {
				minDate = row.PostedDate.Time
			}
			if maxDate.IsZero() || row.PostedDate.Time.After(maxDate) {
				maxDate = row.PostedDate.Time
			}
		}

		if p.netFees {
			total = total.Add(row.NetAmount)
		} else {
			total = total.Add(row.Amount)
		}

		if row.IsOption() && row.Option.Right != "" {
			summary.OptionTypes[string(row.Option.Right)]++
		}
	}

	if !minDate.IsZero() {
		summary.MinPostedDate = minDate.Format(models.LedgerDateFormat)
		summary.MaxPostedDate = maxDate.Format(models.LedgerDateFormat)
		summary.DateRange = summary.MinPostedDate + " to " + summary.MaxPostedDate
	}
	summary.TotalAmount = FormatUSD(total)
	return summary
}

// FormatUSD renders an amount as "$1,234.56" or "-$1,234.56".
func FormatUSD(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	return money.New(cents, "USD").Display()
}
