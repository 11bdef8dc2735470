package models

// Summary aggregates a finalized ledger for display next to the processed CSV.
type Summary struct {
	TotalTrades   int            `json:"total_trades"`
	SymbolsTraded []string       `json:"symbols_traded"`
	MinPostedDate string         `json:"min_posted_date"`
	MaxPostedDate string         `json:"max_posted_date"`
	DateRange     string         `json:"date_range"`
	TotalAmount   string         `json:"total_amount"` // currency formatted, e.g. "$1,234.56"
	OptionTypes   map[string]int `json:"option_types"` // rows per option right
}

// LedgerResult is what one processed upload produces.
type LedgerResult struct {
	LedgerID     string                  `json:"ledger_id"`
	Rows         []NormalizedTransaction `json:"-"`
	ProcessedCSV string                  `json:"processed_csv"`
	Summary      Summary                 `json:"summary"`
}
