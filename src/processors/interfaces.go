package processors

import (
	"github.com/username/tradeledger/src/models"
)

// Normalizer turns raw export rows into ledger rows, dropping excluded ones.
type Normalizer interface {
	NormalizeAll(raws []models.RawTransaction) []models.NormalizedTransaction
}

// Matcher pairs opening and closing trades and reports the resulting status changes.
type Matcher interface {
	Match(rows []models.NormalizedTransaction) MatchResult
}

// Summarizer aggregates a finalized ledger.
type Summarizer interface {
	Summarize(rows []models.NormalizedTransaction) models.Summary
}
