package services

import (
	"context"

	"github.com/username/tradeledger/src/models"
)

// LedgerService turns an uploaded export into a finalized ledger and keeps recent results.
type LedgerService interface {
	ProcessUpload(ctx context.Context, data []byte) (*models.LedgerResult, error)
	GetLedger(ledgerID string) (*models.LedgerResult, error)
}

// QueryRequest identifies the ledger a question is about, either by the ID of a
// recent upload or by the processed CSV itself.
type QueryRequest struct {
	Query        string
	LedgerID     string
	ProcessedCSV string
}

// QueryService answers free-text questions about a ledger.
type QueryService interface {
	Query(ctx context.Context, req QueryRequest) (string, error)
}
