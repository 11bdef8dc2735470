package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/username/tradeledger/src/assistant"
	"github.com/username/tradeledger/src/ledger"
	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/security/validation"
)

type queryServiceImpl struct {
	ledgers   LedgerService
	assistant assistant.Assistant
}

// NewQueryService creates a query service. A nil assistant makes every query fail
// with assistant.ErrNotConfigured.
func NewQueryService(ledgers LedgerService, a assistant.Assistant) QueryService {
	return &queryServiceImpl{ledgers: ledgers, assistant: a}
}

func (s *queryServiceImpl) Query(ctx context.Context, req QueryRequest) (string, error) {
	question, err := validation.CleanQuery(req.Query)
	if err != nil {
		return "", err
	}

	rows, err := s.resolveRows(req)
	if err != nil {
		return "", err
	}

	if s.assistant == nil {
		return "", assistant.ErrNotConfigured
	}

	ctx, span := logger.StartSpan(ctx, "ledger.query")
	defer span.End()

	logger.FromContext(ctx).Info("Answering ledger query", "ledgerID", req.LedgerID, "rows", len(rows))
	answer, err := s.assistant.Ask(ctx, rows, question)
	if err != nil {
		return "", fmt.Errorf("assistant query failed: %w", err)
	}
	return answer, nil
}

func (s *queryServiceImpl) resolveRows(req QueryRequest) ([]models.NormalizedTransaction, error) {
	if req.LedgerID != "" {
		result, err := s.ledgers.GetLedger(req.LedgerID)
		if err != nil {
			return nil, err
		}
		return result.Rows, nil
	}
	if strings.TrimSpace(req.ProcessedCSV) != "" {
		rows, err := ledger.ReadCSV(strings.NewReader(req.ProcessedCSV))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: provide a ledger_id or the processed CSV", ErrLedgerNotFound)
}
