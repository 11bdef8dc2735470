package services

import "errors"

var (
	ErrParsingFailed    = errors.New("failed to parse transaction file")
	ErrProcessingFailed = errors.New("failed to process transactions")
	ErrLedgerNotFound   = errors.New("ledger not found")
)
