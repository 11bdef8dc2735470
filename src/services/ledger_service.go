package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/ledger"
	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/parsers"
	"github.com/username/tradeledger/src/parsers/tabular"
	"github.com/username/tradeledger/src/processors"
	"github.com/username/tradeledger/src/utils"
)

const (
	ckLedgerByID   = "ledger_id_%s"
	ckLedgerByHash = "ledger_hash_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type ledgerServiceImpl struct {
	pipeline    *config.PipelineConfig
	normalizer  processors.Normalizer
	matcher     processors.Matcher
	summarizer  processors.Summarizer
	writer      *ledger.Writer
	resultCache *cache.Cache
	ttl         time.Duration
}

func NewLedgerService(
	pipeline *config.PipelineConfig,
	normalizer processors.Normalizer,
	matcher processors.Matcher,
	summarizer processors.Summarizer,
	resultCache *cache.Cache,
	ttl time.Duration,
) LedgerService {
	if ttl <= 0 {
		ttl = DefaultCacheExpiration
	}
	return &ledgerServiceImpl{
		pipeline:    pipeline,
		normalizer:  normalizer,
		matcher:     matcher,
		summarizer:  summarizer,
		writer:      ledger.NewWriter(pipeline),
		resultCache: resultCache,
		ttl:         ttl,
	}
}

// NewDefaultLedgerService wires the standard processors for pipeline.
func NewDefaultLedgerService(pipeline *config.PipelineConfig, resultCache *cache.Cache, ttl time.Duration) LedgerService {
	return NewLedgerService(
		pipeline,
		processors.NewRowNormalizer(pipeline),
		processors.NewLotMatcher(),
		processors.NewSummaryProcessor(pipeline.NetFees),
		resultCache,
		ttl,
	)
}

func (s *ledgerServiceImpl) ProcessUpload(ctx context.Context, data []byte) (*models.LedgerResult, error) {
	startTime := time.Now()
	log := logger.FromContext(ctx)

	hash := utils.ContentHash(data)
	hashKey := fmt.Sprintf(ckLedgerByHash, hash)
	if id, found := s.resultCache.Get(hashKey); found {
		if result, err := s.GetLedger(id.(string)); err == nil {
			log.Info("Cache hit for identical upload", "ledgerID", result.LedgerID)
			return result, nil
		}
	}

	log.Info("ProcessUpload START", "bytes", len(data))

	source := parsers.DetectSource(data)
	parseCtx, span := logger.StartSpan(ctx, "ledger.parse")
	parser, err := parsers.GetParser(source, s.pipeline.RequiredColumns)
	if err != nil {
		span.End()
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}
	rawTxs, err := parser.Parse(bytes.NewReader(data))
	span.End()
	if err != nil {
		logger.FromContext(parseCtx).Warn("Parsing failed", "source", source, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}

	rows, processedCSV, summary, err := s.process(ctx, rawTxs)
	if err != nil {
		log.Error("Processing failed",
			"error", err,
			"inputColumns", sniffColumns(data),
			"firstRow", firstRow(rawTxs))
		return nil, err
	}

	result := &models.LedgerResult{
		LedgerID:     utils.NewID(),
		Rows:         rows,
		ProcessedCSV: processedCSV,
		Summary:      summary,
	}
	s.resultCache.Set(fmt.Sprintf(ckLedgerByID, result.LedgerID), result, s.ttl)
	s.resultCache.Set(hashKey, result.LedgerID, s.ttl)

	log.Info("ProcessUpload END",
		"ledgerID", result.LedgerID,
		"rawRows", len(rawTxs),
		"ledgerRows", len(rows),
		"duration", time.Since(startTime))
	return result, nil
}

// process runs normalization, matching, tagging and encoding. A panic anywhere in
// there fails the batch with ErrProcessingFailed instead of crashing the caller.
func (s *ledgerServiceImpl) process(ctx context.Context, rawTxs []models.RawTransaction) (
	rows []models.NormalizedTransaction, processedCSV string, summary models.Summary, err error,
) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrProcessingFailed, r)
		}
	}()

	_, span := logger.StartSpan(ctx, "ledger.normalize")
	rows = s.normalizer.NormalizeAll(rawTxs)
	span.End()

	_, span = logger.StartSpan(ctx, "ledger.match")
	result := s.matcher.Match(rows)
	changed := processors.ApplyEscalations(rows, result.Escalations)
	if s.pipeline.TagProtectivePuts {
		processors.TagProtectivePuts(rows)
	}
	span.End()
	logger.FromContext(ctx).Debug("Applied lot matching", "escalations", len(result.Escalations), "changed", changed)

	_, span = logger.StartSpan(ctx, "ledger.summarize")
	defer span.End()
	summary = s.summarizer.Summarize(rows)
	processedCSV, err = s.writer.Encode(rows)
	if err != nil {
		return nil, "", models.Summary{}, fmt.Errorf("%w: encode ledger: %v", ErrProcessingFailed, err)
	}
	return rows, processedCSV, summary, nil
}

func (s *ledgerServiceImpl) GetLedger(ledgerID string) (*models.LedgerResult, error) {
	if !utils.IsID(ledgerID) {
		return nil, fmt.Errorf("%w: malformed ledger id %q", ErrLedgerNotFound, ledgerID)
	}
	if cached, found := s.resultCache.Get(fmt.Sprintf(ckLedgerByID, ledgerID)); found {
		return cached.(*models.LedgerResult), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrLedgerNotFound, ledgerID)
}

// sniffColumns returns the header row of an export for diagnostics.
func sniffColumns(data []byte) []string {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for i := 0; i < 10; i++ {
		record, err := reader.Read()
		if err != nil {
			break
		}
		records = append(records, record)
	}
	idx := tabular.FindHeader(records, "Date", "Action")
	if idx < 0 {
		if len(records) == 0 {
			return nil
		}
		idx = 0
	}
	cols := make([]string, len(records[idx]))
	for i, c := range records[idx] {
		cols[i] = strings.TrimSpace(c)
	}
	return cols
}

func firstRow(rawTxs []models.RawTransaction) any {
	if len(rawTxs) == 0 {
		return nil
	}
	return rawTxs[0]
}
