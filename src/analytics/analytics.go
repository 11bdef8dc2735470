// Package analytics computes the trade statistics the query assistant can call on.
// Figures are simple sums over the Amount column, not cost-basis P&L.
package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/tradeledger/src/models"
)

var ErrInvalidArgument = errors.New("invalid argument")

const filterDateLayout = "2006-01-02"

// TradeFilter narrows the rows AnalyzeTrades looks at. Zero values do not filter.
// OptionType "ALL" matches every row. Dates are YYYY-MM-DD and inclusive.
type TradeFilter struct {
	Symbol     string `json:"symbol,omitempty"`
	OptionType string `json:"optionType,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
}

// TradeAnalysis is the result of AnalyzeTrades. WinRate is a percentage.
type TradeAnalysis struct {
	TotalTrades   int     `json:"totalTrades"`
	ProfitLoss    float64 `json:"profitLoss"`
	WinRate       float64 `json:"winRate"`
	AverageReturn float64 `json:"averageReturn"`
}

type Metric string

const (
	MetricProfit  Metric = "profit"
	MetricVolume  Metric = "volume"
	MetricWinRate Metric = "win_rate"
)

type GroupBy string

const (
	GroupBySymbol     GroupBy = "symbol"
	GroupByOptionType GroupBy = "option_type"
	GroupByMonth      GroupBy = "month"
)

// StatResult is one group of CalculateStats output.
type StatResult struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// AnalyzeTrades filters rows and reports count, summed amount, the share of rows with a
// positive amount and the mean amount, rounded to two decimals.
func AnalyzeTrades(rows []models.NormalizedTransaction, f TradeFilter) (TradeAnalysis, error) {
	start, err := parseFilterDate(f.StartDate)
	if err != nil {
		return TradeAnalysis{}, err
	}
	end, err := parseFilterDate(f.EndDate)
	if err != nil {
		return TradeAnalysis{}, err
	}

	var selected []models.NormalizedTransaction
	for _, row := range rows {
		if f.Symbol != "" && !strings.EqualFold(row.Ticker, f.Symbol) {
			continue
		}
		if ot := f.OptionType; ot != "" && !strings.EqualFold(ot, "ALL") && !strings.EqualFold(string(row.Right()), ot) {
			continue
		}
		if !start.IsZero() || !end.IsZero() {
			if !row.PostedDate.Valid {
				continue
			}
			if !start.IsZero() && row.PostedDate.Time.Before(start) {
				continue
			}
			if !end.IsZero() && row.PostedDate.Time.After(end) {
				continue
			}
		}
		selected = append(selected, row)
	}

	total, wins := amountStats(selected)
	result := TradeAnalysis{
		TotalTrades: len(selected),
		ProfitLoss:  round2(total),
	}
	if n := len(selected); n > 0 {
		count := decimal.NewFromInt(int64(n))
		result.WinRate = round2(decimal.NewFromInt(int64(wins)).Div(count).Mul(decimal.NewFromInt(100)))
		result.AverageReturn = round2(total.Div(count))
	}
	return result, nil
}

// CalculateStats aggregates metric per group, sorted by group name. Rows without a group
// value (no ticker, stock rows for option_type, undated rows for month) are left out.
func CalculateStats(rows []models.NormalizedTransaction, metric Metric, groupBy GroupBy) ([]StatResult, error) {
	var key func(models.NormalizedTransaction) string
	switch groupBy {
	case GroupBySymbol:
		key = func(r models.NormalizedTransaction) string { return r.Ticker }
	case GroupByOptionType:
		key = func(r models.NormalizedTransaction) string { return string(r.Right()) }
	case GroupByMonth:
		key = func(r models.NormalizedTransaction) string {
			if !r.PostedDate.Valid {
				return ""
			}
			return r.PostedDate.Time.Format("2006-01")
		}
	default:
		return nil, fmt.Errorf("%w: unknown groupBy %q", ErrInvalidArgument, groupBy)
	}

	var value func([]models.NormalizedTransaction) decimal.Decimal
	switch metric {
	case MetricProfit:
		value = func(group []models.NormalizedTransaction) decimal.Decimal {
			total, _ := amountStats(group)
			return total
		}
	case MetricVolume:
		value = func(group []models.NormalizedTransaction) decimal.Decimal {
			sum := decimal.Zero
			for _, r := range group {
				sum = sum.Add(r.Quantity)
			}
			return sum
		}
	case MetricWinRate:
		value = func(group []models.NormalizedTransaction) decimal.Decimal {
			_, wins := amountStats(group)
			return decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(len(group)))).Mul(decimal.NewFromInt(100))
		}
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, metric)
	}

	groups := make(map[string][]models.NormalizedTransaction)
	for _, row := range rows {
		if k := key(row); k != "" {
			groups[k] = append(groups[k], row)
		}
	}

	results := make([]StatResult, 0, len(groups))
	for name, group := range groups {
		results = append(results, StatResult{Group: name, Value: round2(value(group))})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Group < results[j].Group })
	return results, nil
}

func amountStats(rows []models.NormalizedTransaction) (decimal.Decimal, int) {
	total := decimal.Zero
	wins := 0
	for _, r := range rows {
		total = total.Add(r.Amount)
		if r.Amount.IsPositive() {
			wins++
		}
	}
	return total, wins
}

func parseFilterDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(filterDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidArgument, s)
	}
	return t, nil
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
