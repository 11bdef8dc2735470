package processors

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
)

// Escalation records a status change for the row identified by RowID.
type Escalation struct {
	RowID  int
	Status models.LifecycleStatus
}

// MatchResult is the outcome of lot matching. Remaining holds the unmatched quantity
// of every opening row that took part in matching, keyed by RowID.
type MatchResult struct {
	Escalations []Escalation
	Remaining   map[int]decimal.Decimal
}

// matchPass is one of the independent matching passes. Rows never match across passes.
type matchPass struct {
	name    string
	opening string
	closing string
}

var matchPasses = []matchPass{
	{name: "stock", opening: models.CategoryStockBuy, closing: models.CategoryStockSell},
	{name: "put", opening: models.CategoryPutBuy, closing: models.CategoryPutSell},
	{name: "call", opening: models.CategoryCallBuy, closing: models.CategoryCallSell},
}

// lotKey identifies an instrument: the ticker for stock, plus expiry and strike for options.
type lotKey struct {
	ticker string
	expiry string
	strike string
}

func (k lotKey) less(o lotKey) bool {
	if k.ticker != o.ticker {
		return k.ticker < o.ticker
	}
	if k.expiry != o.expiry {
		return k.expiry < o.expiry
	}
	return k.strike < o.strike
}

// lot is an opening row with the quantity not yet matched.
type lot struct {
	row       *models.NormalizedTransaction
	remaining decimal.Decimal
}

type lotGroup struct {
	openings []*lot
	closings []*models.NormalizedTransaction
}

// LotMatcher pairs closing trades with opening trades first-in first-out, per instrument.
type LotMatcher struct{}

func NewLotMatcher() *LotMatcher {
	return &LotMatcher{}
}

// Match computes the escalations FIFO matching implies. The input is not modified.
func (m *LotMatcher) Match(rows []models.NormalizedTransaction) MatchResult {
	result := MatchResult{Remaining: make(map[int]decimal.Decimal)}
	closed := make(map[int]bool)
	escalate := func(rowID int) {
		if closed[rowID] {
			return
		}
		closed[rowID] = true
		result.Escalations = append(result.Escalations, Escalation{RowID: rowID, Status: models.StatusClose})
	}

	for _, pass := range matchPasses {
		groups := groupForPass(rows, pass)

		keys := make([]lotKey, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

		for _, key := range keys {
			g := groups[key]
			sortOpenings(g.openings)
			sortClosings(g.closings)

			for _, closing := range g.closings {
				need := closing.Quantity.Abs()
				matchedAny := false

				for _, l := range g.openings {
					if !eligible(l.row.PostedDate, closing.PostedDate) {
						// Openings are sorted by date, so none after this one qualify either.
						break
					}
					if !l.remaining.IsPositive() {
						continue
					}
					matchedAny = true
					if !need.IsPositive() {
						break
					}

					take := decimal.Min(need, l.remaining)
					l.remaining = l.remaining.Sub(take)
					need = need.Sub(take)
					if !l.remaining.IsPositive() {
						escalate(l.row.RowID)
					}
				}

				if matchedAny {
					escalate(closing.RowID)
				} else {
					logger.L.Debug("No eligible opening for closing trade",
						"pass", pass.name, "ticker", key.ticker, "rowID", closing.RowID)
				}
			}

			for _, l := range g.openings {
				result.Remaining[l.row.RowID] = l.remaining
			}
		}
	}

	logger.L.Debug("Lot matching complete", "rows", len(rows), "escalations", len(result.Escalations))
	return result
}

// ApplyEscalations writes escalations back onto rows by RowID. Status only ever moves
// from Open to Close. It returns the number of rows whose status changed.
func ApplyEscalations(rows []models.NormalizedTransaction, escalations []Escalation) int {
	index := make(map[int]int, len(rows))
	for i := range rows {
		index[rows[i].RowID] = i
	}

	changed := 0
	for _, e := range escalations {
		i, ok := index[e.RowID]
		if !ok || e.Status != models.StatusClose {
			continue
		}
		if rows[i].Status != models.StatusClose {
			rows[i].Status = models.StatusClose
			changed++
		}
	}
	return changed
}

func groupForPass(rows []models.NormalizedTransaction, pass matchPass) map[lotKey]*lotGroup {
	groups := make(map[lotKey]*lotGroup)
	for i := range rows {
		row := &rows[i]
		isOpening := row.Category == pass.opening
		if !isOpening && row.Category != pass.closing {
			continue
		}

		key := lotKey{ticker: row.Ticker}
		if pass.name != "stock" {
			// Without a strike the contract cannot be identified.
			if !row.Option.HasStrike() {
				continue
			}
			key.expiry = row.Option.Expiry.String()
			key.strike = row.Option.Strike.String()
		}

		g, ok := groups[key]
		if !ok {
			g = &lotGroup{}
			groups[key] = g
		}
		if isOpening {
			g.openings = append(g.openings, &lot{row: row, remaining: row.Quantity.Abs()})
		} else {
			g.closings = append(g.closings, row)
		}
	}
	return groups
}

// eligible reports whether an opening dated opened may serve a closing dated closedOn.
// An unparsable date on either side makes the pair eligible.
func eligible(opened, closedOn models.LedgerDate) bool {
	if !opened.Valid || !closedOn.Valid {
		return true
	}
	return !opened.Time.After(closedOn.Time)
}

// sortOpenings orders by posted date, undated rows first.
func sortOpenings(lots []*lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i].row.PostedDate, lots[j].row.PostedDate
		if !a.Valid || !b.Valid {
			return !a.Valid && b.Valid
		}
		return a.Time.Before(b.Time)
	})
}

// sortClosings orders by posted date, undated rows last.
func sortClosings(rows []*models.NormalizedTransaction) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].PostedDate, rows[j].PostedDate
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		return a.Time.Before(b.Time)
	})
}
