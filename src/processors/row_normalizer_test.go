package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/models"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer(cfg *config.PipelineConfig) *RowNormalizer {
	return NewRowNormalizer(cfg).WithClock(func() time.Time { return fixedNow })
}

func TestNormalizeOptionRow(t *testing.T) {
	t.Parallel()

	raw := models.RawTransaction{
		Date:     "07/02/2024 as of 07/01/2024",
		Action:   "Buy to Open",
		Symbol:   "AAPL 01/17/2025 150.00 C",
		Quantity: "2",
		Price:    "$5.25",
		Fees:     "$1.32",
		Amount:   "($1,051.32)",
	}
	row := newTestNormalizer(nil).Normalize(raw, 7)

	assert.Equal(t, 7, row.RowID)
	assert.Equal(t, "07/02/2024", row.PostedDate.String())
	assert.Equal(t, "07/01/2024", row.TransactionDate.String())
	assert.Equal(t, "AAPL", row.Ticker)
	require.NotNil(t, row.Option)
	assert.Equal(t, models.Call, row.Option.Right)
	assert.Equal(t, models.CategoryCallBuy, row.Category)
	assert.Equal(t, "-1051.32", row.Amount.String())
	assert.Equal(t, "1.32", row.Fees.String())
	assert.Equal(t, "-1052.64", row.NetAmount.String())
	assert.Equal(t, models.StatusOpen, row.Status)
}

func TestNormalizeNeverFails(t *testing.T) {
	t.Parallel()

	row := newTestNormalizer(nil).Normalize(models.RawTransaction{
		Date:     "yesterday",
		Action:   "Buy",
		Quantity: "ten",
		Price:    "",
		Amount:   "--",
	}, 0)

	assert.Equal(t, "", row.Ticker)
	assert.Nil(t, row.Option)
	assert.Equal(t, models.CategoryStockBuy, row.Category)
	assert.False(t, row.PostedDate.Valid)
	assert.Equal(t, "yesterday", row.PostedDate.String())
	assert.True(t, row.Quantity.IsZero())
	assert.True(t, row.Amount.IsZero())
	assert.Equal(t, models.StatusOpen, row.Status)
}

func TestNormalizeFeesAreAbsolute(t *testing.T) {
	t.Parallel()

	row := newTestNormalizer(nil).Normalize(models.RawTransaction{
		Date: "01/02/2024", Action: "Sell", Symbol: "MSFT", Quantity: "1", Price: "$10", Fees: "-$0.05", Amount: "$9.95",
	}, 0)
	assert.Equal(t, "0.05", row.Fees.String())
	assert.Equal(t, "9.9", row.NetAmount.String())
}

func TestNormalizeAllDropsExcludedRows(t *testing.T) {
	t.Parallel()

	raws := []models.RawTransaction{
		{Date: "01/02/2024", Action: "Buy", Symbol: "AAPL", Quantity: "1", Amount: "-$100"},
		{Date: "01/02/2024", Action: "Buy", Symbol: "SGUXX", Quantity: "100", Amount: "-$100"},
		{Date: "01/03/2024", Action: "MoneyLink Transfer", Symbol: "", Amount: "$500"},
		{Date: "01/04/2024", Action: "Sell", Symbol: "sguxx", Quantity: "100", Amount: "$100"},
		{Date: "01/05/2024", Action: "Sell", Symbol: "AAPL", Quantity: "1", Amount: "$110"},
	}
	rows := newTestNormalizer(nil).NormalizeAll(raws)

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotEqual(t, "SGUXX", row.Ticker)
	}
	assert.Equal(t, 0, rows[0].RowID)
	assert.Equal(t, 4, rows[1].RowID)
}

func TestNormalizeAllCustomExclusions(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultPipelineConfig()
	cfg.ExcludedTickers = []string{"TSLA"}
	cfg.ExcludedActions = nil

	rows := newTestNormalizer(cfg).NormalizeAll([]models.RawTransaction{
		{Date: "01/02/2024", Action: "Buy", Symbol: "TSLA 06/21/2024 200 P"},
		{Date: "01/02/2024", Action: "Buy", Symbol: "SGUXX"},
		{Date: "01/02/2024", Action: "MoneyLink Transfer"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "SGUXX", rows[0].Ticker)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	n := newTestNormalizer(nil)
	raws := []models.RawTransaction{
		{Date: "01/02/2024", Action: "Sell to Open", Symbol: "SPY 03/15/2024 $500 P", Quantity: "1", Price: "$3.10", Amount: "$310"},
		{Date: "01/02/2024", Action: "Buy", Symbol: "AAPL", Quantity: "10", Price: "$100", Amount: "-$1,000"},
		{Date: "01/02/2024", Action: "Expired", Symbol: "QQQ 12/20/2024 410.5 CALL", Quantity: "1"},
	}

	for i, raw := range raws {
		first := n.Normalize(raw, i)
		again := n.Normalize(models.RawTransaction{
			Date:     first.PostedDate.String(),
			Action:   first.Action,
			Symbol:   first.SymbolString(),
			Quantity: first.Quantity.String(),
			Price:    first.Price.StringFixed(2),
			Amount:   first.Amount.StringFixed(2),
		}, i)

		assert.Equal(t, first.Category, again.Category, raw.Symbol)
		assert.Equal(t, first.Ticker, again.Ticker, raw.Symbol)
		if first.Option == nil {
			assert.Nil(t, again.Option, raw.Symbol)
			continue
		}
		require.NotNil(t, again.Option, raw.Symbol)
		assert.Equal(t, first.Option.Right, again.Option.Right)
		assert.Equal(t, first.Option.Expiry.String(), again.Option.Expiry.String())
		assert.True(t, first.Option.Strike.Equal(again.Option.Strike))
	}
}
