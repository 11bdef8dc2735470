package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradeledger/src/models"
)

func TestParseSymbolOption(t *testing.T) {
	t.Parallel()

	ticker, opt := ParseSymbol("AAPL 01/17/2025 $150 C")
	assert.Equal(t, "AAPL", ticker)
	require.NotNil(t, opt)
	assert.True(t, opt.Expiry.Valid)
	assert.Equal(t, time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), opt.Expiry.Time)
	assert.Equal(t, "150.00", opt.Strike.StringFixed(2))
	assert.Equal(t, models.Call, opt.Right)
}

func TestParseSymbolVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		ticker string
		right  models.OptionRight
		strike string
	}{
		{"AAPL", "AAPL", "", ""},
		{"", "", "", ""},
		{"BRK/B", "BRK/B", "", ""},
		{"SPY 03/15/2024 500.00 P", "SPY", models.Put, "500.00"},
		{"spy 03/15/2024 500 put", "spy", models.Put, "500.00"},
		{"QQQ  12/20/2024  $410.5  CALL", "QQQ", models.Call, "410.50"},
		{"TSLA 06/21/2024 C", "TSLA", models.Call, "0.00"},
		{"AAPL 01/17/2025 150", "AAPL", "", ""},
		{"NOT A SYMBOL FORMAT", "NOT", "", ""},
	}
	for _, tt := range tests {
		ticker, opt := ParseSymbol(tt.in)
		assert.Equal(t, tt.ticker, ticker, tt.in)
		if tt.right == "" {
			assert.Nil(t, opt, tt.in)
			continue
		}
		require.NotNil(t, opt, tt.in)
		assert.Equal(t, tt.right, opt.Right, tt.in)
		assert.Equal(t, tt.strike, opt.Strike.StringFixed(2), tt.in)
	}
}

func TestSplitDate(t *testing.T) {
	t.Parallel()

	posted, txDate := SplitDate("02/01/2024 as of 01/31/2024")
	assert.Equal(t, "02/01/2024", posted.String())
	assert.Equal(t, "01/31/2024", txDate.String())

	posted, txDate = SplitDate("2024-03-05")
	assert.Equal(t, "03/05/2024", posted.String())
	assert.Equal(t, posted, txDate)

	posted, _ = SplitDate("3/5/24")
	assert.False(t, posted.Valid)

	posted, _ = SplitDate("03/05/24")
	assert.Equal(t, "03/05/2024", posted.String())

	posted, txDate = SplitDate("  pending  ")
	assert.False(t, posted.Valid)
	assert.Equal(t, "pending", posted.String())
	assert.Equal(t, "pending", txDate.String())

	posted, _ = SplitDate("")
	assert.True(t, posted.IsEmpty())

	posted, txDate = SplitDate("02/01/2024 AS OF 01/31/2024")
	assert.Equal(t, "02/01/2024", posted.String())
	assert.Equal(t, "01/31/2024", txDate.String())
}

func TestSplitDateNonASCII(t *testing.T) {
	t.Parallel()

	posted, txDate := SplitDate("ȺȺ 01/02/2024 as of 01/01/2024")
	assert.False(t, posted.Valid)
	assert.Equal(t, "ȺȺ 01/02/2024", posted.String())
	assert.Equal(t, "01/01/2024", txDate.String())

	var tx models.LedgerDate
	require.NotPanics(t, func() { posted, tx = SplitDate("\xff\xff\xff\xff\xff\xffas of") })
	assert.Equal(t, "\xff\xff\xff\xff\xff\xff", posted.String())
	assert.True(t, tx.IsEmpty())
}
