package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"($1,234.56)", "-1234.56"},
		{"$0.00", "0"},
		{"", "0"},
		{"  ", "0"},
		{"$1,199.95", "1199.95"},
		{"-$11.00", "-11"},
		{"1,000", "1000"},
		{"(5)", "-5"},
		{"N/A", "0"},
		{"$", "0"},
	}
	for _, tt := range tests {
		got := ParseCurrency(tt.in)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%q => %s, want %s", tt.in, got, tt.want)
	}
}

func TestFormatUSD(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$1,234.56", FormatUSD(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "-$1,234.56", FormatUSD(decimal.RequireFromString("-1234.56")))
	assert.Equal(t, "$0.00", FormatUSD(decimal.Zero))
	assert.Equal(t, "$0.01", FormatUSD(decimal.RequireFromString("0.005")))
}
