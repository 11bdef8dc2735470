package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Fees", NormalizeColumnName("Fees & Comm"))
	assert.Equal(t, "Fees", NormalizeColumnName(" fees &  com "))
	assert.Equal(t, "Date", NormalizeColumnName("\ufeffDate"))
	assert.Equal(t, "Description", NormalizeColumnName("Description"))
}

func TestFindHeaderAndColumns(t *testing.T) {
	t.Parallel()

	records := [][]string{
		{"Transactions for account"},
		{"Date", "Action", "Symbol", "Fees & Com"},
		{"01/02/2024", "Buy", " AAPL "},
	}
	idx := FindHeader(records, "Date", "Action")
	assert.Equal(t, 1, idx)

	cols := IndexColumns(records[idx])
	assert.Equal(t, 3, cols["Fees"])
	assert.Equal(t, "AAPL", cols.Get(records[2], "Symbol"))
	assert.Equal(t, "", cols.Get(records[2], "Fees"))
	assert.Equal(t, "", cols.Get(records[2], "Price"))
	assert.Equal(t, []string{"Price"}, cols.Missing([]string{"Date", "Price"}))

	assert.Equal(t, -1, FindHeader(records[:1], "Date"))
}

func TestIsBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBlank([]string{"", "  "}))
	assert.False(t, IsBlank([]string{"", "x"}))
}
