package assistant

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/processors"
)

func ledgerRows() []models.NormalizedTransaction {
	return []models.NormalizedTransaction{
		{Ticker: "AAPL", PostedDate: processors.ParseDate("01/02/2024"), Quantity: decimal.NewFromInt(10), Amount: decimal.RequireFromString("-1000")},
		{Ticker: "AAPL", PostedDate: processors.ParseDate("02/02/2024"), Quantity: decimal.NewFromInt(10), Amount: decimal.RequireFromString("1200")},
	}
}

func TestNewGeminiAssistantRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGeminiAssistant(context.Background(), "", "gemini-2.5-flash")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDeclarations(t *testing.T) {
	t.Parallel()

	decls := Declarations(Tools())
	require.Len(t, decls, 2)
	assert.Equal(t, "analyzeTrades", decls[0].Name)
	assert.Equal(t, "calculateStats", decls[1].Name)
	assert.Equal(t, []string{"metric", "groupBy"}, decls[1].Parameters.Required)
}

func TestLibraryAnalyzeTrades(t *testing.T) {
	t.Parallel()

	lib := NewLibrary(Tools(), ledgerRows())
	resp := lib(context.Background(), &genai.FunctionCall{ID: "1", Name: "analyzeTrades", Args: map[string]any{"symbol": "AAPL"}})

	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, "analyzeTrades", resp.Name)
	assert.Equal(t, 2, resp.Response["totalTrades"])
	assert.Equal(t, 200.0, resp.Response["profitLoss"])
	assert.Equal(t, 50.0, resp.Response["winRate"])
}

func TestLibraryCalculateStats(t *testing.T) {
	t.Parallel()

	lib := NewLibrary(Tools(), ledgerRows())
	resp := lib(context.Background(), &genai.FunctionCall{Name: "calculateStats", Args: map[string]any{"metric": "volume", "groupBy": "month"}})

	results, ok := resp.Response["results"].([]map[string]any)
	require.True(t, ok, "%v", resp.Response)
	require.Len(t, results, 2)
	assert.Equal(t, "2024-01", results[0]["group"])
	assert.Equal(t, 10.0, results[0]["value"])
}

func TestLibraryErrors(t *testing.T) {
	t.Parallel()

	lib := NewLibrary(Tools(), ledgerRows())

	resp := lib(context.Background(), &genai.FunctionCall{Name: "placeOrder"})
	assert.Contains(t, resp.Response["error"], "unknown function")

	resp = lib(context.Background(), &genai.FunctionCall{Name: "calculateStats", Args: map[string]any{"metric": 3}})
	assert.Contains(t, resp.Response["error"], "invalid type for metric")

	resp = lib(context.Background(), &genai.FunctionCall{Name: "calculateStats", Args: map[string]any{"metric": "profit", "groupBy": "week"}})
	assert.Contains(t, resp.Response["error"], "unknown groupBy")
}

func TestSplitParts(t *testing.T) {
	t.Parallel()

	calls, text := splitParts(&genai.Content{Parts: []*genai.Part{
		{Text: "Your win rate "},
		nil,
		{FunctionCall: &genai.FunctionCall{Name: "analyzeTrades"}},
		{Text: "is 50%. "},
	}})
	require.Len(t, calls, 1)
	assert.Equal(t, "Your win rate is 50%.", text)
}
