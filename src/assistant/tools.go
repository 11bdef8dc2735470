package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/username/tradeledger/src/analytics"
	"github.com/username/tradeledger/src/models"
)

// Library answers a function call made by the model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Tool is a function the model may call against the ledger under discussion.
type Tool struct {
	Decl *genai.FunctionDeclaration
	Func func(rows []models.NormalizedTransaction, args map[string]any) (map[string]any, error)
}

// Tools returns the functions exposed to the model.
func Tools() []Tool {
	return []Tool{analyzeTradesTool, calculateStatsTool}
}

// Declarations lists the declarations of tools.
func Declarations(tools []Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, t.Decl)
	}
	return decls
}

// NewLibrary binds tools to the rows of one ledger.
func NewLibrary(tools []Tool, rows []models.NormalizedTransaction) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		resp := &genai.FunctionResponse{ID: call.ID, Name: call.Name}
		for _, t := range tools {
			if t.Decl.Name != call.Name {
				continue
			}
			out, err := t.Func(rows, call.Args)
			if err != nil {
				resp.Response = map[string]any{"error": err.Error()}
				return resp
			}
			resp.Response = out
			return resp
		}
		resp.Response = map[string]any{"error": fmt.Sprintf("unknown function %s", call.Name)}
		return resp
	}
}

var analyzeTradesTool = Tool{
	Decl: &genai.FunctionDeclaration{
		Name:        "analyzeTrades",
		Description: "Count trades and sum their amounts, optionally filtered by symbol, option type and posted date range. Returns totalTrades, profitLoss, winRate (percent of rows with a positive amount) and averageReturn.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"symbol":     {Type: genai.TypeString, Description: "Underlying ticker, e.g. AAPL."},
				"optionType": {Type: genai.TypeString, Description: "Put, Call or ALL."},
				"startDate":  {Type: genai.TypeString, Description: "Inclusive start of the posted date range, YYYY-MM-DD."},
				"endDate":    {Type: genai.TypeString, Description: "Inclusive end of the posted date range, YYYY-MM-DD."},
			},
		},
	},
	Func: func(rows []models.NormalizedTransaction, args map[string]any) (map[string]any, error) {
		f := analytics.TradeFilter{}
		var err error
		if f.Symbol, err = stringArg(args, "symbol"); err != nil {
			return nil, err
		}
		if f.OptionType, err = stringArg(args, "optionType"); err != nil {
			return nil, err
		}
		if f.StartDate, err = stringArg(args, "startDate"); err != nil {
			return nil, err
		}
		if f.EndDate, err = stringArg(args, "endDate"); err != nil {
			return nil, err
		}

		a, err := analytics.AnalyzeTrades(rows, f)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"totalTrades":   a.TotalTrades,
			"profitLoss":    a.ProfitLoss,
			"winRate":       a.WinRate,
			"averageReturn": a.AverageReturn,
		}, nil
	},
}

var calculateStatsTool = Tool{
	Decl: &genai.FunctionDeclaration{
		Name:        "calculateStats",
		Description: "Aggregate a metric per group. Returns a list of {group, value} sorted by group.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"metric": {
					Type:        genai.TypeString,
					Description: "profit (sum of amounts), volume (sum of quantities) or win_rate (percent of rows with a positive amount).",
					Enum:        []string{string(analytics.MetricProfit), string(analytics.MetricVolume), string(analytics.MetricWinRate)},
				},
				"groupBy": {
					Type:        genai.TypeString,
					Description: "symbol, option_type or month.",
					Enum:        []string{string(analytics.GroupBySymbol), string(analytics.GroupByOptionType), string(analytics.GroupByMonth)},
				},
			},
			Required: []string{"metric", "groupBy"},
		},
	},
	Func: func(rows []models.NormalizedTransaction, args map[string]any) (map[string]any, error) {
		metric, err := stringArg(args, "metric")
		if err != nil {
			return nil, err
		}
		groupBy, err := stringArg(args, "groupBy")
		if err != nil {
			return nil, err
		}

		results, err := analytics.CalculateStats(rows, analytics.Metric(metric), analytics.GroupBy(groupBy))
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(results))
		for _, r := range results {
			out = append(out, map[string]any{"group": r.Group, "value": r.Value})
		}
		return map[string]any{"results": out}, nil
	},
}

// stringArg reads an optional string argument. Missing arguments are "".
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for %s: got %T, expected string", name, v)
	}
	return s, nil
}
