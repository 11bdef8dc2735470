package cli

import (
	"fmt"
	"os"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"

	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/services"
)

var queryCmd = &cobra.Command{
	Use:   "query <ledger.csv> <question>",
	Short: "Ask a question about a processed ledger",
	Long: `Query sends a question about a processed ledger CSV to the assistant, which
can call the trade analysis and statistics functions on the ledger rows.

Requires GEMINI_API_KEY.

Example:
  tradeledger query ledger.csv "What was my win rate on puts in 2024?"`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	ledgers := services.NewDefaultLedgerService(pipeline,
		cache.New(config.Cfg.ResultCacheTTL, services.CacheCleanupInterval), config.Cfg.ResultCacheTTL)
	svc := services.NewQueryService(ledgers, makeAssistant(cmd.Context()))

	answer, err := svc.Query(cmd.Context(), services.QueryRequest{
		Query:        args[1],
		ProcessedCSV: string(data),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
