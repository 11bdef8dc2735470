package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/username/tradeledger/src/analytics"
	"github.com/username/tradeledger/src/ledger"
	"github.com/username/tradeledger/src/models"
)

var (
	statsMetric  string
	statsGroupBy string
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats <ledger.csv>",
	Short: "Grouped statistics over a processed ledger",
	Long: `Stats aggregates a processed ledger CSV.

Metrics:  profit (summed amount), volume (summed quantity), win_rate (percent of rows with a positive amount)
Grouping: symbol, option_type, month

Example:
  tradeledger stats ledger.csv --metric profit --group-by month`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsMetric, "metric", "m", string(analytics.MetricProfit), "profit, volume or win_rate")
	statsCmd.Flags().StringVarP(&statsGroupBy, "group-by", "g", string(analytics.GroupBySymbol), "symbol, option_type or month")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print results as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	rows, err := readLedgerFile(args[0])
	if err != nil {
		return err
	}

	results, err := analytics.CalculateStats(rows, analytics.Metric(statsMetric), analytics.GroupBy(statsGroupBy))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", statsGroupBy, statsMetric)
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.2f\n", r.Group, r.Value)
	}
	return tw.Flush()
}

func readLedgerFile(path string) ([]models.NormalizedTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()
	return ledger.ReadCSV(f)
}
