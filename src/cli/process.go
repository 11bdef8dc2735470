package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"

	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/services"
)

var (
	processOutput string
	processQuiet  bool
)

var processCmd = &cobra.Command{
	Use:   "process <export.csv>",
	Short: "Normalize a brokerage export into a ledger CSV",
	Long: `Process runs the full pipeline on a transaction history export: exclusion
filters, row normalization, FIFO lot matching and summary.

The ledger CSV goes to stdout (or -o), the summary to stderr.

Example:
  tradeledger process history.csv -o ledger.csv --config pipeline.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "write the ledger CSV to this file instead of stdout")
	processCmd.Flags().BoolVarP(&processQuiet, "quiet", "q", false, "do not print the summary")
}

func runProcess(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	svc := services.NewDefaultLedgerService(pipeline,
		cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval),
		services.DefaultCacheExpiration)
	result, err := svc.ProcessUpload(cmd.Context(), data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if processOutput != "" {
		f, err := os.Create(processOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := io.WriteString(out, result.ProcessedCSV); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}

	if !processQuiet {
		printSummary(cmd.ErrOrStderr(), result.Summary)
	}
	return nil
}

func printSummary(w io.Writer, s models.Summary) {
	fmt.Fprintf(w, "Total trades:   %d\n", s.TotalTrades)
	fmt.Fprintf(w, "Symbols traded: %s\n", strings.Join(s.SymbolsTraded, ", "))
	fmt.Fprintf(w, "Date range:     %s\n", s.DateRange)
	fmt.Fprintf(w, "Total amount:   %s\n", s.TotalAmount)
	if len(s.OptionTypes) > 0 {
		fmt.Fprintf(w, "Option rows:    Put=%d Call=%d\n", s.OptionTypes["Put"], s.OptionTypes["Call"])
	}
}
