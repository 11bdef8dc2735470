// Package cli is the tradeledger command line: an HTTP server plus offline
// process, stats and query commands over the same pipeline.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/logger"
)

// Version is reported by the tracing resource and --version.
var Version = "dev"

var (
	pipelinePath string
	pipeline     *config.PipelineConfig
)

var rootCmd = &cobra.Command{
	Use:   "tradeledger",
	Short: "Normalize brokerage transaction exports into a FIFO-matched trade ledger",
	Long: `Tradeledger reads brokerage transaction history CSV exports and produces a
normalized ledger: one row per transaction with a derived type, option details
and an Open/Close status resolved by first-in first-out lot matching.

It provides:
  - serve:   HTTP API for uploads and natural-language questions
  - process: normalize an export to a ledger CSV
  - stats:   grouped statistics over a processed ledger
  - query:   ask a question about a processed ledger`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&pipelinePath, "config", "c", "",
		"pipeline config file, YAML or JSON (default: PIPELINE_CONFIG_PATH or built-in defaults)")
}

// setup loads environment configuration, starts logging and tracing, and resolves
// the pipeline config. The --config flag wins over PIPELINE_CONFIG_PATH.
func setup(cmd *cobra.Command, args []string) error {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.InitTracing(config.Cfg.TracingEnabled, Version)

	path := pipelinePath
	if path == "" {
		path = config.Cfg.PipelineConfigPath
	}
	cfg, err := config.LoadPipelineConfig(path)
	if err != nil {
		return err
	}
	pipeline = cfg
	logger.L.Debug("Pipeline configuration resolved", "path", path, "columns", cfg.OutputColumns())
	return nil
}
