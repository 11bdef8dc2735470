package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output column names of the processed ledger CSV.
const (
	ColPostedDate      = "Posted_Date"
	ColTransactionDate = "Transaction_Date"
	ColAction          = "Action"
	ColTicker          = "Ticker"
	ColExpiry          = "Expiry"
	ColStrike          = "Strike"
	ColOptionType      = "Option_Type"
	ColType            = "Type"
	ColQuantity        = "Quantity"
	ColPrice           = "Price"
	ColFees            = "Fees"
	ColAmount          = "Amount"
	ColNetAmount       = "Net_Amount"
	ColStatus          = "Status"
	ColTag             = "Tag"
)

// DefaultColumns is the output column order downstream consumers depend on.
var DefaultColumns = []string{
	ColPostedDate, ColTransactionDate, ColAction, ColTicker, ColExpiry, ColStrike,
	ColOptionType, ColType, ColQuantity, ColPrice, ColFees, ColAmount, ColStatus,
}

var knownColumns = map[string]bool{
	ColPostedDate: true, ColTransactionDate: true, ColAction: true, ColTicker: true,
	ColExpiry: true, ColStrike: true, ColOptionType: true, ColType: true,
	ColQuantity: true, ColPrice: true, ColFees: true, ColAmount: true,
	ColNetAmount: true, ColStatus: true, ColTag: true,
}

// PipelineConfig makes the normalization choices that differ between broker exports explicit.
type PipelineConfig struct {
	// Cash sweep / money market tickers whose rows are dropped entirely.
	ExcludedTickers []string `json:"excluded_tickers" yaml:"excluded_tickers"`
	// Action labels whose rows are dropped entirely (transfers, interest, reorgs...).
	ExcludedActions []string `json:"excluded_actions" yaml:"excluded_actions"`

	// NetFees adds Net_Amount (Amount - Fees) to the output and totals on it.
	NetFees bool `json:"net_fees" yaml:"net_fees"`
	// CloseOnActionText marks "... to Close" actions Close before matching.
	CloseOnActionText bool `json:"close_on_action_text" yaml:"close_on_action_text"`
	// TagProtectivePuts tags open long puts bought to open.
	TagProtectivePuts bool `json:"tag_protective_puts" yaml:"tag_protective_puts"`
	// SanitizeFormulas guards text cells against spreadsheet formula injection.
	SanitizeFormulas bool `json:"sanitize_formulas" yaml:"sanitize_formulas"`

	Columns         []string `json:"columns" yaml:"columns"`
	RequiredColumns []string `json:"required_columns" yaml:"required_columns"`
}

// DefaultPipelineConfig returns the configuration used when no pipeline file is given.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		ExcludedTickers: []string{"SGUXX", "SWVXX", "SNVXX", "SNSXX", "SNOXX"},
		ExcludedActions: []string{
			"MoneyLink Transfer",
			"MoneyLink Deposit",
			"Wire Funds",
			"Wire Sent",
			"Internal Transfer",
			"Funds Received",
			"Credit Interest",
			"Margin Interest",
			"Bank Interest",
			"Mandatory Reorg Exc",
			"Reinvest Shares",
			"Reinvest Dividend",
		},
		NetFees:           false,
		CloseOnActionText: true,
		TagProtectivePuts: false,
		SanitizeFormulas:  false,
		Columns:           append([]string(nil), DefaultColumns...),
		RequiredColumns:   []string{"Date", "Action", "Symbol", "Quantity", "Price", "Amount"},
	}
}

// LoadPipelineConfig loads a pipeline file (YAML, falling back to JSON).
// Fields absent from the file keep their default values.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	if path == "" {
		return DefaultPipelineConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}

	cfg := DefaultPipelineConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = DefaultPipelineConfig()
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse pipeline config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the column lists are usable.
func (c *PipelineConfig) Validate() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("columns must not be empty")
	}
	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if !knownColumns[col] {
			return fmt.Errorf("unknown output column: %s", col)
		}
		if seen[col] {
			return fmt.Errorf("duplicate output column: %s", col)
		}
		seen[col] = true
	}
	for _, col := range c.RequiredColumns {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("required_columns contains an empty name")
		}
	}
	return nil
}

// OutputColumns returns the effective column order, appending the optional
// Net_Amount and Tag columns when their toggles are on and they are not listed.
func (c *PipelineConfig) OutputColumns() []string {
	cols := append([]string(nil), c.Columns...)
	has := func(name string) bool {
		for _, col := range cols {
			if col == name {
				return true
			}
		}
		return false
	}
	if c.NetFees && !has(ColNetAmount) {
		cols = append(cols, ColNetAmount)
	}
	if c.TagProtectivePuts && !has(ColTag) {
		cols = append(cols, ColTag)
	}
	return cols
}

// IsExcludedTicker reports whether rows for ticker must be dropped.
func (c *PipelineConfig) IsExcludedTicker(ticker string) bool {
	return containsFold(c.ExcludedTickers, ticker)
}

// IsExcludedAction reports whether rows with this action must be dropped.
func (c *PipelineConfig) IsExcludedAction(action string) bool {
	return containsFold(c.ExcludedActions, action)
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}
	return false
}
