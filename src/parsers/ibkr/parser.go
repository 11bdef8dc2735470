// Package ibkr reads Interactive Brokers Flex Query XML reports and re-expresses
// their trades and cash transactions as brokerage export rows.
package ibkr

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/parsers/tabular"
)

const exportDateLayout = "01/02/2006"

// FlexQueryResponse is the root element of the IBKR Flex Query report.
type FlexQueryResponse struct {
	XMLName        xml.Name        `xml:"FlexQueryResponse"`
	FlexStatements []FlexStatement `xml:"FlexStatements>FlexStatement"`
}

// FlexStatement contains all the data for a given account and period.
type FlexStatement struct {
	AccountId        string            `xml:"accountId,attr"`
	Trades           []Trade           `xml:"Trades>Trade"`
	CashTransactions []CashTransaction `xml:"CashTransactions>CashTransaction"`
}

// Trade is a stock or option execution.
type Trade struct {
	AssetCategory      string `xml:"assetCategory,attr"`
	Symbol             string `xml:"symbol,attr"`
	UnderlyingSymbol   string `xml:"underlyingSymbol,attr"`
	Description        string `xml:"description,attr"`
	DateTime           string `xml:"dateTime,attr"`
	TradeDate          string `xml:"tradeDate,attr"`
	Quantity           string `xml:"quantity,attr"`
	TradePrice         string `xml:"tradePrice,attr"`
	Proceeds           string `xml:"proceeds,attr"`
	NetCash            string `xml:"netCash,attr"`
	IBCommission       string `xml:"ibCommission,attr"`
	Exchange           string `xml:"exchange,attr"`
	BuySell            string `xml:"buySell,attr"`
	OpenCloseIndicator string `xml:"openCloseIndicator,attr"`
	Notes              string `xml:"notes,attr"`
	IBOrderID          string `xml:"ibOrderID,attr"`
	PutCall            string `xml:"putCall,attr"`
	Strike             string `xml:"strike,attr"`
	Expiry             string `xml:"expiry,attr"`
}

// CashTransaction is a dividend, interest, deposit or withdrawal.
type CashTransaction struct {
	Type          string `xml:"type,attr"`
	Description   string `xml:"description,attr"`
	DateTime      string `xml:"dateTime,attr"`
	Amount        string `xml:"amount,attr"`
	LevelOfDetail string `xml:"levelOfDetail,attr"`
	Symbol        string `xml:"symbol,attr"`
}

// cashActions maps Flex cash transaction types to the action labels of a brokerage export.
var cashActions = map[string]string{
	"Dividends":                    "Cash Dividend",
	"Payment In Lieu Of Dividends": "Cash Dividend",
	"Broker Interest Received":     "Credit Interest",
	"Broker Interest Paid":         "Margin Interest",
	"Deposits/Withdrawals":         "Wire Funds",
	"Withholding Tax":              "NRA Tax Adj",
	"Other Fees":                   "Service Fee",
}

// Parser implements parsers.Parser for Flex Query XML reports.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes the report. Currency conversions (IDEALFX) and cash summary lines are
// skipped; a trade whose fields cannot be read is logged and skipped.
func (p *Parser) Parse(file io.Reader) ([]models.RawTransaction, error) {
	var response FlexQueryResponse
	if err := xml.NewDecoder(file).Decode(&response); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, tabular.ErrEmptyFile
		}
		return nil, fmt.Errorf("ibkr parser: failed to decode XML: %w", err)
	}

	var rawTxs []models.RawTransaction
	add := func(tx models.RawTransaction) {
		tx.Line = len(rawTxs) + 1
		rawTxs = append(rawTxs, tx)
	}

	for _, stmt := range response.FlexStatements {
		for _, trade := range stmt.Trades {
			if trade.Exchange == "IDEALFX" || strings.EqualFold(trade.AssetCategory, "CASH") {
				continue
			}
			tx, err := convertTrade(trade)
			if err != nil {
				logger.L.Warn("IBKR Parser: Skipping trade due to processing error", "ibOrderID", trade.IBOrderID, "error", err)
				continue
			}
			add(tx)
		}

		for _, cashTx := range stmt.CashTransactions {
			if cashTx.LevelOfDetail != "" && cashTx.LevelOfDetail != "DETAIL" {
				continue
			}
			add(convertCash(cashTx))
		}
	}

	logger.L.Debug("Parsed IBKR Flex report", "statements", len(response.FlexStatements), "rows", len(rawTxs))
	return rawTxs, nil
}

func convertTrade(trade Trade) (models.RawTransaction, error) {
	date, err := exportDate(trade.TradeDate, trade.DateTime)
	if err != nil {
		return models.RawTransaction{}, err
	}

	quantity, err := decimal.NewFromString(trade.Quantity)
	if err != nil {
		return models.RawTransaction{}, fmt.Errorf("quantity %q: %w", trade.Quantity, err)
	}

	tx := models.RawTransaction{
		Date:        date,
		Action:      tradeAction(trade),
		Symbol:      trade.Symbol,
		Description: trade.Description,
		Quantity:    quantity.Abs().String(),
		Price:       trade.TradePrice,
		Fees:        decimalOrZero(trade.IBCommission).Abs().StringFixed(2),
		Amount:      netCash(trade).StringFixed(2),
	}

	if strings.EqualFold(trade.AssetCategory, "OPT") {
		symbol, err := optionSymbol(trade)
		if err != nil {
			return models.RawTransaction{}, err
		}
		tx.Symbol = symbol
	}
	return tx, nil
}

// tradeAction renders the execution the way a brokerage export labels it. Expiries,
// assignments and exercises are flagged in the notes codes.
func tradeAction(trade Trade) string {
	for _, code := range strings.Split(trade.Notes, ";") {
		switch strings.TrimSpace(code) {
		case "Ep":
			return "Expired"
		case "A":
			return "Assigned"
		case "Ex":
			return "Exchange or Exercise"
		}
	}

	side := "Buy"
	if strings.EqualFold(trade.BuySell, "SELL") {
		side = "Sell"
	}
	if !strings.EqualFold(trade.AssetCategory, "OPT") {
		return side
	}
	switch strings.ToUpper(trade.OpenCloseIndicator) {
	case "O":
		return side + " to Open"
	case "C":
		return side + " to Close"
	default:
		return side
	}
}

// optionSymbol builds "UNDERLYING MM/DD/YYYY STRIKE P|C" from the contract attributes.
func optionSymbol(trade Trade) (string, error) {
	underlying := trade.UnderlyingSymbol
	if f := strings.Fields(trade.Symbol); underlying == "" && len(f) > 0 {
		underlying = f[0]
	}
	expiry, err := exportDate(trade.Expiry, "")
	if err != nil {
		return "", fmt.Errorf("option expiry: %w", err)
	}
	strike, err := decimal.NewFromString(trade.Strike)
	if err != nil {
		return "", fmt.Errorf("option strike %q: %w", trade.Strike, err)
	}
	right := strings.ToUpper(strings.TrimSpace(trade.PutCall))
	if right != "P" && right != "C" {
		return "", fmt.Errorf("option right %q", trade.PutCall)
	}
	return fmt.Sprintf("%s %s %s %s", underlying, expiry, strike.StringFixed(2), right), nil
}

// netCash is the signed cash effect including commission. Flex reports it directly;
// older reports only carry proceeds and the (negative) commission.
func netCash(trade Trade) decimal.Decimal {
	if trade.NetCash != "" {
		return decimalOrZero(trade.NetCash)
	}
	return decimalOrZero(trade.Proceeds).Add(decimalOrZero(trade.IBCommission))
}

func convertCash(cashTx CashTransaction) models.RawTransaction {
	action, ok := cashActions[cashTx.Type]
	if !ok {
		action = cashTx.Type
	}
	date, err := exportDate("", cashTx.DateTime)
	if err != nil {
		// Keep the row; the normalizer retains unparsable dates as text.
		date = cashTx.DateTime
	}
	return models.RawTransaction{
		Date:        date,
		Action:      action,
		Symbol:      cashTx.Symbol,
		Description: cashTx.Description,
		Amount:      decimalOrZero(cashTx.Amount).StringFixed(2),
	}
}

// exportDate converts IBKR "YYYYMMDD", "YYYYMMDD;HHMMSS" or "YYYY-MM-DD" dates to MM/DD/YYYY.
// The first non-empty candidate is used.
func exportDate(candidates ...string) (string, error) {
	for _, s := range candidates {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if i := strings.IndexAny(s, ";, "); i >= 0 {
			s = s[:i]
		}
		for _, layout := range []string{"20060102", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(exportDateLayout), nil
			}
		}
		return "", fmt.Errorf("could not parse ibkr date '%s'", s)
	}
	return "", fmt.Errorf("missing ibkr date")
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
