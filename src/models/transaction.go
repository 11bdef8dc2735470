package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerDateFormat is the layout used for every date written to the ledger.
const LedgerDateFormat = "01/02/2006"

// RawTransaction represents a single row of a brokerage CSV export, exactly as read.
type RawTransaction struct {
	Line        int    `json:"line"`   // 1-based data row index in the source file
	Date        string `json:"date"`   // May embed an "as of" effective date
	Action      string `json:"action"` // Free-text action label (e.g., "Buy to Open")
	Symbol      string `json:"symbol"` // Ticker or option contract (e.g., "AAPL 01/17/2025 150.00 C")
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Fees        string `json:"fees"` // Canonical name for "Fees & Comm" / "Fees & Com"
	Amount      string `json:"amount"`
}

// LedgerDate is a calendar date that remembers its source text.
// When the text could not be parsed, Valid is false and Raw is what the caller sees.
type LedgerDate struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// NewLedgerDate builds a valid LedgerDate from a time.
func NewLedgerDate(t time.Time) LedgerDate {
	return LedgerDate{Time: t, Raw: t.Format(LedgerDateFormat), Valid: true}
}

// String renders the date in ledger format, or the original text when unparsable.
func (d LedgerDate) String() string {
	if d.Valid {
		return d.Time.Format(LedgerDateFormat)
	}
	return d.Raw
}

// IsEmpty reports whether the source field was blank.
func (d LedgerDate) IsEmpty() bool {
	return !d.Valid && d.Raw == ""
}

// OptionRight is the put/call side of an option contract.
type OptionRight string

const (
	Put  OptionRight = "Put"
	Call OptionRight = "Call"
)

// OptionDetail holds the contract terms parsed from a Symbol field.
type OptionDetail struct {
	Expiry LedgerDate      `json:"expiry"`
	Strike decimal.Decimal `json:"strike"`
	Right  OptionRight     `json:"right"`
}

// HasStrike reports whether the contract carries a usable (non-zero) strike.
func (o *OptionDetail) HasStrike() bool {
	return o != nil && !o.Strike.IsZero()
}

// LifecycleStatus is the open/closed state of a ledger row.
type LifecycleStatus string

const (
	StatusOpen  LifecycleStatus = "Open"
	StatusClose LifecycleStatus = "Close"
)

// Transaction categories produced by the classifier.
const (
	CategoryStockBuy  = "Stock Buy"
	CategoryStockSell = "Stock Sell"
	CategoryPutBuy    = "Put Buy"
	CategoryPutSell   = "Put Sell"
	CategoryCallBuy   = "Call Buy"
	CategoryCallSell  = "Call Sell"
	CategoryDividend  = "Dividend"
	CategoryInterest  = "Interest"
)

// TagProtectivePut marks a long put bought to open that is still held.
const TagProtectivePut = "Protective Put"

// NormalizedTransaction is one ledger row. It always originates from exactly one RawTransaction.
type NormalizedTransaction struct {
	RowID           int             `json:"row_id"` // index of the originating raw row, never recomputed
	PostedDate      LedgerDate      `json:"posted_date"`
	TransactionDate LedgerDate      `json:"transaction_date"`
	Action          string          `json:"action"`
	Ticker          string          `json:"ticker"`
	Option          *OptionDetail   `json:"option,omitempty"`
	Category        string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Fees            decimal.Decimal `json:"fees"`
	Amount          decimal.Decimal `json:"amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	Status          LifecycleStatus `json:"status"`
	Tag             string          `json:"tag,omitempty"`
}

// IsOption reports whether the row refers to an option contract.
func (t NormalizedTransaction) IsOption() bool {
	return t.Option != nil
}

// Right returns the option right, or "" for stock rows.
func (t NormalizedTransaction) Right() OptionRight {
	if t.Option == nil {
		return ""
	}
	return t.Option.Right
}

// SymbolString re-renders the canonical Symbol text for the row,
// e.g. "AAPL 01/17/2025 $150.00 C".
func (t NormalizedTransaction) SymbolString() string {
	if t.Option == nil {
		return t.Ticker
	}
	s := t.Ticker
	if !t.Option.Expiry.IsEmpty() {
		s += " " + t.Option.Expiry.String()
	}
	if t.Option.HasStrike() {
		s += " $" + t.Option.Strike.StringFixed(2)
	}
	switch t.Option.Right {
	case Put:
		s += " P"
	case Call:
		s += " C"
	}
	return s
}
