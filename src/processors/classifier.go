package processors

import (
	"strings"
	"time"

	"github.com/username/tradeledger/src/models"
)

// lifecycleActions keep their own label as category, prefixed with the option right.
var lifecycleActions = []string{"Expired", "Assigned", "Journal", "Exchange or Exercise"}

var dividendActions = []string{"Qualified Dividend", "Cash Dividend", "Reinvest Dividend"}

var interestActions = []string{"Credit Interest", "Margin Interest"}

// Classify derives the transaction category from the action text and the option right
// (empty for stock rows). Rules are evaluated in order; the first match wins.
func Classify(action string, right models.OptionRight) string {
	action = strings.TrimSpace(action)

	if label, ok := matchFold(lifecycleActions, action); ok {
		if right != "" {
			return string(right) + " " + label
		}
		return label
	}
	if _, ok := matchFold(dividendActions, action); ok {
		return models.CategoryDividend
	}
	if _, ok := matchFold(interestActions, action); ok {
		return models.CategoryInterest
	}

	lower := strings.ToLower(action)
	switch {
	case strings.Contains(lower, "sell"):
		return tradeCategory(right, "Sell")
	case strings.Contains(lower, "buy"):
		return tradeCategory(right, "Buy")
	}
	return action
}

func tradeCategory(right models.OptionRight, side string) string {
	if right == "" {
		return "Stock " + side
	}
	return string(right) + " " + side
}

// ProvisionalStatus is the status a row has before lot matching. Expirations,
// assignments and dividends are closed; so are "... to Close" actions when
// closeOnActionText is set, and options whose expiry lies before now.
func ProvisionalStatus(action, category string, opt *models.OptionDetail, now time.Time, closeOnActionText bool) models.LifecycleStatus {
	action = strings.TrimSpace(action)
	if strings.EqualFold(action, "Expired") || strings.EqualFold(action, "Assigned") {
		return models.StatusClose
	}
	if category == models.CategoryDividend {
		return models.StatusClose
	}
	if closeOnActionText && strings.Contains(strings.ToLower(action), "to close") {
		return models.StatusClose
	}
	if opt != nil && opt.Expiry.Valid && opt.Expiry.Time.Before(now) {
		return models.StatusClose
	}
	return models.StatusOpen
}

func matchFold(list []string, s string) (string, bool) {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return item, true
		}
	}
	return "", false
}
