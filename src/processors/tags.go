package processors

import (
	"strings"

	"github.com/username/tradeledger/src/models"
)

// TagProtectivePuts marks long puts bought to open that are still held.
// It runs after matching and returns the number of tagged rows.
func TagProtectivePuts(rows []models.NormalizedTransaction) int {
	tagged := 0
	for i := range rows {
		row := &rows[i]
		if row.Category != models.CategoryPutBuy || row.Status != models.StatusOpen {
			continue
		}
		if strings.Contains(strings.ToLower(row.Action), "buy to open") {
			row.Tag = models.TagProtectivePut
			tagged++
		}
	}
	return tagged
}
