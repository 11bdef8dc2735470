// Package tabular holds the header handling shared by CSV parsers: column name
// normalization, fee column aliases, header row detection and required column checks.
package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// FeesColumn is the canonical name of the fee column.
const FeesColumn = "Fees"

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmptyFile      = errors.New("empty CSV file")
)

// feeAliases are the spellings brokers use for the fee column.
var feeAliases = map[string]bool{
	"fees & comm":       true,
	"fees & com":        true,
	"fees and comm":     true,
	"fees & commission": true,
	"fees":              true,
}

// MissingColumnsError reports which required columns were absent and what the file had instead.
type MissingColumnsError struct {
	Missing []string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s (input columns: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// NormalizeColumnName trims a header cell, drops a UTF-8 BOM and maps fee aliases to FeesColumn.
func NormalizeColumnName(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.Join(strings.Fields(name), " ")
	if feeAliases[strings.ToLower(name)] {
		return FeesColumn
	}
	return name
}

// Columns maps normalized column names to their position. The first occurrence wins.
type Columns map[string]int

// IndexColumns normalizes a header record.
func IndexColumns(header []string) Columns {
	cols := make(Columns, len(header))
	for i, name := range header {
		n := NormalizeColumnName(name)
		if _, dup := cols[n]; !dup && n != "" {
			cols[n] = i
		}
	}
	return cols
}

// Get returns the trimmed cell for column name, or "" when the column or cell is absent.
func (c Columns) Get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Missing lists the required names not present in the header.
func (c Columns) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := c[NormalizeColumnName(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// FindHeader returns the index of the first record that looks like a header, i.e.
// it contains every marker column. Title lines above the header are skipped this way.
func FindHeader(records [][]string, markers ...string) int {
	for i, record := range records {
		cols := IndexColumns(record)
		if len(cols.Missing(markers)) == 0 {
			return i
		}
	}
	return -1
}

// IsBlank reports whether every cell of the record is empty.
func IsBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
