// Package schema turns raw spreadsheet blocks into addressable tables: it
// locates the true header row inside arbitrarily-shaped exports, cleans the
// column labels, and binds header variants to the fixed semantic fields the
// rest of the pipeline works with.
package schema

import (
	"fmt"
	"log/slog"
	"strings"
)

// headerScanLimit bounds how deep into a block the header row is searched.
const headerScanLimit = 10

// headerKeywords identify a header row: a row is the header if its joined,
// folded cell text contains any of these. The set mirrors the labels the
// reporting platform has used across export versions.
var headerKeywords = []string{
	"назив на известувач",
	"известувач",
	"матичен број",
	"isin",
	"вид на х.в",
}

// Table is a normalized tabular block: cleaned column labels over string
// rows. Rows may be ragged; missing trailing cells read as empty.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Normalize detects the header row of a raw block, promotes it to column
// labels and returns the remaining rows as a Table. The first keyword-
// matching row within the scan limit wins; when none matches, row 0 is
// assumed to already be the header. A block with no data rows left after
// promotion yields an empty table, not an error.
func Normalize(raw [][]string) Table {
	if len(raw) == 0 {
		return Table{}
	}

	headerRow := detectHeaderRow(raw)
	columns := cleanLabels(raw[headerRow])

	var rows [][]string
	if headerRow+1 < len(raw) {
		rows = make([][]string, len(raw)-headerRow-1)
		copy(rows, raw[headerRow+1:])
	}

	slog.Debug("normalized raw block",
		slog.Int("header_row", headerRow),
		slog.Int("columns", len(columns)),
		slog.Int("rows", len(rows)))

	return Table{Columns: columns, Rows: rows}
}

// detectHeaderRow scans at most the first headerScanLimit rows and returns
// the index of the first row whose joined folded text contains a header
// keyword, or 0 when none does.
func detectHeaderRow(raw [][]string) int {
	limit := headerScanLimit
	if len(raw) < limit {
		limit = len(raw)
	}
	for i := 0; i < limit; i++ {
		joined := Fold(strings.Join(raw[i], " "))
		for _, kw := range headerKeywords {
			if strings.Contains(joined, Fold(kw)) {
				return i
			}
		}
	}
	return 0
}

// cleanLabels trims every label and replaces blank ones with a positional
// placeholder so that all columns stay addressable.
func cleanLabels(header []string) []string {
	labels := make([]string, len(header))
	for i, label := range header {
		label = strings.TrimSpace(label)
		if label == "" {
			label = fmt.Sprintf("Column_%d", i+1)
		}
		labels[i] = label
	}
	return labels
}

// FindColumn returns the index of the first column whose folded label
// contains any of the given keywords (folded), or -1 when no column
// matches. Exact equality is never required: export versions vary the
// phrasing and spacing of the same header.
func (t Table) FindColumn(keywords ...string) int {
	for i, label := range t.Columns {
		for _, kw := range keywords {
			if foldContains(label, kw) {
				return i
			}
		}
	}
	return -1
}

// Cell returns the trimmed value at (row, col), or "" when the row is too
// short or the column is absent.
func (t Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }
