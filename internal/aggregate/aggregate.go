// Package aggregate computes the regulated opening-position figure of
// securities holdings: type-filtered, deduplicated decimal summation with a
// per-type audit breakdown.
package aggregate

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/graincab/isidora/internal/errors"
	"github.com/graincab/isidora/pkg/contracts/domain"
)

// ValidTypes is the fixed set of amount-type codes counting toward the
// opening position, in reporting order.
var ValidTypes = []string{"DRVR", "DSK", "PRM", "POBJ"}

// UmbrellaHeader is the reporting-table line this aggregate feeds.
const UmbrellaHeader = "Состојба на х.в на почеток на период (главнина)"

// Rule is the regulatory rule text accompanying the aggregate in reports.
const Rule = "Состојба од претходен известувачки период (t-1): збир на износи од " +
	"колоната 'Износ во денари' за редови чиј 'Вид на износ' е DRVR, DSK, PRM или POBJ."

// TypeBreakdown is the audit sub-total for one normalized amount type.
type TypeBreakdown struct {
	Type string          `json:"type"`
	Rows int             `json:"rows"`
	Sum  decimal.Decimal `json:"sum"`
}

// Result is the opening-position aggregate with its audit material: the
// scalar sum, the type filter that produced it, the contributing rows and
// the per-type breakdown. Immutable once produced; recomputed on every run.
type Result struct {
	Sum       decimal.Decimal        `json:"sum_in_denars"`
	UsedTypes []string               `json:"used_types"`
	Rows      []domain.HoldingRecord `json:"filtered_rows"`
	ByType    []TypeBreakdown        `json:"by_type"`
}

// OpeningPosition aggregates the table into the opening-position figure.
// The amount-type and amount-value columns must both exist in the source:
// their absence is a caller bug surfaced as a structural error, never an
// empty result. Rows are kept when their trimmed, upper-cased type is in
// ValidTypes and their amount parsed; exact full-row duplicates collapse
// before summation so they cannot double-count. An empty table sums to
// zero.
func OpeningPosition(table domain.HoldingTable) (*Result, error) {
	if missing := table.Fields.Missing(domain.FieldAmountType, domain.FieldAmount); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, errors.NewStructuralError("source table lacks required amount columns", names)
	}

	valid := make(map[string]bool, len(ValidTypes))
	for _, t := range ValidTypes {
		valid[t] = true
	}

	seen := make(map[string]bool)
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	sum := decimal.Zero
	var rows []domain.HoldingRecord
	var skippedAmounts, duplicates int

	for _, rec := range table.Records {
		code := strings.ToUpper(strings.TrimSpace(rec.AmountType))
		if !valid[code] {
			continue
		}
		if !rec.Amount.Valid {
			// Uncoercible amounts never reach the sum or the audit rows.
			skippedAmounts++
			continue
		}
		key := rec.Key()
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true

		sum = sum.Add(rec.Amount.Decimal)
		sums[code] = sums[code].Add(rec.Amount.Decimal)
		counts[code]++
		rows = append(rows, rec)
	}

	byType := make([]TypeBreakdown, 0, len(sums))
	for _, t := range ValidTypes {
		if counts[t] == 0 {
			continue
		}
		byType = append(byType, TypeBreakdown{Type: t, Rows: counts[t], Sum: sums[t]})
	}

	slog.Info("opening position aggregated",
		slog.String("sum_in_denars", sum.String()),
		slog.Int("rows", len(rows)),
		slog.Int("duplicates_collapsed", duplicates),
		slog.Int("null_amounts_excluded", skippedAmounts))

	return &Result{
		Sum:       sum,
		UsedTypes: append([]string(nil), ValidTypes...),
		Rows:      rows,
		ByType:    byType,
	}, nil
}
