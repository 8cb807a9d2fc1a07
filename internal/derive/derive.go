// Package derive computes the per-row derived fields of the holdings table:
// the A/L position code and the ISIN/ticker security-identifier selection,
// and applies the reporting sub-batch filter.
package derive

import (
	"log/slog"
	"strings"

	"github.com/graincab/isidora/pkg/contracts/domain"
)

// PositionPlaceholder is emitted when the position text names neither an
// asset nor a liability.
const PositionPlaceholder = "-"

// allowedPackages is the fixed sub-batch allow-list; rows from any other
// package are dropped.
var allowedPackages = map[string]bool{
	"PHoV": true,
	"AHoV": true,
}

// Apply enriches every row with its derived fields and keeps only the rows
// of the allowed reporting sub-batches. Pure row-wise transform; the input
// table is not modified.
func Apply(table domain.HoldingTable) domain.HoldingTable {
	out := domain.HoldingTable{
		Records: make([]domain.HoldingRecord, 0, len(table.Records)),
		Fields:  table.Fields.Clone(),
	}

	dropped := 0
	for _, rec := range table.Records {
		if !allowedPackages[rec.Package] {
			dropped++
			continue
		}
		rec.PositionCode = PositionCode(rec.Position)
		rec.ISIN, rec.Ticker = classifySecurity(rec)
		out.Records = append(out.Records, rec)
	}

	if dropped > 0 {
		slog.Debug("dropped rows outside allowed packages",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(out.Records)))
	}
	return out
}

// PositionCode extracts the asset/liability marker from the free-text
// position field: the comma-joined subset of {A, L} whose letters occur in
// the text, always ordered A before L. Text naming neither yields the
// placeholder.
func PositionCode(position string) string {
	var letters []string
	for _, letter := range []string{"A", "L"} {
		if strings.Contains(position, letter) {
			letters = append(letters, letter)
		}
	}
	if len(letters) == 0 {
		return PositionPlaceholder
	}
	return strings.Join(letters, ", ")
}

// classifySecurity selects the security-identifier value under the ordered,
// mutually exclusive classification rules: an ISIN-kind row fills the ISIN
// field, an OTID-kind row quoted "KT" fills the ticker field, anything else
// fills neither. Evaluated as one ordered rule chain so a row matching no
// rule yields two empty outputs.
func classifySecurity(rec domain.HoldingRecord) (isin, ticker string) {
	kind := strings.ToUpper(strings.TrimSpace(rec.SecurityKind))
	quotation := strings.ToUpper(strings.TrimSpace(rec.Quotation))

	switch {
	case kind == "ISIN":
		return rec.SecurityCode, ""
	case kind == "OTID" && quotation == "KT":
		return "", rec.SecurityCode
	default:
		return "", ""
	}
}
