package resolver

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/graincab/isidora/internal/schema"
	"github.com/graincab/isidora/pkg/contracts/domain"
)

// reference-sheet column keywords; the sheet carries display names under
// "Опис МК" and identifiers under "матичен број".
var (
	refNameKeywords = []string{"опис мк", "опис", "назив"}
	refIDKeywords   = []string{"матичен број", "матичен"}
)

// NormalizeName canonicalizes a reporter display name for mapping lookups:
// trimmed and upper-cased. Lookups are never case- or whitespace-sensitive.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// BuildReferenceMapping extracts the display-name → identifier mapping from
// a normalized reporter-reference table. Keys are normalized with
// NormalizeName; duplicate names resolve last-write-wins. Identifiers that
// fail integer coercion carry the UnresolvedID sentinel instead of
// propagating a parse failure.
func BuildReferenceMapping(t schema.Table) domain.ReferenceMapping {
	nameCol := t.FindColumn(refNameKeywords...)
	idCol := t.FindColumn(refIDKeywords...)

	mapping := make(domain.ReferenceMapping)
	if nameCol < 0 {
		return mapping
	}

	for _, row := range t.Rows {
		name := NormalizeName(t.Cell(row, nameCol))
		if name == "" {
			continue
		}
		mapping[name] = CoerceID(t.Cell(row, idCol))
	}
	return mapping
}

// CoerceID parses an entity identifier cell to int64. Spreadsheet exports
// render identifiers inconsistently (thousand separators, float artifacts
// like "4030992123456.0"), so the value is read as a decimal and truncated.
// Missing or unparseable values coerce to the UnresolvedID sentinel.
func CoerceID(raw string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return domain.UnresolvedID
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return domain.UnresolvedID
	}
	return d.IntPart()
}
