package schema

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/graincab/isidora/pkg/contracts/domain"
)

// columnKeywords binds each semantic field to the header keywords that
// identify its column, folded substring match. This is the single place
// header variants are interpreted; downstream stages only ever see
// domain.Field.
var columnKeywords = map[domain.Field][]string{
	domain.FieldReporterName: {"известувач"},
	domain.FieldAmountType:   {"вид на износ"},
	domain.FieldAmount:       {"износ во денари"},
	domain.FieldPosition:     {"позиција"},
	domain.FieldSecurityKind: {"идентификатор на хартија"},
	domain.FieldSecurityCode: {"алфанумеричка ознака"},
	domain.FieldQuotation:    {"котација"},
	domain.FieldReportDate:   {"извештаен датум", "датум"},
	domain.FieldPackage:      {"пакет"},
}

// dateLayouts are the report-date renderings observed across export
// versions.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
	"01-02-06",
}

// BindHoldings maps a normalized table onto the canonical holdings fields.
// Rows whose reporter-name cell is blank are skipped (they are merged-cell
// remnants or trailing padding, not reportable events). Cell-level coercion
// failures null the field and keep the row.
func BindHoldings(t Table) domain.HoldingTable {
	fields := make(domain.FieldSet)
	index := make(map[domain.Field]int, len(columnKeywords))
	for field, keywords := range columnKeywords {
		col := t.FindColumn(keywords...)
		index[field] = col
		if col >= 0 {
			fields.Add(field)
		}
	}

	var nullAmounts, nullDates int
	records := make([]domain.HoldingRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		name := t.Cell(row, index[domain.FieldReporterName])
		if name == "" {
			continue
		}

		rec := domain.HoldingRecord{
			ReporterName: name,
			AmountType:   t.Cell(row, index[domain.FieldAmountType]),
			Position:     t.Cell(row, index[domain.FieldPosition]),
			SecurityKind: t.Cell(row, index[domain.FieldSecurityKind]),
			SecurityCode: t.Cell(row, index[domain.FieldSecurityCode]),
			Quotation:    t.Cell(row, index[domain.FieldQuotation]),
			Package:      t.Cell(row, index[domain.FieldPackage]),
		}

		if raw := t.Cell(row, index[domain.FieldAmount]); raw != "" {
			rec.Amount = parseAmount(raw)
			if !rec.Amount.Valid {
				nullAmounts++
			}
		}
		if raw := t.Cell(row, index[domain.FieldReportDate]); raw != "" {
			rec.ReportDate = parseDate(raw)
			if !rec.ReportDate.Valid {
				nullDates++
			}
		}

		records = append(records, rec)
	}

	if nullAmounts > 0 || nullDates > 0 {
		slog.Warn("cell coercion failures during binding",
			slog.Int("null_amounts", nullAmounts),
			slog.Int("null_dates", nullDates))
	}

	return domain.HoldingTable{Records: records, Fields: fields}
}

// parseAmount coerces a cell to a decimal amount. Thousand separators and
// inner spaces are stripped first. Unparseable values stay null, never zero.
func parseAmount(raw string) decimal.NullDecimal {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func parseDate(raw string) sql.NullTime {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return sql.NullTime{Time: ts, Valid: true}
		}
	}
	return sql.NullTime{}
}
