package domain

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// HoldingRecord represents one reported instrument-holding event after
// schema normalization. Fields that the source may omit or leave blank use
// null-aware types; ReporterName is the only field guaranteed non-empty once
// header detection succeeds.
type HoldingRecord struct {
	ReporterName string              `json:"reporter_name"`
	ReporterID   sql.NullInt64       `json:"reporter_id"`
	Counterparty sql.NullString      `json:"counterparty_name"`
	AmountType   string              `json:"amount_type"`
	Amount       decimal.NullDecimal `json:"amount_denars"`
	Position     string              `json:"position"`
	SecurityKind string              `json:"security_identifier_kind"`
	SecurityCode string              `json:"security_identifier_value"`
	Quotation    string              `json:"quotation_flag"`
	ReportDate   sql.NullTime        `json:"report_date"`
	Package      string              `json:"package"`

	// Derived fields, populated by the deriver stage.
	PositionCode string `json:"position_code"`
	ISIN         string `json:"isin"`
	Ticker       string `json:"ticker"`
}

// UnresolvedID is the sentinel identifier for reporters whose numeric
// identifier could not be parsed from the reference sheet. It is never a
// valid registry key; callers treat it as "unknown reporter".
const UnresolvedID int64 = 0

// Key returns a canonical serialization of every field of the record, used
// for exact full-row duplicate detection. Two records are duplicates only if
// all normalized fields, derived ones included, agree.
func (r HoldingRecord) Key() string {
	parts := []string{
		r.ReporterName,
		nullInt64Key(r.ReporterID),
		nullStringKey(r.Counterparty),
		r.AmountType,
		nullDecimalKey(r.Amount),
		r.Position,
		r.SecurityKind,
		r.SecurityCode,
		r.Quotation,
		nullTimeKey(r.ReportDate),
		r.Package,
		r.PositionCode,
		r.ISIN,
		r.Ticker,
	}
	return strings.Join(parts, "\x1f")
}

func nullInt64Key(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%d", v.Int64)
}

func nullStringKey(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullDecimalKey(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

func nullTimeKey(v sql.NullTime) string {
	if !v.Valid {
		return ""
	}
	return v.Time.Format("2006-01-02")
}

// HoldingTable is the canonical working table handed between pipeline
// stages. Fields records which semantic columns were actually present in
// the source, so downstream stages can distinguish an absent column (a
// structural problem) from an empty cell (a data-quality problem).
//
// Tables are treated as immutable: every stage returns a fresh table and
// never mutates its input.
type HoldingTable struct {
	Records []HoldingRecord
	Fields  FieldSet
}

// Clone returns a deep-enough copy for a stage to build its output on: the
// record slice is copied, Fields is copied by value.
func (t HoldingTable) Clone() HoldingTable {
	out := HoldingTable{
		Records: make([]HoldingRecord, len(t.Records)),
		Fields:  t.Fields.Clone(),
	}
	copy(out.Records, t.Records)
	return out
}
