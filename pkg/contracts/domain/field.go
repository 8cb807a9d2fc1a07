package domain

// Field names a canonical semantic column of the normalized holdings table.
// All downstream stages address these fixed fields; header-variant matching
// happens once, in the schema package.
type Field string

const (
	FieldReporterName Field = "reporter_name"
	FieldReporterID   Field = "reporter_id"
	FieldCounterparty Field = "counterparty_name"
	FieldAmountType   Field = "amount_type"
	FieldAmount       Field = "amount_denars"
	FieldPosition     Field = "position"
	FieldSecurityKind Field = "security_identifier_kind"
	FieldSecurityCode Field = "security_identifier_value"
	FieldQuotation    Field = "quotation_flag"
	FieldReportDate   Field = "report_date"
	FieldPackage      Field = "package"
)

// FieldSet records which semantic fields were present as columns in the
// source table.
type FieldSet map[Field]bool

// Has reports whether the source carried a column for f.
func (s FieldSet) Has(f Field) bool { return s[f] }

// Add marks f as present and returns the set for chaining.
func (s FieldSet) Add(f Field) FieldSet {
	s[f] = true
	return s
}

// Clone returns an independent copy of the set.
func (s FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(s))
	for f, ok := range s {
		out[f] = ok
	}
	return out
}

// Missing returns, from the given required fields, those not present in the
// set, in the order given.
func (s FieldSet) Missing(required ...Field) []Field {
	var missing []Field
	for _, f := range required {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}
