package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeaderDetection(t *testing.T) {
	tests := []struct {
		name     string
		raw      [][]string
		wantCols []string
		wantRows int
	}{
		{
			name: "header on first row",
			raw: [][]string{
				{"Известувач", "Вид на износ", "Износ во денари"},
				{"БАНКА АД", "DRVR", "100"},
			},
			wantCols: []string{"Известувач", "Вид на износ", "Износ во денари"},
			wantRows: 1,
		},
		{
			name: "header behind preamble rows",
			raw: [][]string{
				{"ИСИДОРА извештај", ""},
				{"", ""},
				{"Назив на известувач", "матичен број"},
				{"БАНКА АД", "1234567"},
				{"ШТЕДИЛНИЦА АД", "7654321"},
			},
			wantCols: []string{"Назив на известувач", "матичен број"},
			wantRows: 2,
		},
		{
			name: "no keyword match falls back to row 0",
			raw: [][]string{
				{"foo", "bar"},
				{"1", "2"},
			},
			wantCols: []string{"foo", "bar"},
			wantRows: 1,
		},
		{
			name: "header row is the last row leaves empty table",
			raw: [][]string{
				{"Известувач", "ISIN"},
			},
			wantCols: []string{"Известувач", "ISIN"},
			wantRows: 0,
		},
		{
			name:     "empty input yields empty table",
			raw:      nil,
			wantCols: nil,
			wantRows: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Normalize(tt.raw)
			assert.Equal(t, tt.wantCols, table.Columns)
			assert.Len(t, table.Rows, tt.wantRows)
		})
	}
}

// Normalizing a table's own output again must be a no-op: the promoted
// header still matches on row 0, so no data row is discarded twice.
func TestNormalizeIdempotent(t *testing.T) {
	raw := [][]string{
		{"извештај за период", ""},
		{"Известувач", "Износ во денари"},
		{"БАНКА АД", "100"},
		{"ШТЕДИЛНИЦА АД", "200"},
	}

	first := Normalize(raw)
	require.Len(t, first.Rows, 2)

	again := Normalize(append([][]string{first.Columns}, first.Rows...))
	assert.Equal(t, first.Columns, again.Columns)
	assert.Equal(t, first.Rows, again.Rows)
}

func TestNormalizeBlankLabelPlaceholders(t *testing.T) {
	raw := [][]string{
		{"Известувач", "", "  ", "Пакет"},
		{"БАНКА АД", "x", "y", "PHoV"},
	}

	table := Normalize(raw)
	assert.Equal(t, []string{"Известувач", "Column_2", "Column_3", "Пакет"}, table.Columns)
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Известувач  ", "известувач"},
		{"ISIN", "isin"},
		{"Ѐ", "е"},         // diacritic stripped
		{"Café", "cafe"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestFindColumn(t *testing.T) {
	table := Table{Columns: []string{"Извештаен  датум", "Вид на износ", "Износ во денари"}}

	assert.Equal(t, 0, table.FindColumn("датум"))
	assert.Equal(t, 1, table.FindColumn("вид на износ"))
	assert.Equal(t, 2, table.FindColumn("износ во денари"))
	assert.Equal(t, -1, table.FindColumn("пакет"))
}

func TestCellRaggedRows(t *testing.T) {
	table := Table{Columns: []string{"a", "b", "c"}}
	row := []string{" x "}

	assert.Equal(t, "x", table.Cell(row, 0))
	assert.Equal(t, "", table.Cell(row, 2))
	assert.Equal(t, "", table.Cell(row, -1))
}
