package exporter

import (
	"strings"

	"github.com/graincab/isidora/internal/aggregate"
	"github.com/graincab/isidora/pkg/contracts/domain"
)

// holdingsHeaders are the columns of the enriched-table export, in the
// order the reporting table presents them.
var holdingsHeaders = []string{
	"Известувач",
	"Матичен број на известувач",
	"Назив на договорна страна",
	"Вид на износ",
	"Износ во денари",
	"Пакет",
	"Извештаен датум",
	"Позиција",
	"Код (A/L)",
	"Ознака на х.в. (ИСИН)",
	"Ознака на х.в. (тикер)",
}

// WriteHoldings exports the enriched holdings table.
func (w *CSVWriter) WriteHoldings(fileName string, table domain.HoldingTable) error {
	records := make([][]string, 0, len(table.Records))
	for _, rec := range table.Records {
		records = append(records, holdingRow(rec))
	}
	return w.WriteCSV(fileName, WriteOptions{
		Headers:   holdingsHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteOpeningPosition exports the opening-position report block: the
// umbrella header with rule, sum and used types, followed by the per-type
// audit breakdown.
func (w *CSVWriter) WriteOpeningPosition(fileName string, result *aggregate.Result) error {
	records := [][]string{
		{aggregate.UmbrellaHeader, "", ""},
		{"Правило", aggregate.Rule, ""},
		{"Износ во денари", result.Sum.String(), ""},
		{"Вид на износ", strings.Join(result.UsedTypes, ", "), ""},
		{"", "", ""},
		{"Вид на износ", "Број на редови", "Збир"},
	}
	for _, b := range result.ByType {
		records = append(records, []string{b.Type, intString(b.Rows), b.Sum.String()})
	}
	return w.WriteCSV(fileName, WriteOptions{
		Records:   records,
		BOMPrefix: true,
	})
}

func holdingRow(rec domain.HoldingRecord) []string {
	id := ""
	if rec.ReporterID.Valid {
		id = int64String(rec.ReporterID.Int64)
	}
	counterparty := ""
	if rec.Counterparty.Valid {
		counterparty = rec.Counterparty.String
	}
	amount := ""
	if rec.Amount.Valid {
		amount = rec.Amount.Decimal.String()
	}
	date := ""
	if rec.ReportDate.Valid {
		date = rec.ReportDate.Time.Format("2006-01-02")
	}
	return []string{
		rec.ReporterName,
		id,
		counterparty,
		rec.AmountType,
		amount,
		rec.Package,
		date,
		rec.Position,
		rec.PositionCode,
		rec.ISIN,
		rec.Ticker,
	}
}
