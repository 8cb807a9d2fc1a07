package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/graincab/isidora/internal/config"
	apperrors "github.com/graincab/isidora/internal/errors"
	"github.com/graincab/isidora/internal/registry"
	"github.com/graincab/isidora/internal/workbook"
	"github.com/graincab/isidora/pkg/contracts/domain"
)

func sheetsConfig() config.SheetsConfig {
	return config.Default().Sheets
}

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func transactionsBlock() [][]string {
	return [][]string{
		{"ИСИДОРА - Прв Тест Пакет", "", "", "", "", "", "", "", ""},
		{"Известувач", "Вид на износ", "Износ во денари", "Пакет", "Извештаен датум", "Позиција", "Идентификатор на хартија од вредност", "Алфанумеричка ознака на хартија од вредност", "Котација"},
		{"Банка АД", "DRVR", "100", "PHoV", "2024-12-31", "AL", "ISIN", "MK1234567890", ""},
		{"Банка АД", "DRVR", "100", "PHoV", "2024-12-31", "AL", "ISIN", "MK1234567890", ""},
		{"Штедилница АД", "DSK", "abc", "AHoV", "2024-12-31", "X", "OTID", "STB", "KT"},
		{"Осигурување АД", "XYZ", "50", "PHoV", "2024-12-31", "L", "", "", ""},
		{"Банка АД", "PRM", "25", "QHoV", "2024-12-31", "A", "", "", ""},
	}
}

func reportersBlock() [][]string {
	return [][]string{
		{"Опис МК", "матичен број"},
		{"Банка АД", "1111111"},
		{"Штедилница АД", "2222222"},
		{"Осигурување АД", "3333333"},
	}
}

func TestRunEndToEnd(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Примени податоци":  transactionsBlock(),
		"листа известувачи": reportersBlock(),
	})

	wb, err := workbook.Open(path)
	require.NoError(t, err)
	defer wb.Close()

	runner := NewRunner(sheetsConfig(), registry.Static{})
	result, err := runner.Run(context.Background(), wb)
	require.NoError(t, err)

	// Duplicate DRVR collapses, DSK amount is null, XYZ filtered by type,
	// QHoV row filtered by package.
	assert.Equal(t, "100", result.Aggregate.Sum.String())
	assert.Len(t, result.Aggregate.Rows, 1)
	assert.Equal(t, []string{"DRVR", "DSK", "PRM", "POBJ"}, result.Aggregate.UsedTypes)

	// All reporter names map, so counterparty equals the submitted name.
	assert.Equal(t, 1.0, result.Resolution.MappedFraction)
	assert.False(t, result.Resolution.RegistryConsulted)
	for _, rec := range result.Table.Records {
		require.True(t, rec.Counterparty.Valid)
		assert.Equal(t, rec.ReporterName, rec.Counterparty.String)
	}

	// The QHoV row is dropped by the package filter; derived fields are set.
	require.Len(t, result.Table.Records, 4)
	assert.Equal(t, "A, L", result.Table.Records[0].PositionCode)
	assert.Equal(t, "MK1234567890", result.Table.Records[0].ISIN)
	assert.Empty(t, result.Table.Records[0].Ticker)
	assert.Equal(t, "STB", result.Table.Records[2].Ticker)
	assert.Empty(t, result.Table.Records[2].ISIN)

	m := result.Metrics
	assert.NotEmpty(t, m.RunID)
	assert.Equal(t, 5, m.SourceRows)
	assert.Equal(t, 4, m.RetainedRows)
	assert.Equal(t, 1, m.NullAmounts)
}

func TestRunOptionalInstrumentTypes(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Примени податоци":  transactionsBlock(),
		"листа известувачи": reportersBlock(),
		"Вид на х.в.": {
			{"Вид на х.в. (ЕСА2010)", "Опис"},
			{"F.3", "Должнички хартии од вредност"},
			{"F.5", "Сопственички капитал"},
		},
	})

	wb, err := workbook.Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result, err := NewRunner(sheetsConfig(), nil).Run(context.Background(), wb)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"F.3": "Должнички хартии од вредност",
		"F.5": "Сопственички капитал",
	}, result.InstrumentTypes)
}

func TestRunWithoutInstrumentTypes(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Примени податоци":  transactionsBlock(),
		"листа известувачи": reportersBlock(),
	})

	wb, err := workbook.Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result, err := NewRunner(sheetsConfig(), nil).Run(context.Background(), wb)
	require.NoError(t, err)
	assert.Nil(t, result.InstrumentTypes)
}

func TestRunTrailingSpaceSheetNames(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Примени податоци ":  transactionsBlock(),
		"листа известувачи ": reportersBlock(),
	})

	wb, err := workbook.Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result, err := NewRunner(sheetsConfig(), nil).Run(context.Background(), wb)
	require.NoError(t, err)
	assert.Equal(t, "100", result.Aggregate.Sum.String())
}

func TestRunPartialMappingWithRegistry(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Примени податоци": transactionsBlock(),
		"листа известувачи": {
			{"Опис МК", "матичен број"},
			{"Банка АД", "1111111"},
		},
	})

	wb, err := workbook.Open(path)
	require.NoError(t, err)
	defer wb.Close()

	reg := registry.Static{1111111: "БАНКА АД СКОПЈЕ"}
	result, err := NewRunner(sheetsConfig(), reg).Run(context.Background(), wb)
	require.NoError(t, err)

	res := result.Resolution
	assert.True(t, res.RegistryConsulted)
	assert.Less(t, res.MappedFraction, 1.0)
	assert.Contains(t, res.UnmappedNames, "Штедилница АД")
	assert.Contains(t, res.UnmappedNames, "Осигурување АД")

	var bankRows int
	for _, rec := range result.Table.Records {
		if rec.ReporterName == "Банка АД" {
			require.True(t, rec.Counterparty.Valid)
			assert.Equal(t, "БАНКА АД СКОПЈЕ", rec.Counterparty.String)
			bankRows++
		}
	}
	assert.NotZero(t, bankRows)
}

func TestRunMissingTransactionsSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"листа известувачи": reportersBlock(),
	})

	wb, err := workbook.Open(path)
	require.NoError(t, err)
	defer wb.Close()

	_, err = NewRunner(sheetsConfig(), nil).Run(context.Background(), wb)
	require.Error(t, err)
	assert.True(t, apperrors.IsStructural(err))
}

func TestRunMissingAmountColumns(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Примени податоци": {
			{"Известувач", "Пакет"},
			{"Банка АД", "PHoV"},
		},
		"листа известувачи": reportersBlock(),
	})

	wb, err := workbook.Open(path)
	require.NoError(t, err)
	defer wb.Close()

	_, err = NewRunner(sheetsConfig(), nil).Run(context.Background(), wb)
	require.Error(t, err)
	assert.True(t, apperrors.IsStructural(err))
	assert.Equal(t,
		[]string{string(domain.FieldAmountType), string(domain.FieldAmount)},
		apperrors.MissingFields(err))
}
