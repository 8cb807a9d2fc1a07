// Package workbook is the Excel source boundary: it opens an uploaded
// export and hands raw tabular blocks to the pipeline by sheet role, not by
// literal sheet name, because exports vary sheet names in trailing
// whitespace.
package workbook

import (
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/graincab/isidora/internal/errors"
)

// Default sheet names of the reporting platform's export format.
const (
	DefaultTransactionsSheet = "Примени податоци"
	DefaultReportersSheet    = "листа известувачи"
	DefaultInstrumentsSheet  = "Вид на х.в."
)

// Workbook wraps one opened export file.
type Workbook struct {
	file *excelize.File
}

// Open reads a workbook from disk.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).
			WithContext("path", path)
	}
	return &Workbook{file: f}, nil
}

// OpenReader reads a workbook from an uploaded stream.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to read workbook stream", err)
	}
	return &Workbook{file: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Rows returns the raw rows of the sheet with the given role name. The
// exact name is tried first, then a whitespace-trimmed match against the
// workbook's sheet list. A missing sheet is a structural problem for the
// caller to classify; optional returns an empty block instead.
func (w *Workbook) Rows(name string) ([][]string, error) {
	resolved, ok := w.resolveSheet(name)
	if !ok {
		return nil, errors.NewStructuralError("sheet not found in workbook", []string{name}).
			WithContext("sheets", w.file.GetSheetList())
	}
	rows, err := w.file.GetRows(resolved)
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet rows", err).
			WithContext("sheet", resolved)
	}
	return rows, nil
}

// OptionalRows behaves like Rows but treats an absent sheet as an empty
// block.
func (w *Workbook) OptionalRows(name string) ([][]string, error) {
	if _, ok := w.resolveSheet(name); !ok {
		slog.Debug("optional sheet absent", slog.String("sheet", name))
		return nil, nil
	}
	return w.Rows(name)
}

func (w *Workbook) resolveSheet(name string) (string, bool) {
	sheets := w.file.GetSheetList()
	for _, sheet := range sheets {
		if sheet == name {
			return sheet, true
		}
	}
	trimmed := strings.TrimSpace(name)
	for _, sheet := range sheets {
		if strings.TrimSpace(sheet) == trimmed {
			slog.Debug("resolved sheet by trimmed name",
				slog.String("wanted", name),
				slog.String("found", sheet))
			return sheet, true
		}
	}
	return "", false
}
