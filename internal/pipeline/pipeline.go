// Package pipeline orchestrates one reconciliation-and-aggregation run:
// workbook → schema normalization → identifier resolution → derived fields
// → opening-position aggregation. Every run is a pure function of its
// inputs; nothing is cached or persisted between invocations.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/graincab/isidora/internal/aggregate"
	"github.com/graincab/isidora/internal/config"
	"github.com/graincab/isidora/internal/derive"
	"github.com/graincab/isidora/internal/infrastructure"
	"github.com/graincab/isidora/internal/resolver"
	"github.com/graincab/isidora/internal/schema"
	"github.com/graincab/isidora/internal/workbook"
	"github.com/graincab/isidora/pkg/contracts/domain"
)

// Metrics is the non-fatal quality surface of one run: coverage, null
// counts and degradations are reported here instead of being raised as
// errors, so the caller decides how to present them.
type Metrics struct {
	RunID             string   `json:"run_id"`
	SourceRows        int      `json:"source_rows"`
	RetainedRows      int      `json:"retained_rows"`
	NullAmounts       int      `json:"null_amounts"`
	NullDates         int      `json:"null_dates"`
	MappedFraction    float64  `json:"mapped_fraction"`
	UnmappedNames     []string `json:"unmapped_names"`
	RegistryConsulted bool     `json:"registry_consulted"`
	RegistryDegraded  bool     `json:"registry_degraded"`
}

// RunResult hands the enriched table and the aggregate to the presentation
// and export collaborators. InstrumentTypes carries the optional
// instrument-type reference block (code → description) when the workbook
// has one.
type RunResult struct {
	Table           domain.HoldingTable
	Resolution      resolver.Resolution
	Aggregate       *aggregate.Result
	Metrics         Metrics
	InstrumentTypes map[string]string
}

// Runner wires the pipeline stages over a configured sheet layout and an
// injected registry lookup. Stateless across runs; safe for concurrent use.
type Runner struct {
	sheets   config.SheetsConfig
	registry resolver.RegistryLookup
}

// NewRunner creates a pipeline runner. A nil registry disables the
// secondary join; the resolver then degrades to name-only resolution.
func NewRunner(sheets config.SheetsConfig, registry resolver.RegistryLookup) *Runner {
	return &Runner{sheets: sheets, registry: registry}
}

// Run executes the full pipeline against one workbook. Structural problems
// (missing sheets, missing amount columns) propagate as errors; data
// quality and connectivity issues are absorbed into Metrics.
func (r *Runner) Run(ctx context.Context, wb *workbook.Workbook) (*RunResult, error) {
	runID := uuid.NewString()
	ctx = infrastructure.WithRunID(ctx, runID)
	logger := infrastructure.GetLogger()

	logger.InfoContext(ctx, "pipeline run started",
		slog.String("transactions_sheet", r.sheets.Transactions),
		slog.String("reporters_sheet", r.sheets.Reporters))

	rawTransactions, err := wb.Rows(r.sheets.Transactions)
	if err != nil {
		return nil, err
	}
	rawReporters, err := wb.Rows(r.sheets.Reporters)
	if err != nil {
		return nil, err
	}

	rawInstruments, err := wb.OptionalRows(r.sheets.Instruments)
	if err != nil {
		return nil, err
	}

	holdings := schema.BindHoldings(schema.Normalize(rawTransactions))
	ref := resolver.BuildReferenceMapping(schema.Normalize(rawReporters))

	resolution := resolver.Resolve(ctx, holdings, ref, r.registry)
	derived := derive.Apply(resolution.Table)

	agg, err := aggregate.OpeningPosition(derived)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Table:           derived,
		Resolution:      resolution,
		Aggregate:       agg,
		Metrics:         buildMetrics(runID, holdings, derived, resolution),
		InstrumentTypes: buildInstrumentTypes(schema.Normalize(rawInstruments)),
	}

	logger.InfoContext(ctx, "pipeline run finished",
		slog.Int("source_rows", result.Metrics.SourceRows),
		slog.Int("retained_rows", result.Metrics.RetainedRows),
		slog.String("sum_in_denars", agg.Sum.String()))

	return result, nil
}

// buildInstrumentTypes reads the optional instrument-type reference block
// into a code → description map. Without recognizable columns the first two
// columns are taken as the pair.
func buildInstrumentTypes(t schema.Table) map[string]string {
	if t.Empty() {
		return nil
	}
	codeCol := t.FindColumn("вид на х.в", "код")
	descCol := t.FindColumn("опис", "назив")
	if codeCol < 0 {
		codeCol = 0
	}
	if descCol < 0 || descCol == codeCol {
		descCol = codeCol + 1
	}

	types := make(map[string]string)
	for _, row := range t.Rows {
		code := t.Cell(row, codeCol)
		if code == "" {
			continue
		}
		types[code] = t.Cell(row, descCol)
	}
	return types
}

func buildMetrics(runID string, source, derived domain.HoldingTable, res resolver.Resolution) Metrics {
	m := Metrics{
		RunID:             runID,
		SourceRows:        len(source.Records),
		RetainedRows:      len(derived.Records),
		MappedFraction:    res.MappedFraction,
		UnmappedNames:     res.UnmappedNames,
		RegistryConsulted: res.RegistryConsulted,
		RegistryDegraded:  res.RegistryDegraded,
	}
	for _, rec := range derived.Records {
		if !rec.Amount.Valid {
			m.NullAmounts++
		}
		if !rec.ReportDate.Valid {
			m.NullDates++
		}
	}
	return m
}
