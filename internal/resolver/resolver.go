// Package resolver performs the two-stage entity-identifier resolution:
// a spreadsheet-to-spreadsheet join against the reporter-reference mapping,
// then a spreadsheet-to-registry join for the canonical counterparty name,
// with mapping-coverage measurement and a trust-the-name shortcut when the
// first join covers the whole batch.
package resolver

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"

	"github.com/graincab/isidora/pkg/contracts/domain"
)

// RegistryLookup is the read-only capability for resolving canonical legal
// names from the external registry. Implementations live in
// internal/registry; tests inject fixtures.
type RegistryLookup interface {
	LegalNames(ctx context.Context, ids []int64) (domain.RegistryMapping, error)
}

// Resolution carries the enriched table together with the coverage metrics
// the caller needs to present data-quality and connectivity outcomes.
type Resolution struct {
	Table domain.HoldingTable

	TotalRows      int
	MappedRows     int
	MappedFraction float64
	// UnmappedNames lists the distinct reporter names whose counterparty
	// could not be resolved by either join, sorted for stable output.
	UnmappedNames []string

	RegistryConsulted bool
	RegistryDegraded  bool
}

// Resolve left-joins reporter identifiers from the reference mapping and
// resolves counterparty names. No row is ever dropped: unmatched rows keep
// null identifiers. When every row of the batch maps, the submitted names
// are trusted verbatim and the registry is not consulted. A registry
// failure degrades to name-only resolution, it never aborts the run.
func Resolve(ctx context.Context, table domain.HoldingTable, ref domain.ReferenceMapping, registry RegistryLookup) Resolution {
	out := table.Clone()
	out.Fields.Add(domain.FieldReporterID)
	out.Fields.Add(domain.FieldCounterparty)

	res := Resolution{TotalRows: len(out.Records)}

	for i := range out.Records {
		id, ok := ref[NormalizeName(out.Records[i].ReporterName)]
		if !ok {
			continue
		}
		out.Records[i].ReporterID = sql.NullInt64{Int64: id, Valid: true}
		res.MappedRows++
	}
	if res.TotalRows > 0 {
		res.MappedFraction = float64(res.MappedRows) / float64(res.TotalRows)
	}

	if res.TotalRows > 0 && res.MappedRows == res.TotalRows {
		// Full coverage: the free-text names are trusted verbatim and the
		// registry round trip is skipped entirely.
		for i := range out.Records {
			out.Records[i].Counterparty = sql.NullString{String: out.Records[i].ReporterName, Valid: true}
		}
		res.Table = out
		slog.Info("reference mapping covered full batch, registry skipped",
			slog.Int("rows", res.TotalRows))
		return res
	}

	names := lookupRegistry(ctx, &res, out.Records, registry)
	for i := range out.Records {
		rec := &out.Records[i]
		if !rec.ReporterID.Valid || rec.ReporterID.Int64 == domain.UnresolvedID {
			continue
		}
		if legal, ok := names[rec.ReporterID.Int64]; ok {
			rec.Counterparty = sql.NullString{String: legal, Valid: true}
		}
	}

	res.UnmappedNames = collectUnmapped(out.Records)
	res.Table = out

	slog.Info("identifier resolution complete",
		slog.Int("rows", res.TotalRows),
		slog.Int("mapped", res.MappedRows),
		slog.Float64("mapped_fraction", res.MappedFraction),
		slog.Int("unmapped_names", len(res.UnmappedNames)),
		slog.Bool("registry_consulted", res.RegistryConsulted),
		slog.Bool("registry_degraded", res.RegistryDegraded))

	return res
}

// lookupRegistry fetches legal names for the batch's resolved identifiers.
// The UnresolvedID sentinel is never sent to the registry.
func lookupRegistry(ctx context.Context, res *Resolution, records []domain.HoldingRecord, registry RegistryLookup) domain.RegistryMapping {
	if registry == nil {
		res.RegistryDegraded = true
		return nil
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, rec := range records {
		if !rec.ReporterID.Valid || rec.ReporterID.Int64 == domain.UnresolvedID || seen[rec.ReporterID.Int64] {
			continue
		}
		seen[rec.ReporterID.Int64] = true
		ids = append(ids, rec.ReporterID.Int64)
	}
	if len(ids) == 0 {
		return nil
	}

	res.RegistryConsulted = true
	names, err := registry.LegalNames(ctx, ids)
	if err != nil {
		res.RegistryDegraded = true
		slog.Warn("registry lookup failed, falling back to name-only resolution",
			slog.Int("ids", len(ids)),
			slog.String("error", err.Error()))
		return nil
	}
	return names
}

func collectUnmapped(records []domain.HoldingRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		if rec.Counterparty.Valid {
			continue
		}
		if seen[rec.ReporterName] {
			continue
		}
		seen[rec.ReporterName] = true
		names = append(names, rec.ReporterName)
	}
	sort.Strings(names)
	return names
}
