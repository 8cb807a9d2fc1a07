// Command processor runs the opening-position pipeline against one ИСИДОРА
// workbook export and writes the enriched table and report block as CSV.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/graincab/isidora/internal/config"
	"github.com/graincab/isidora/internal/errors"
	"github.com/graincab/isidora/internal/exporter"
	"github.com/graincab/isidora/internal/infrastructure"
	"github.com/graincab/isidora/internal/pipeline"
	"github.com/graincab/isidora/internal/registry"
	"github.com/graincab/isidora/internal/resolver"
	"github.com/graincab/isidora/internal/workbook"
)

func main() {
	filePath := flag.String("file", "", "path to the uploaded workbook (.xlsx)")
	outDir := flag.String("out", "", "output directory for CSV exports (overrides config)")
	configFile := flag.String("config", "isidora.yaml", "path to optional YAML config file")
	flag.Parse()

	if *filePath == "" {
		slog.Error("missing required -file flag")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := context.Background()

	var lookup resolver.RegistryLookup
	if cfg.RegistryEnabled() {
		pg, err := registry.NewPostgres(ctx, cfg.Registry.DSN, cfg.Registry.Timeout)
		if err != nil {
			// Connectivity problems degrade to name-only resolution.
			logger.Warn("registry unavailable, continuing without it", "error", err)
		} else {
			defer pg.Close()
			lookup = pg
		}
	}

	wb, err := workbook.Open(*filePath)
	if err != nil {
		logger.Error("failed to open workbook", "file", *filePath, "error", err)
		os.Exit(1)
	}
	defer wb.Close()

	runner := pipeline.NewRunner(cfg.Sheets, lookup)
	result, err := runner.Run(ctx, wb)
	if err != nil {
		if errors.IsStructural(err) {
			logger.Error("workbook structure is invalid",
				"error", err,
				"missing_fields", errors.MissingFields(err))
		} else {
			logger.Error("pipeline run failed", "error", err)
		}
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(cfg.Output.Dir)
	if err := writer.WriteHoldings("holdings.csv", result.Table); err != nil {
		logger.Error("failed to export holdings table", "error", err)
		os.Exit(1)
	}
	if err := writer.WriteOpeningPosition("opening_position.csv", result.Aggregate); err != nil {
		logger.Error("failed to export opening-position report", "error", err)
		os.Exit(1)
	}

	m := result.Metrics
	logger.Info("processing complete",
		slog.String("run_id", m.RunID),
		slog.String("sum_in_denars", result.Aggregate.Sum.String()),
		slog.Int("filtered_rows", len(result.Aggregate.Rows)),
		slog.Float64("mapped_fraction", m.MappedFraction),
		slog.Int("unmapped_names", len(m.UnmappedNames)),
		slog.Bool("registry_degraded", m.RegistryDegraded))
}
