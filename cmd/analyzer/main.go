package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"healthcli/internal/config"
	"healthcli/internal/health"
	"healthcli/internal/infrastructure"
)

func main() {
	inPath := flag.String("in", "-", "input JSON file with health records ('-' for stdin)")
	outDir := flag.String("out", "", "output directory for per-participant analysis (defaults to configured output dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *outDir == "" {
		*outDir = cfg.Analysis.OutputDir
	}

	if err := run(cfg, *inPath, *outDir, logger); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, inPath, outDir string, logger *slog.Logger) error {
	ctx := infrastructure.ContextWithTraceID(context.Background())

	records, err := readRecords(inPath)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	logger.InfoContext(ctx, "loaded health records",
		"path", inPath,
		"records", len(records),
	)

	rules := health.DefaultRules()
	if cfg.Analysis.RulesFile != "" {
		if rules, err = health.LoadRulesFile(cfg.Analysis.RulesFile); err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		logger.InfoContext(ctx, "loaded rule overrides", "path", cfg.Analysis.RulesFile)
	}

	analyzer := health.NewAnalyzer(rules, logger)
	analyzer.SetConfiguration(cfg.Analysis.RollingWindow, cfg.Analysis.Workers)

	results, err := analyzer.AnalyzeBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("analyze batch: %w", err)
	}

	health.BuildQualityReport(results).LogSummary(logger)

	if err := health.SaveResults(outDir, results, logger); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	logger.InfoContext(ctx, "analysis results saved",
		"participants", len(results),
		"output_dir", outDir,
	)
	return nil
}

// readRecords decodes the already-parsed record collection. Producing this
// collection (file discovery, per-format parsing) is an upstream concern.
func readRecords(path string) ([]health.HealthRecord, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	var records []health.HealthRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode record collection: %w", err)
	}
	return records, nil
}
