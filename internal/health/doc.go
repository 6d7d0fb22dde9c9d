// Package health implements the core analysis engine for irregularly-sampled
// multi-metric physiological time series: per-record quality classification,
// daily aggregation, and a battery of inter-metric statistical relationships.
//
// # Pipeline
//
// Data flows strictly through the components:
//
//	ClassifyRecords -> BuildDailySeries -> { SameDayCorrelations,
//	                                         LagCorrelations,
//	                                         RollingCorrelations,
//	                                         DetectAnomalies (incl. recovery) }
//
// Analyzer ties the steps together per participant and runs participants
// concurrently in AnalyzeBatch; participants share no mutable state, so a
// failure in one is isolated from the rest.
//
// # Components
//
//   - quality.go: five-stage cleaning pipeline (duplicates, sort, range
//     validation, dual z-score/IQR outlier detection, missing check)
//   - daily.go: one value per calendar day per metric (sum for cumulative
//     counts, mean for rates and levels)
//   - correlation.go: same-day and lag-1 Pearson/Spearman analysis over the
//     fixed pair set, with confidence labels and interpretations
//   - rolling.go: 14-day windowed correlation trajectories with OLS trend
//     classification
//   - anomaly.go: IQR-banded daily anomaly detection and recovery timing
//   - persist.go: rounded, string-keyed JSON documents for downstream
//     reporting
//
// # Sample-size gating
//
// No statistic is computed below its minimum sample threshold (5 overlapping
// days for pairwise and lag analysis, 7 values for rolling windows and
// anomaly columns, window+5 total days for the rolling analysis). Below the
// threshold the pair or metric is omitted from output; it is never an error
// and never zero-filled.
//
// All reported relationships are associative. Interpretations are worded to
// describe observed associations only, never causation.
//
// # Usage
//
//	analyzer := health.NewAnalyzer(health.DefaultRules(), slog.Default())
//	results, err := analyzer.AnalyzeBatch(ctx, records)
//	if err != nil {
//	    return err
//	}
//	if err := health.SaveResults(outputDir, results, slog.Default()); err != nil {
//	    return err
//	}
package health
