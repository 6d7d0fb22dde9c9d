package health

import "log/slog"

// QualityReport aggregates flag counts across a whole batch, per metric and
// per participant, for the researcher-facing cleaning summary.
type QualityReport struct {
	TotalRecords  int                   `json:"total_records"`
	Distribution  FlagCounts            `json:"quality_distribution"`
	GoodPct       float64               `json:"good_data_percentage"`
	ByMetric      map[Metric]FlagCounts `json:"by_metric"`
	ByParticipant map[string]FlagCounts `json:"by_participant"`
}

// BuildQualityReport folds the per-participant flag counts of a batch into
// one report.
func BuildQualityReport(results map[string]ParticipantAnalysis) QualityReport {
	report := QualityReport{
		ByMetric:      make(map[Metric]FlagCounts),
		ByParticipant: make(map[string]FlagCounts, len(results)),
	}

	for id, analysis := range results {
		var participantTotal FlagCounts
		for metric, counts := range analysis.Quality {
			byMetric := report.ByMetric[metric]
			byMetric.merge(counts)
			report.ByMetric[metric] = byMetric
			participantTotal.merge(counts)
		}
		report.ByParticipant[id] = participantTotal
		report.Distribution.merge(participantTotal)
	}

	report.TotalRecords = report.Distribution.Total
	report.GoodPct = report.Distribution.GoodPct()
	return report
}

// LogSummary writes the cleaning summary the way the batch entrypoint
// reports it: one line overall, one per metric.
func (r QualityReport) LogSummary(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("data cleaning summary",
		"total_records", r.TotalRecords,
		"good_pct", r.GoodPct,
		"outliers", r.Distribution.Outlier,
		"invalid", r.Distribution.Invalid,
		"missing", r.Distribution.Missing,
		"duplicates", r.Distribution.Duplicate,
	)
	for _, metric := range AllMetrics() {
		counts, ok := r.ByMetric[metric]
		if !ok {
			continue
		}
		logger.Info("metric cleaning summary",
			"metric", metric,
			"total", counts.Total,
			"good", counts.Good,
			"good_pct", counts.GoodPct(),
			"outliers", counts.Outlier,
			"invalid", counts.Invalid,
			"duplicates", counts.Duplicate,
		)
	}
}
