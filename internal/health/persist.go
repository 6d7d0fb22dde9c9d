package health

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// dateLayout is the calendar-day format used in serialized output.
const dateLayout = "2006-01-02"

// CorrelationDocument is the serialized form of one pair's correlation.
type CorrelationDocument struct {
	NDays          int         `json:"n_days"`
	Pearson        Coefficient `json:"pearson"`
	Spearman       Coefficient `json:"spearman"`
	Confidence     Confidence  `json:"confidence"`
	Interpretation string      `json:"interpretation"`
}

// RollingDocument is the serialized rolling-correlation trajectory; nulls in
// Correlations mark window positions with too few valid samples.
type RollingDocument struct {
	Correlations []*float64    `json:"correlations"`
	Mean         float64       `json:"mean_correlation"`
	Std          float64       `json:"std_correlation"`
	Trend        TrendAnalysis `json:"trend_analysis"`
}

// AnomalyDocument is the serialized anomaly report for one metric.
type AnomalyDocument struct {
	AnomalyDates []string      `json:"anomaly_dates"`
	Count        int           `json:"anomaly_count"`
	Percentage   float64       `json:"anomaly_percentage"`
	NormalRange  Bounds        `json:"normal_range"`
	Recovery     RecoveryStats `json:"recovery_analysis"`
	Insights     []string      `json:"insights"`
}

// DateRangeDocument bounds the analyzed period.
type DateRangeDocument struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SummaryDocument describes the data behind a participant's analysis.
type SummaryDocument struct {
	DateRange        DateRangeDocument `json:"date_range"`
	TotalDays        int               `json:"total_days"`
	AvailableMetrics []Metric          `json:"available_metrics"`
}

// ParticipantDocument is the full serialized analysis for one participant.
// Map keys are built exclusively by MetricPair.Key and MetricPair.LagKey so
// the three correlation sections cross-reference.
type ParticipantDocument struct {
	DataSummary         SummaryDocument                `json:"data_summary"`
	DailyCorrelations   map[string]CorrelationDocument `json:"daily_correlations"`
	LagCorrelations     map[string]CorrelationDocument `json:"lag_correlations"`
	RollingCorrelations map[string]RollingDocument     `json:"rolling_correlations"`
	AnomalyAnalysis     map[string]AnomalyDocument     `json:"anomaly_analysis"`
}

// BuildDocument converts a typed analysis into its serialized form. All
// numeric rounding happened at result construction; this is a pure reshaping.
func BuildDocument(a ParticipantAnalysis) ParticipantDocument {
	doc := ParticipantDocument{
		DataSummary: SummaryDocument{
			TotalDays:        a.Summary.TotalDays,
			AvailableMetrics: a.Summary.Metrics,
		},
		DailyCorrelations:   make(map[string]CorrelationDocument, len(a.DailyCorrelations)),
		LagCorrelations:     make(map[string]CorrelationDocument, len(a.LagCorrelations)),
		RollingCorrelations: make(map[string]RollingDocument, len(a.RollingCorrelations)),
		AnomalyAnalysis:     make(map[string]AnomalyDocument, len(a.Anomalies)),
	}
	if a.Summary.TotalDays > 0 {
		doc.DataSummary.DateRange = DateRangeDocument{
			Start: a.Summary.Start.Format(dateLayout),
			End:   a.Summary.End.Format(dateLayout),
		}
	}

	for pair, result := range a.DailyCorrelations {
		doc.DailyCorrelations[pair.Key()] = correlationDocument(result)
	}
	for pair, result := range a.LagCorrelations {
		doc.LagCorrelations[pair.LagKey()] = correlationDocument(result)
	}
	for pair, rolling := range a.RollingCorrelations {
		doc.RollingCorrelations[pair.Key()] = RollingDocument{
			Correlations: rolling.Series,
			Mean:         rolling.Mean,
			Std:          rolling.Std,
			Trend:        rolling.Trend,
		}
	}
	for metric, anomalies := range a.Anomalies {
		dates := make([]string, len(anomalies.Anomalies))
		for i, an := range anomalies.Anomalies {
			dates[i] = an.Date.Format(dateLayout)
		}
		doc.AnomalyAnalysis[string(metric)] = AnomalyDocument{
			AnomalyDates: dates,
			Count:        anomalies.Count,
			Percentage:   anomalies.Percentage,
			NormalRange:  anomalies.Bounds,
			Recovery:     anomalies.Recovery,
			Insights:     anomalies.Insights,
		}
	}
	return doc
}

func correlationDocument(r CorrelationResult) CorrelationDocument {
	return CorrelationDocument{
		NDays:          r.NDays,
		Pearson:        r.Pearson,
		Spearman:       r.Spearman,
		Confidence:     r.Confidence,
		Interpretation: r.Interpretation,
	}
}

// SaveResults writes one JSON document per participant into dir, named
// participant-<id>.json.
func SaveResults(dir string, results map[string]ParticipantAnalysis, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for id, analysis := range results {
		path := filepath.Join(dir, fmt.Sprintf("participant-%s.json", id))
		data, err := json.MarshalIndent(BuildDocument(analysis), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal analysis for %s: %w", id, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("saved participant analysis", "participant_id", id, "path", path)
	}
	return nil
}
