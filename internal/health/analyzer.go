package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const meterName = "healthcli"

// Analyzer orchestrates the full per-participant pipeline: quality
// classification, daily aggregation, the three correlation analyzers, and
// anomaly detection with recovery analysis.
type Analyzer struct {
	rules          RuleSet
	rollingWindow  int
	maxConcurrency int
	logger         *slog.Logger
	tracer         trace.Tracer

	recordsClassified    metric.Int64Counter
	participantsAnalyzed metric.Int64Counter
	analysisDuration     metric.Float64Histogram
}

// NewAnalyzer creates an analyzer with the given ruleset. A nil ruleset
// falls back to DefaultRules.
func NewAnalyzer(rules RuleSet, logger *slog.Logger) *Analyzer {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Analyzer{
		rules:          rules,
		rollingWindow:  DefaultRollingWindow,
		maxConcurrency: 4,
		logger:         logger,
		tracer:         otel.Tracer(meterName),
	}

	meter := otel.Meter(meterName)
	var err error
	if a.recordsClassified, err = meter.Int64Counter("health_records_classified_total",
		metric.WithDescription("Raw records run through the quality classifier")); err != nil {
		logger.Warn("failed to create counter", "name", "health_records_classified_total", "error", err)
	}
	if a.participantsAnalyzed, err = meter.Int64Counter("health_participants_analyzed_total",
		metric.WithDescription("Participants whose analysis completed")); err != nil {
		logger.Warn("failed to create counter", "name", "health_participants_analyzed_total", "error", err)
	}
	if a.analysisDuration, err = meter.Float64Histogram("health_participant_analysis_seconds",
		metric.WithDescription("Wall time of one participant's analysis")); err != nil {
		logger.Warn("failed to create histogram", "name", "health_participant_analysis_seconds", "error", err)
	}

	return a
}

// SetConfiguration overrides the rolling window size and the batch worker
// count. Zero or negative values keep the defaults.
func (a *Analyzer) SetConfiguration(rollingWindow, maxConcurrency int) {
	if rollingWindow > 0 {
		a.rollingWindow = rollingWindow
	}
	if maxConcurrency > 0 {
		a.maxConcurrency = maxConcurrency
	}
}

// AnalyzeBatch analyzes every participant present in the record collection,
// participants running concurrently. A failure while analyzing one
// participant is logged and isolated; the rest proceed. The only fatal
// conditions are an empty collection or records that are malformed at the
// type level.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, records []HealthRecord) (map[string]ParticipantAnalysis, error) {
	start := time.Now()

	if len(records) == 0 {
		return nil, fmt.Errorf("no health records provided")
	}
	byParticipant := make(map[string][]HealthRecord)
	for i := range records {
		r := &records[i]
		if r.ParticipantID == "" {
			return nil, fmt.Errorf("record %d: missing participant id", i)
		}
		if !r.Metric.IsValid() {
			return nil, fmt.Errorf("record %d: unknown metric type %q", i, r.Metric)
		}
		rec := *r
		if rec.Flag == "" {
			rec.Flag = FlagGood
		}
		byParticipant[rec.ParticipantID] = append(byParticipant[rec.ParticipantID], rec)
	}

	a.logger.InfoContext(ctx, "starting batch analysis",
		"records", len(records),
		"participants", len(byParticipant),
		"workers", a.maxConcurrency,
	)

	var (
		mu      sync.Mutex
		results = make(map[string]ParticipantAnalysis, len(byParticipant))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)

	for id, participantRecords := range byParticipant {
		g.Go(func() error {
			// One participant failing must not abort the others.
			defer func() {
				if rec := recover(); rec != nil {
					a.logger.ErrorContext(gctx, "participant analysis panicked",
						"participant_id", id,
						"panic", rec,
					)
				}
			}()

			analysis := a.AnalyzeParticipant(gctx, id, participantRecords)
			mu.Lock()
			results[id] = analysis
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "batch analysis completed",
		"duration", time.Since(start),
		"participants", len(results),
	)
	return results, nil
}

// AnalyzeParticipant runs the sequential pipeline for one participant:
// classifier, aggregator, then the four daily-series analyzers (which are
// mutually independent and run concurrently), with recovery analysis folded
// into anomaly detection. A participant with no usable records yields an
// analysis whose result maps are all empty.
func (a *Analyzer) AnalyzeParticipant(ctx context.Context, participantID string, records []HealthRecord) ParticipantAnalysis {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "analyze_participant",
		trace.WithAttributes(attribute.String("participant_id", participantID)))
	defer span.End()

	logger := a.logger.With("participant_id", participantID)

	byMetric := make(map[Metric][]HealthRecord)
	for i := range records {
		byMetric[records[i].Metric] = append(byMetric[records[i].Metric], records[i])
	}

	analysis := ParticipantAnalysis{
		ParticipantID: participantID,
		Quality:       make(map[Metric]FlagCounts, len(byMetric)),
	}

	var classified []HealthRecord
	for metricType, metricRecords := range byMetric {
		flagged, counts := ClassifyRecords(metricRecords, a.rules[metricType])
		classified = append(classified, flagged...)
		analysis.Quality[metricType] = counts
		if a.recordsClassified != nil {
			a.recordsClassified.Add(ctx, int64(counts.Total),
				metric.WithAttributes(attribute.String("metric", string(metricType))))
		}
	}

	series := BuildDailySeries(participantID, classified, a.rules)
	dates := series.Dates()
	if len(dates) == 0 {
		logger.WarnContext(ctx, "no good-quality records, skipping analysis")
		return analysis
	}

	analysis.Summary = DataSummary{
		Start:     dates[0],
		End:       dates[len(dates)-1],
		TotalDays: len(dates),
		Metrics:   series.Metrics(),
	}

	// The four analyzers only read the immutable daily series and write
	// distinct fields, so they can run concurrently.
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		analysis.DailyCorrelations = SameDayCorrelations(series, logger)
	}()
	go func() {
		defer wg.Done()
		analysis.LagCorrelations = LagCorrelations(series, logger)
	}()
	go func() {
		defer wg.Done()
		analysis.RollingCorrelations = RollingCorrelations(series, a.rollingWindow, logger)
	}()
	go func() {
		defer wg.Done()
		analysis.Anomalies = DetectAnomalies(series, logger)
	}()
	wg.Wait()

	duration := time.Since(start)
	if a.participantsAnalyzed != nil {
		a.participantsAnalyzed.Add(ctx, 1)
	}
	if a.analysisDuration != nil {
		a.analysisDuration.Record(ctx, duration.Seconds())
	}
	logger.DebugContext(ctx, "participant analysis completed",
		"duration", duration,
		"total_days", len(dates),
		"daily_pairs", len(analysis.DailyCorrelations),
		"lag_pairs", len(analysis.LagCorrelations),
		"rolling_pairs", len(analysis.RollingCorrelations),
		"anomaly_metrics", len(analysis.Anomalies),
	)
	return analysis
}
