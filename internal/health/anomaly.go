package health

import (
	"fmt"
	"log/slog"
)

const (
	// minAnomalyDays is the fewest daily values an anomaly column needs.
	minAnomalyDays = 7
	// DailyAnomalyIQRFactor widens the anomaly band relative to the
	// record-level outlier fences: it acts on already-aggregated daily
	// values, not raw readings.
	DailyAnomalyIQRFactor = 2.0
	// RecoveryIQRFactor defines the tighter band a value must re-enter to
	// count as recovered. Kept separate from DailyAnomalyIQRFactor; the
	// looser detection band is not reused for declaring recovery.
	RecoveryIQRFactor = 1.5
	// recoveryLookaheadDays bounds the forward scan after each anomaly.
	recoveryLookaheadDays = 7
)

// DetectAnomalies flags daily aggregates outside an IQR-derived band, per
// metric, and analyzes how quickly each metric recovers afterwards. Metrics
// with fewer than minAnomalyDays values, or with no anomalous days, are
// omitted.
func DetectAnomalies(series DailySeries, logger *slog.Logger) map[Metric]MetricAnomalies {
	if logger == nil {
		logger = slog.Default()
	}
	results := make(map[Metric]MetricAnomalies)

	for _, metric := range series.Metrics() {
		col := series.Column(metric)
		if len(col) < minAnomalyDays {
			continue
		}

		dates := col.Dates()
		values := make([]float64, len(dates))
		for i, d := range dates {
			values[i] = col[d]
		}

		q1, q3 := quartiles(values)
		iqr := q3 - q1
		detect := Bounds{
			Lower: q1 - DailyAnomalyIQRFactor*iqr,
			Upper: q3 + DailyAnomalyIQRFactor*iqr,
		}

		var anomalies []Anomaly
		for i, d := range dates {
			switch {
			case values[i] < detect.Lower:
				anomalies = append(anomalies, Anomaly{Date: d, Value: values[i], Direction: DirectionBelow})
			case values[i] > detect.Upper:
				anomalies = append(anomalies, Anomaly{Date: d, Value: values[i], Direction: DirectionAbove})
			}
		}
		if len(anomalies) == 0 {
			continue
		}

		normal := Bounds{
			Lower: q1 - RecoveryIQRFactor*iqr,
			Upper: q3 + RecoveryIQRFactor*iqr,
		}
		recovery := analyzeRecovery(col, anomalies, normal)
		pct := float64(len(anomalies)) / float64(len(values)) * 100

		results[metric] = MetricAnomalies{
			Metric:     metric,
			Anomalies:  anomalies,
			Count:      len(anomalies),
			Percentage: roundTo(pct, 1),
			Bounds: Bounds{
				Lower: roundTo(detect.Lower, 2),
				Upper: roundTo(detect.Upper, 2),
			},
			Recovery: recovery,
			Insights: anomalyInsights(metric, pct, anomalies, recovery),
		}

		logger.Debug("anomalies detected",
			"metric", metric,
			"count", len(anomalies),
			"percentage", roundTo(pct, 1),
		)
	}
	return results
}

// analyzeRecovery scans forward from each anomalous day, up to
// recoveryLookaheadDays, for the first day whose value re-enters the normal
// band. Days without a value are skipped. Anomalies that never recover are
// excluded from the mean and median but still lower the recovery rate.
func analyzeRecovery(col DailyColumn, anomalies []Anomaly, normal Bounds) RecoveryStats {
	var offsets []float64
	for _, a := range anomalies {
		for daysAfter := 1; daysAfter <= recoveryLookaheadDays; daysAfter++ {
			v, ok := col[a.Date.AddDate(0, 0, daysAfter)]
			if !ok {
				continue
			}
			if normal.Contains(v) {
				offsets = append(offsets, float64(daysAfter))
				break
			}
		}
	}

	if len(offsets) == 0 {
		return RecoveryStats{Rate: 0}
	}
	mean := roundTo(meanOf(offsets), 1)
	median := roundTo(medianOf(offsets), 1)
	return RecoveryStats{
		MeanDays:   &mean,
		MedianDays: &median,
		Rate:       roundTo(float64(len(offsets))/float64(len(anomalies))*100, 1),
	}
}

// anomalyInsights builds the qualitative insight lines: anomaly frequency,
// recovery speed, and whether anomalies cluster in time.
func anomalyInsights(metric Metric, pct float64, anomalies []Anomaly, recovery RecoveryStats) []string {
	var insights []string

	switch {
	case pct > 15:
		insights = append(insights, fmt.Sprintf("Frequent %s anomalies detected (%.0f%% of days)", metric, pct))
	case pct > 5:
		insights = append(insights, fmt.Sprintf("Occasional %s anomalies detected (%.0f%% of days)", metric, pct))
	default:
		insights = append(insights, fmt.Sprintf("Rare %s anomalies detected (%.0f%% of days)", metric, pct))
	}

	switch {
	case recovery.Rate > 80 && recovery.MeanDays != nil:
		insights = append(insights, fmt.Sprintf("Quick recovery typical (average %.0f days)", *recovery.MeanDays))
	case recovery.Rate > 50 && recovery.MeanDays != nil:
		insights = append(insights, fmt.Sprintf("Moderate recovery patterns (average %.0f days)", *recovery.MeanDays))
	default:
		insights = append(insights, "Slow or incomplete recovery from anomalies")
	}

	if len(anomalies) > 1 {
		clustered := 0
		gaps := len(anomalies) - 1
		for i := 1; i < len(anomalies); i++ {
			gapDays := int(anomalies[i].Date.Sub(anomalies[i-1].Date).Hours() / 24)
			if gapDays <= 3 {
				clustered++
			}
		}
		if float64(clustered) > float64(gaps)*0.5 {
			insights = append(insights, "Anomalies tend to cluster together")
		}
	}
	return insights
}
