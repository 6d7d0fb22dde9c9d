package health

import (
	"fmt"
	"time"
)

// Metric identifies one of the tracked physiological metric streams.
type Metric string

const (
	MetricBP    Metric = "bp"
	MetricSleep Metric = "sleep"
	MetricSteps Metric = "steps"
	MetricHR    Metric = "hr"
	MetricSpO2  Metric = "spo2"
	MetricTemp  Metric = "temp"
)

// AllMetrics returns every supported metric in canonical order.
func AllMetrics() []Metric {
	return []Metric{MetricBP, MetricSleep, MetricSteps, MetricHR, MetricSpO2, MetricTemp}
}

// IsValid reports whether the metric is one of the supported streams.
func (m Metric) IsValid() bool {
	switch m {
	case MetricBP, MetricSleep, MetricSteps, MetricHR, MetricSpO2, MetricTemp:
		return true
	}
	return false
}

func (m Metric) String() string {
	return string(m)
}

// QualityFlag classifies a single record after cleaning.
type QualityFlag string

const (
	FlagGood      QualityFlag = "good"
	FlagOutlier   QualityFlag = "outlier"
	FlagInvalid   QualityFlag = "invalid"
	FlagMissing   QualityFlag = "missing"
	FlagDuplicate QualityFlag = "duplicate"
)

// HealthRecord is a single raw reading for one participant and metric.
// Records arrive with Flag set to FlagGood; the classifier returns reflagged
// copies and never mutates its input.
type HealthRecord struct {
	ParticipantID string      `json:"participant_id" validate:"required"`
	Metric        Metric      `json:"metric_type" validate:"required"`
	Timestamp     time.Time   `json:"timestamp" validate:"required"`
	Value1        *float64    `json:"value_1"`
	Value2        *float64    `json:"value_2,omitempty"`
	Flag          QualityFlag `json:"quality_flag"`
}

// Date is a calendar day, normalized to midnight UTC so it can key maps.
type Date = time.Time

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyColumn maps calendar days to the aggregated value of one metric.
type DailyColumn map[Date]float64

// Dates returns the column's days in ascending order.
func (c DailyColumn) Dates() []Date {
	return sortedDates(c)
}

// DailySeries is one participant's daily aggregation across all metrics.
// It is derived from good-quality records and never modified after creation.
type DailySeries struct {
	ParticipantID string
	Columns       map[Metric]DailyColumn
}

// Column returns the daily values for a metric, or nil when absent.
func (s DailySeries) Column(m Metric) DailyColumn {
	return s.Columns[m]
}

// Metrics returns the metrics that have at least one daily value,
// in canonical order.
func (s DailySeries) Metrics() []Metric {
	var out []Metric
	for _, m := range AllMetrics() {
		if len(s.Columns[m]) > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Dates returns the sorted union of days across all metrics.
func (s DailySeries) Dates() []Date {
	union := make(map[Date]struct{})
	for _, col := range s.Columns {
		for d := range col {
			union[d] = struct{}{}
		}
	}
	dates := make([]Date, 0, len(union))
	for d := range union {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}

// TotalDays returns the number of distinct days with any metric value.
func (s DailySeries) TotalDays() int {
	return len(s.Dates())
}

// MetricPair is an ordered pair of metrics under correlation analysis.
type MetricPair struct {
	A Metric
	B Metric
}

// Key builds the same-day pair key, e.g. "steps_vs_sleep". The same
// construction is used by the rolling analyzer so results cross-reference.
func (p MetricPair) Key() string {
	return fmt.Sprintf("%s_vs_%s", p.A, p.B)
}

// LagKey builds the lag-1 pair key, e.g. "steps_to_sleep_next_day".
func (p MetricPair) LagKey() string {
	return fmt.Sprintf("%s_to_%s_next_day", p.A, p.B)
}

// CorrelationPairs is the fixed set of ordered metric pairs analyzed by the
// same-day, lag-1 and rolling analyzers.
var CorrelationPairs = []MetricPair{
	{MetricSteps, MetricSleep},
	{MetricSteps, MetricHR},
	{MetricSteps, MetricBP},
	{MetricSteps, MetricTemp},
	{MetricSteps, MetricSpO2},
	{MetricSleep, MetricHR},
	{MetricSleep, MetricTemp},
	{MetricSleep, MetricSpO2},
	{MetricSleep, MetricBP},
	{MetricHR, MetricTemp},
	{MetricHR, MetricBP},
	{MetricHR, MetricSpO2},
	{MetricTemp, MetricSpO2},
	{MetricTemp, MetricBP},
	{MetricSpO2, MetricBP},
}

// Coefficient is one correlation measure with its significance test.
type Coefficient struct {
	R           float64 `json:"r"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// CorrelationResult is the outcome of correlating one metric pair.
type CorrelationResult struct {
	Pair           MetricPair
	NDays          int
	Pearson        Coefficient
	Spearman       Coefficient
	Confidence     Confidence
	Interpretation string
}

// Trend labels the direction of a rolling-correlation trajectory.
type Trend string

const (
	TrendStable        Trend = "stable"
	TrendStrengthening Trend = "strengthening"
	TrendWeakening     Trend = "weakening"
	TrendInsufficient  Trend = "insufficient_data"
)

// TrendAnalysis is the OLS fit over the gap-free rolling correlations.
type TrendAnalysis struct {
	Trend          Trend   `json:"trend"`
	Slope          float64 `json:"slope,omitempty"`
	StrengthChange float64 `json:"strength_change,omitempty"`
}

// RollingCorrelation is the windowed correlation trajectory of one pair.
// Series holds one entry per window position; nil marks a gap where the
// window had too few valid samples.
type RollingCorrelation struct {
	Pair   MetricPair
	Series []*float64
	Mean   float64
	Std    float64
	Trend  TrendAnalysis
}

// Direction indicates which bound an anomalous value crossed.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Bounds is the normal range derived from quartiles.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v falls inside the bounds, inclusive.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Anomaly is a daily aggregate outside the metric's normal range.
type Anomaly struct {
	Date      Date      `json:"date"`
	Value     float64   `json:"value"`
	Direction Direction `json:"direction"`
}

// RecoveryStats summarizes how quickly a metric returned to its normal band
// after anomalies. MeanDays and MedianDays are nil when nothing recovered.
type RecoveryStats struct {
	MeanDays   *float64 `json:"mean_recovery_days"`
	MedianDays *float64 `json:"median_recovery_days"`
	Rate       float64  `json:"recovery_rate"`
}

// MetricAnomalies is the anomaly report for one metric column.
type MetricAnomalies struct {
	Metric     Metric
	Anomalies  []Anomaly
	Count      int
	Percentage float64
	Bounds     Bounds
	Recovery   RecoveryStats
	Insights   []string
}

// DataSummary describes the daily series a participant analysis covers.
type DataSummary struct {
	Start     Date
	End       Date
	TotalDays int
	Metrics   []Metric
}

// ParticipantAnalysis is the complete analysis output for one participant.
type ParticipantAnalysis struct {
	ParticipantID       string
	Summary             DataSummary
	DailyCorrelations   map[MetricPair]CorrelationResult
	LagCorrelations     map[MetricPair]CorrelationResult
	RollingCorrelations map[MetricPair]RollingCorrelation
	Anomalies           map[Metric]MetricAnomalies
	Quality             map[Metric]FlagCounts
}

// Empty reports whether the analysis produced no results at all.
func (a ParticipantAnalysis) Empty() bool {
	return len(a.DailyCorrelations) == 0 &&
		len(a.LagCorrelations) == 0 &&
		len(a.RollingCorrelations) == 0 &&
		len(a.Anomalies) == 0
}
