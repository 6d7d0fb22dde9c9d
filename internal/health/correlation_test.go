package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameDayCorrelationsGatesOnOverlap(t *testing.T) {
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: rampColumn(4, 1000, 100),
		MetricSleep: rampColumn(4, 6, 0.25),
	})

	results := SameDayCorrelations(series, nil)

	assert.Empty(t, results, "4 overlapping days are below the 5-day minimum")
}

func TestSameDayCorrelationsPerfectPositive(t *testing.T) {
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: rampColumn(10, 1000, 100),
		MetricSleep: rampColumn(10, 6, 0.25),
	})

	results := SameDayCorrelations(series, nil)

	require.Len(t, results, 1)
	result, ok := results[MetricPair{MetricSteps, MetricSleep}]
	require.True(t, ok)

	assert.Equal(t, 10, result.NDays)
	assert.Equal(t, 1.0, result.Pearson.R)
	assert.Equal(t, 0.0, result.Pearson.PValue)
	assert.True(t, result.Pearson.Significant)
	assert.Equal(t, 1.0, result.Spearman.R)
	assert.True(t, result.Spearman.Significant)
	assert.Equal(t, ConfidenceTentative, result.Confidence, "10 days caps confidence regardless of strength")
	assert.Equal(t, "Strong positive correlation", result.Interpretation)
}

func TestSameDayCorrelationsNegative(t *testing.T) {
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: rampColumn(35, 1000, 100),
		MetricSleep: rampColumn(35, 9, -0.1),
	})

	results := SameDayCorrelations(series, nil)

	result, ok := results[MetricPair{MetricSteps, MetricSleep}]
	require.True(t, ok)
	assert.Equal(t, -1.0, result.Pearson.R)
	assert.Equal(t, ConfidenceSolid, result.Confidence)
	assert.Equal(t, "Strong negative correlation", result.Interpretation)
}

func TestSameDayCorrelationsOmitsDegeneratePairs(t *testing.T) {
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: rampColumn(10, 1000, 100),
		MetricSleep: rampColumn(10, 7.5, 0), // constant, correlation undefined
	})

	results := SameDayCorrelations(series, nil)

	assert.Empty(t, results)
}

func TestSameDayCorrelationsPartialOverlap(t *testing.T) {
	// Sleep misses days 0-2; the pair correlates over days 3-9 only.
	sleep := make(DailyColumn)
	for i := 3; i < 10; i++ {
		sleep[testDay(i)] = 6 + 0.25*float64(i)
	}
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: rampColumn(10, 1000, 100),
		MetricSleep: sleep,
	})

	results := SameDayCorrelations(series, nil)

	result, ok := results[MetricPair{MetricSteps, MetricSleep}]
	require.True(t, ok)
	assert.Equal(t, 7, result.NDays)
}

func TestLagCorrelationsAlignsNextDay(t *testing.T) {
	// Sleep on day d+1 tracks steps on day d exactly; same-day values do not.
	steps := rampColumn(10, 1000, 100)
	sleep := make(DailyColumn)
	for i := 0; i < 10; i++ {
		sleep[testDay(i+1)] = 4 + steps[testDay(i)]/1000
	}
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: steps,
		MetricSleep: sleep,
	})

	results := LagCorrelations(series, nil)

	result, ok := results[MetricPair{MetricSteps, MetricSleep}]
	require.True(t, ok)
	assert.Equal(t, 10, result.NDays, "every steps day has a sleep value the day after")
	assert.Equal(t, 1.0, result.Pearson.R)
	assert.Equal(t, "Higher steps today precedes a markedly higher sleep the next day", result.Interpretation)
}

func TestLagCorrelationsGatesOnOverlap(t *testing.T) {
	steps := rampColumn(5, 1000, 100)
	sleep := make(DailyColumn)
	for i := 1; i <= 4; i++ {
		sleep[testDay(i)] = 6 + 0.25*float64(i)
	}
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: steps,
		MetricSleep: sleep,
	})

	results := LagCorrelations(series, nil)

	assert.Empty(t, results, "only 4 day-to-next-day pairs exist")
}

func TestInterpretSameDayBuckets(t *testing.T) {
	tests := []struct {
		name     string
		pearson  Coefficient
		spearman Coefficient
		want     string
	}{
		{
			name:    "not significant",
			pearson: Coefficient{R: 0.9, PValue: 0.2},
			want:    "No significant relationship detected",
		},
		{
			name:    "strong positive",
			pearson: Coefficient{R: 0.75, PValue: 0.01},
			want:    "Strong positive correlation",
		},
		{
			name:    "moderate negative",
			pearson: Coefficient{R: -0.55, PValue: 0.01},
			want:    "Moderate negative correlation",
		},
		{
			name:    "weak positive",
			pearson: Coefficient{R: 0.35, PValue: 0.04},
			want:    "Weak positive correlation",
		},
		{
			name:    "very weak",
			pearson: Coefficient{R: 0.1, PValue: 0.04},
			want:    "Very weak positive correlation",
		},
		{
			name:     "stronger spearman wins",
			pearson:  Coefficient{R: 0.2, PValue: 0.3},
			spearman: Coefficient{R: -0.8, PValue: 0.01},
			want:     "Strong negative correlation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interpretSameDay(tt.pearson, tt.spearman))
		})
	}
}

func TestInterpretNextDay(t *testing.T) {
	assert.Equal(t,
		"No significant next-day association between steps and sleep",
		interpretNextDay(MetricSteps, MetricSleep, Coefficient{R: 0.6, PValue: 0.3}))

	assert.Equal(t,
		"Higher steps today precedes a moderately lower hr the next day",
		interpretNextDay(MetricSteps, MetricHR, Coefficient{R: -0.4, PValue: 0.01}))

	assert.Equal(t,
		"Higher sleep today precedes a slightly higher spo2 the next day",
		interpretNextDay(MetricSleep, MetricSpO2, Coefficient{R: 0.2, PValue: 0.04}))
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		name  string
		nDays int
		r     float64
		want  Confidence
	}{
		{name: "solid", nDays: 30, r: 0.5, want: ConfidenceSolid},
		{name: "strong but short run", nDays: 29, r: 0.9, want: ConfidenceLikely},
		{name: "likely", nDays: 14, r: 0.3, want: ConfidenceLikely},
		{name: "tentative on sample size", nDays: 13, r: 0.9, want: ConfidenceTentative},
		{name: "tentative on strength", nDays: 40, r: 0.25, want: ConfidenceTentative},
		{name: "low", nDays: 40, r: 0.1, want: ConfidenceLow},
		{name: "negative uses magnitude", nDays: 30, r: -0.6, want: ConfidenceSolid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceFor(tt.nDays, tt.r))
		})
	}
}
