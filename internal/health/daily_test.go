package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySeriesSumsCumulativeMetrics(t *testing.T) {
	records := []HealthRecord{
		testRecord("p1", MetricSteps, 0, 9, 100),
		testRecord("p1", MetricSteps, 0, 18, 150),
	}

	series := BuildDailySeries("p1", records, DefaultRules())

	col := series.Column(MetricSteps)
	require.Len(t, col, 1)
	assert.Equal(t, 250.0, col[testDay(0)])
}

func TestBuildDailySeriesAveragesLevelMetrics(t *testing.T) {
	records := []HealthRecord{
		testRecord("p1", MetricHR, 0, 9, 60),
		testRecord("p1", MetricHR, 0, 18, 80),
	}

	series := BuildDailySeries("p1", records, DefaultRules())

	col := series.Column(MetricHR)
	require.Len(t, col, 1)
	assert.Equal(t, 70.0, col[testDay(0)])
}

func TestBuildDailySeriesExcludesNonGoodRecords(t *testing.T) {
	outlier := testRecord("p1", MetricHR, 0, 9, 180)
	outlier.Flag = FlagOutlier
	invalid := testRecord("p1", MetricHR, 0, 10, 10)
	invalid.Flag = FlagInvalid

	records := []HealthRecord{
		testRecord("p1", MetricHR, 0, 8, 60),
		outlier,
		invalid,
	}

	series := BuildDailySeries("p1", records, DefaultRules())

	col := series.Column(MetricHR)
	require.Len(t, col, 1)
	assert.Equal(t, 60.0, col[testDay(0)], "only good records feed the daily mean")
}

func TestBuildDailySeriesLeavesAbsentDaysAbsent(t *testing.T) {
	records := []HealthRecord{
		testRecord("p1", MetricSteps, 0, 9, 4000),
		testRecord("p1", MetricSteps, 2, 9, 6000),
	}

	series := BuildDailySeries("p1", records, DefaultRules())

	col := series.Column(MetricSteps)
	require.Len(t, col, 2)
	_, hasGapDay := col[testDay(1)]
	assert.False(t, hasGapDay, "days without readings are never zero-filled")
}

func TestDailySeriesDatesSortedUnion(t *testing.T) {
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricSteps: columnOf(map[int]float64{2: 5000, 0: 4000}),
		MetricSleep: columnOf(map[int]float64{1: 7.5, 2: 8.0}),
	})

	dates := series.Dates()

	require.Len(t, dates, 3)
	assert.Equal(t, testDay(0), dates[0])
	assert.Equal(t, testDay(1), dates[1])
	assert.Equal(t, testDay(2), dates[2])
	assert.Equal(t, 3, series.TotalDays())
}

func TestDailySeriesMetricsCanonicalOrder(t *testing.T) {
	series := seriesOf("p1", map[Metric]DailyColumn{
		MetricTemp:  columnOf(map[int]float64{0: 98.6}),
		MetricSleep: columnOf(map[int]float64{0: 7.0}),
		MetricSteps: {},
	})

	assert.Equal(t, []Metric{MetricSleep, MetricTemp}, series.Metrics())
}
