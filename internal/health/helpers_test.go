package health

import (
	"time"
)

// fp returns a pointer to v, for optional record values.
func fp(v float64) *float64 {
	return &v
}

// testDay returns the n-th calendar day of a fixed test period.
func testDay(n int) Date {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// testRecord builds a good-flagged record on the n-th test day at the given
// hour offset.
func testRecord(participant string, metric Metric, dayN, hour int, v1 float64) HealthRecord {
	return HealthRecord{
		ParticipantID: participant,
		Metric:        metric,
		Timestamp:     testDay(dayN).Add(time.Duration(hour) * time.Hour),
		Value1:        fp(v1),
		Flag:          FlagGood,
	}
}

// columnOf builds a daily column from day-number/value pairs.
func columnOf(points map[int]float64) DailyColumn {
	col := make(DailyColumn, len(points))
	for n, v := range points {
		col[testDay(n)] = v
	}
	return col
}

// rampColumn builds a column of consecutive days starting at day 0, with
// values start, start+step, start+2*step, ...
func rampColumn(days int, start, step float64) DailyColumn {
	col := make(DailyColumn, days)
	for i := 0; i < days; i++ {
		col[testDay(i)] = start + float64(i)*step
	}
	return col
}

// seriesOf builds a daily series from metric columns.
func seriesOf(participant string, cols map[Metric]DailyColumn) DailySeries {
	return DailySeries{ParticipantID: participant, Columns: cols}
}
