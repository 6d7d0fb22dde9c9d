package health

import "sort"

// BuildDailySeries collapses good records into one value per calendar day per
// metric. Cumulative-count metrics sum their same-day readings; rate and
// level metrics average them. Days without a reading stay absent, never
// zero-filled.
func BuildDailySeries(participantID string, records []HealthRecord, rules RuleSet) DailySeries {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[Metric]map[Date]*bucket)

	for i := range records {
		r := &records[i]
		if r.Flag != FlagGood || r.Value1 == nil {
			continue
		}
		day := DateOf(r.Timestamp)
		byDay, ok := buckets[r.Metric]
		if !ok {
			byDay = make(map[Date]*bucket)
			buckets[r.Metric] = byDay
		}
		b, ok := byDay[day]
		if !ok {
			b = &bucket{}
			byDay[day] = b
		}
		b.sum += *r.Value1
		b.count++
	}

	series := DailySeries{
		ParticipantID: participantID,
		Columns:       make(map[Metric]DailyColumn, len(buckets)),
	}
	for metric, byDay := range buckets {
		col := make(DailyColumn, len(byDay))
		for day, b := range byDay {
			if rules[metric].Aggregate == AggregateSum {
				col[day] = b.sum
			} else {
				col[day] = b.sum / float64(b.count)
			}
		}
		series.Columns[metric] = col
	}
	return series
}

func sortDates(dates []Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

func sortedDates(col DailyColumn) []Date {
	dates := make([]Date, 0, len(col))
	for d := range col {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}
