package health

import (
	"math"
	"sort"
)

// FlagCounts aggregates quality flags over one set of classified records.
type FlagCounts struct {
	Total     int `json:"total"`
	Good      int `json:"good"`
	Outlier   int `json:"outlier"`
	Invalid   int `json:"invalid"`
	Missing   int `json:"missing"`
	Duplicate int `json:"duplicate"`
}

// GoodPct returns the share of good records as a percentage, one decimal.
func (c FlagCounts) GoodPct() float64 {
	if c.Total == 0 {
		return 0
	}
	return roundTo(float64(c.Good)/float64(c.Total)*100, 1)
}

func (c *FlagCounts) add(flag QualityFlag) {
	c.Total++
	switch flag {
	case FlagGood:
		c.Good++
	case FlagOutlier:
		c.Outlier++
	case FlagInvalid:
		c.Invalid++
	case FlagMissing:
		c.Missing++
	case FlagDuplicate:
		c.Duplicate++
	}
}

// merge folds other into the counts.
func (c *FlagCounts) merge(other FlagCounts) {
	c.Total += other.Total
	c.Good += other.Good
	c.Outlier += other.Outlier
	c.Invalid += other.Invalid
	c.Missing += other.Missing
	c.Duplicate += other.Duplicate
}

// minOutlierSamples is the smallest good-sample count the outlier pass needs.
const minOutlierSamples = 5

// ClassifyRecords runs the cleaning pipeline over one participant's records
// for a single metric: duplicate detection, timestamp sort, range validation,
// dual z-score/IQR outlier detection, then the missing-value check. It
// returns reflagged copies in timestamp order plus flag counts; the input
// slice is left untouched, so identical input always yields identical flags.
func ClassifyRecords(records []HealthRecord, rules MetricRules) ([]HealthRecord, FlagCounts) {
	out := make([]HealthRecord, len(records))
	copy(out, records)

	markDuplicates(out)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	validateRanges(out, rules)
	flagOutliers(out, rules)

	// Missing check runs last. Absent primaries override every earlier flag
	// except invalid, which cannot occur for a nil value anyway.
	for i := range out {
		if out[i].Value1 == nil && out[i].Flag != FlagInvalid {
			out[i].Flag = FlagMissing
		}
	}

	var counts FlagCounts
	for i := range out {
		counts.add(out[i].Flag)
	}
	return out, counts
}

// duplicateKey identifies a record by its (timestamp, value_1, value_2)
// tuple. Nil values are distinguished from zero values.
type duplicateKey struct {
	ts         int64
	v1, v2     float64
	v1ok, v2ok bool
}

func keyOf(r HealthRecord) duplicateKey {
	k := duplicateKey{ts: r.Timestamp.UnixNano()}
	if r.Value1 != nil {
		k.v1, k.v1ok = *r.Value1, true
	}
	if r.Value2 != nil {
		k.v2, k.v2ok = *r.Value2, true
	}
	return k
}

// markDuplicates flags every record after the first occurrence of an
// identical (timestamp, value_1, value_2) tuple, in input order.
func markDuplicates(records []HealthRecord) {
	seen := make(map[duplicateKey]struct{}, len(records))
	for i := range records {
		key := keyOf(records[i])
		if _, dup := seen[key]; dup {
			records[i].Flag = FlagDuplicate
			continue
		}
		seen[key] = struct{}{}
	}
}

// validateRanges flags good records whose values fall outside the metric's
// valid ranges, boundaries inclusive. An invalid flag short-circuits all
// later classification for that record.
func validateRanges(records []HealthRecord, rules MetricRules) {
	for i := range records {
		r := &records[i]
		if r.Flag != FlagGood || r.Value1 == nil {
			continue
		}
		switch {
		case !rules.Value1Range.Contains(*r.Value1):
			r.Flag = FlagInvalid
		case r.Value2 != nil && rules.Value2Range != nil && !rules.Value2Range.Contains(*r.Value2):
			r.Flag = FlagInvalid
		case r.Value2 != nil && rules.RequireV1AboveV2 && *r.Value1 <= *r.Value2:
			r.Flag = FlagInvalid
		}
	}
}

// flagOutliers applies the z-score and Tukey IQR tests to records still
// flagged good, independently to value_1 and value_2. Either test firing on
// either value flags the record. Below minOutlierSamples no pass runs.
func flagOutliers(records []HealthRecord, rules MetricRules) {
	var candidates []int
	for i := range records {
		if records[i].Flag == FlagGood && records[i].Value1 != nil {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) < minOutlierSamples {
		return
	}

	values1 := make([]float64, len(candidates))
	var values2 []float64
	var owners2 []int // candidate position owning each value_2 sample
	for pos, idx := range candidates {
		values1[pos] = *records[idx].Value1
		if records[idx].Value2 != nil {
			values2 = append(values2, *records[idx].Value2)
			owners2 = append(owners2, pos)
		}
	}

	outliers := seriesOutliers(values1, rules.ZThreshold, rules.IQRFactor)
	for sub := range seriesOutliers(values2, rules.ZThreshold, rules.IQRFactor) {
		outliers[owners2[sub]] = struct{}{}
	}

	for pos := range outliers {
		records[candidates[pos]].Flag = FlagOutlier
	}
}

// seriesOutliers returns index positions flagged by either the z-score test
// (|z| > threshold) or the Tukey fence (beyond Q1/Q3 by factor times IQR).
func seriesOutliers(values []float64, zThreshold, iqrFactor float64) map[int]struct{} {
	outliers := make(map[int]struct{})
	if len(values) < minOutlierSamples {
		return outliers
	}

	for i, z := range zScores(values) {
		if math.Abs(z) > zThreshold {
			outliers[i] = struct{}{}
		}
	}

	q1, q3 := quartiles(values)
	iqr := q3 - q1
	lower := q1 - iqrFactor*iqr
	upper := q3 + iqrFactor*iqr
	for i, v := range values {
		if v < lower || v > upper {
			outliers[i] = struct{}{}
		}
	}
	return outliers
}
