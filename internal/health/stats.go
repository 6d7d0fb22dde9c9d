package health

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// errDegenerate marks a pair whose correlation is undefined (for example a
// constant series). Callers treat it as a per-pair condition, not a failure
// of the participant's analysis.
var errDegenerate = fmt.Errorf("degenerate series: correlation undefined")

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// popStdDev returns the population standard deviation (ddof=0).
func popStdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	m := stat.Mean(values, nil)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// zScores returns population z-scores for the series. A zero-variance series
// yields all-zero scores so no value can trip the threshold.
func zScores(values []float64) []float64 {
	scores := make([]float64, len(values))
	sd := popStdDev(values)
	if sd == 0 {
		return scores
	}
	m := stat.Mean(values, nil)
	for i, v := range values {
		scores[i] = (v - m) / sd
	}
	return scores
}

// percentileSorted returns the value at the given fraction (0..1) of a sorted
// series using linear interpolation between closest ranks.
func percentileSorted(sorted []float64, frac float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if frac <= 0 {
		return sorted[0]
	}
	if frac >= 1 {
		return sorted[n-1]
	}
	index := frac * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// quartiles returns Q1 and Q3 of the series.
func quartiles(values []float64) (q1, q3 float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, 0.25), percentileSorted(sorted, 0.75)
}

// correlationPValue is the two-sided p-value for a correlation coefficient
// under the t-distribution with n-2 degrees of freedom.
func correlationPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.CDF(-math.Abs(t))
}

// pearsonTest computes the Pearson correlation of two equal-length series
// with its two-sided significance test.
func pearsonTest(x, y []float64) (r, p float64, err error) {
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, 0, errDegenerate
	}
	return r, correlationPValue(r, len(x)), nil
}

// spearmanTest computes the rank correlation of two equal-length series.
// The p-value uses the same t-approximation applied to the rank coefficient.
func spearmanTest(x, y []float64) (r, p float64, err error) {
	return pearsonTest(ranks(x), ranks(y))
}

// ranks assigns 1-based ranks with ties receiving their average rank.
func ranks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranked := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Average rank across the tie group.
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranked[order[k]] = avg
		}
		i = j + 1
	}
	return ranked
}

// olsSlope fits y against its index positions and returns the slope.
func olsSlope(y []float64) (float64, bool) {
	if len(y) < 2 {
		return 0, false
	}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	_, slope := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, false
	}
	return slope, true
}

// meanOf is a thin alias so call sites read naturally next to popStdDev.
func meanOf(values []float64) float64 {
	return stat.Mean(values, nil)
}

// medianOf returns the median via the same interpolation as quartiles.
func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, 0.5)
}
