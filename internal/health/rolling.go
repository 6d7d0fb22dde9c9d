package health

import (
	"log/slog"
	"math"
)

const (
	// DefaultRollingWindow is the rolling correlation window size in days.
	DefaultRollingWindow = 14
	// minWindowSamples is the fewest valid paired samples a window position
	// needs to produce a value instead of a gap.
	minWindowSamples = 7
	// rollingExtraDays is how many days beyond the window the series must
	// span before the rolling analysis runs at all.
	rollingExtraDays = 5
)

// RollingCorrelations slides a fixed window across the date-ordered series
// one day at a time and produces a gap-tolerant correlation trajectory per
// pair, with summary statistics and a trend classification.
func RollingCorrelations(series DailySeries, window int, logger *slog.Logger) map[MetricPair]RollingCorrelation {
	if logger == nil {
		logger = slog.Default()
	}
	if window <= 0 {
		window = DefaultRollingWindow
	}

	dates := series.Dates()
	if len(dates) < window+rollingExtraDays {
		return map[MetricPair]RollingCorrelation{}
	}

	results := make(map[MetricPair]RollingCorrelation)
	for _, pair := range CorrelationPairs {
		a, b := series.Column(pair.A), series.Column(pair.B)
		if len(a) == 0 || len(b) == 0 {
			continue
		}

		trajectory := make([]*float64, 0, len(dates)-window)
		var valid []float64
		for i := window; i < len(dates); i++ {
			r, ok := windowCorrelation(a, b, dates[i-window:i])
			if !ok {
				trajectory = append(trajectory, nil)
				continue
			}
			rounded := roundTo(r, 3)
			trajectory = append(trajectory, &rounded)
			valid = append(valid, r)
		}
		if len(valid) == 0 {
			continue
		}

		results[pair] = RollingCorrelation{
			Pair:   pair,
			Series: trajectory,
			Mean:   roundTo(meanOf(valid), 3),
			Std:    roundTo(popStdDev(valid), 3),
			Trend:  classifyTrend(valid),
		}
	}
	return results
}

// windowCorrelation computes the Pearson coefficient over the paired values
// inside one window position. ok is false when the window holds too few
// valid samples or the coefficient is degenerate.
func windowCorrelation(a, b DailyColumn, windowDates []Date) (r float64, ok bool) {
	var x, y []float64
	for _, d := range windowDates {
		av, aok := a[d]
		bv, bok := b[d]
		if !aok || !bok {
			continue
		}
		x = append(x, av)
		y = append(y, bv)
	}
	if len(x) < minWindowSamples {
		return 0, false
	}
	r, _, err := pearsonTest(x, y)
	if err != nil {
		return 0, false
	}
	return r, true
}

// classifyTrend fits an ordinary-least-squares slope over the gap-free
// correlation subsequence and labels its direction.
func classifyTrend(valid []float64) TrendAnalysis {
	if len(valid) < 3 {
		return TrendAnalysis{Trend: TrendInsufficient}
	}
	slope, ok := olsSlope(valid)
	if !ok {
		return TrendAnalysis{Trend: TrendInsufficient}
	}

	trend := TrendStable
	switch {
	case math.Abs(slope) < 0.001:
		trend = TrendStable
	case slope > 0.005:
		trend = TrendStrengthening
	case slope < -0.005:
		trend = TrendWeakening
	}

	return TrendAnalysis{
		Trend:          trend,
		Slope:          roundTo(slope, 4),
		StrengthChange: roundTo(slope*float64(len(valid)), 3),
	}
}
