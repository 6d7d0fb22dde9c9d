package health

import (
	"log/slog"
	"math"
)

// minPairDays is the smallest overlap the pairwise analyzers accept.
const minPairDays = 5

// SameDayCorrelations correlates every enumerated metric pair on matching
// dates. Pairs with fewer than minPairDays overlapping days, or whose
// coefficients are degenerate, are omitted rather than reported as errors.
func SameDayCorrelations(series DailySeries, logger *slog.Logger) map[MetricPair]CorrelationResult {
	if logger == nil {
		logger = slog.Default()
	}
	results := make(map[MetricPair]CorrelationResult)

	for _, pair := range CorrelationPairs {
		x, y := alignSameDay(series.Column(pair.A), series.Column(pair.B))
		if len(x) < minPairDays {
			continue
		}
		result, err := correlatePair(pair, x, y, false)
		if err != nil {
			logger.Warn("skipping same-day correlation",
				"pair", pair.Key(),
				"n_days", len(x),
				"error", err,
			)
			continue
		}
		results[pair] = result
	}
	return results
}

// LagCorrelations correlates metric A on day d against metric B on day d+1,
// with the same gating and machinery as the same-day analyzer.
func LagCorrelations(series DailySeries, logger *slog.Logger) map[MetricPair]CorrelationResult {
	if logger == nil {
		logger = slog.Default()
	}
	results := make(map[MetricPair]CorrelationResult)

	for _, pair := range CorrelationPairs {
		x, y := alignNextDay(series.Column(pair.A), series.Column(pair.B))
		if len(x) < minPairDays {
			continue
		}
		result, err := correlatePair(pair, x, y, true)
		if err != nil {
			logger.Warn("skipping lag correlation",
				"pair", pair.LagKey(),
				"n_days", len(x),
				"error", err,
			)
			continue
		}
		results[pair] = result
	}
	return results
}

// alignSameDay collects value pairs for the dates present in both columns,
// in ascending date order.
func alignSameDay(a, b DailyColumn) (x, y []float64) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}
	for _, d := range a.Dates() {
		bv, ok := b[d]
		if !ok {
			continue
		}
		x = append(x, a[d])
		y = append(y, bv)
	}
	return x, y
}

// alignNextDay pairs each value of a with b's value on the following day.
func alignNextDay(a, b DailyColumn) (x, y []float64) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}
	for _, d := range a.Dates() {
		bv, ok := b[d.AddDate(0, 0, 1)]
		if !ok {
			continue
		}
		x = append(x, a[d])
		y = append(y, bv)
	}
	return x, y
}

// correlatePair runs both correlation methods over aligned values and
// assembles the result. Coefficients are rounded for stable serialization;
// significance and labels come from the unrounded values.
func correlatePair(pair MetricPair, x, y []float64, lag bool) (CorrelationResult, error) {
	pearsonR, pearsonP, err := pearsonTest(x, y)
	if err != nil {
		return CorrelationResult{}, err
	}
	spearmanR, spearmanP, err := spearmanTest(x, y)
	if err != nil {
		return CorrelationResult{}, err
	}

	pearson := Coefficient{
		R:           roundTo(pearsonR, 3),
		PValue:      roundTo(pearsonP, 4),
		Significant: pearsonP < significanceLevel,
	}
	spearman := Coefficient{
		R:           roundTo(spearmanR, 3),
		PValue:      roundTo(spearmanP, 4),
		Significant: spearmanP < significanceLevel,
	}

	interpretation := interpretSameDay(
		Coefficient{R: pearsonR, PValue: pearsonP},
		Coefficient{R: spearmanR, PValue: spearmanP},
	)
	if lag {
		interpretation = interpretNextDay(pair.A, pair.B, Coefficient{R: pearsonR, PValue: pearsonP})
	}

	return CorrelationResult{
		Pair:           pair,
		NDays:          len(x),
		Pearson:        pearson,
		Spearman:       spearman,
		Confidence:     ConfidenceFor(len(x), math.Max(math.Abs(pearsonR), math.Abs(spearmanR))),
		Interpretation: interpretation,
	}, nil
}
