package health

import (
	"fmt"
	"math"
)

// Confidence is the qualitative strength-of-evidence label for a
// correlation, derived from sample size and coefficient magnitude.
type Confidence string

const (
	ConfidenceSolid     Confidence = "solid"
	ConfidenceLikely    Confidence = "likely"
	ConfidenceTentative Confidence = "tentative"
	ConfidenceLow       Confidence = "low-confidence"
)

// significanceLevel is the p-value cutoff shared by every analyzer.
const significanceLevel = 0.05

// ConfidenceFor classifies the evidence behind a correlation. r is the
// larger absolute coefficient of the two methods.
func ConfidenceFor(nDays int, r float64) Confidence {
	abs := math.Abs(r)
	switch {
	case nDays >= 30 && abs >= 0.5:
		return ConfidenceSolid
	case nDays >= 14 && abs >= 0.3:
		return ConfidenceLikely
	case abs >= 0.2:
		return ConfidenceTentative
	default:
		return ConfidenceLow
	}
}

// strongerOf picks the coefficient with the larger |r|, Pearson winning ties.
func strongerOf(pearson, spearman Coefficient) Coefficient {
	if math.Abs(pearson.R) >= math.Abs(spearman.R) {
		return pearson
	}
	return spearman
}

// interpretSameDay renders the same-day association of a pair in plain
// language, bucketed by the stronger coefficient's magnitude. Wording stays
// associative; nothing here may imply causation.
func interpretSameDay(pearson, spearman Coefficient) string {
	c := strongerOf(pearson, spearman)
	if c.PValue >= significanceLevel {
		return "No significant relationship detected"
	}

	abs := math.Abs(c.R)
	var strength string
	switch {
	case abs >= 0.7:
		strength = "Strong"
	case abs >= 0.5:
		strength = "Moderate"
	case abs >= 0.3:
		strength = "Weak"
	default:
		strength = "Very weak"
	}

	direction := "positive"
	if c.R < 0 {
		direction = "negative"
	}
	return fmt.Sprintf("%s %s correlation", strength, direction)
}

// interpretNextDay renders the lag-1 association directionally: today's A
// against tomorrow's B, described as an observed next-day association only.
func interpretNextDay(a, b Metric, pearson Coefficient) string {
	if pearson.PValue >= significanceLevel {
		return fmt.Sprintf("No significant next-day association between %s and %s", a, b)
	}

	abs := math.Abs(pearson.R)
	var degree string
	switch {
	case abs >= 0.5:
		degree = "markedly"
	case abs >= 0.3:
		degree = "moderately"
	default:
		degree = "slightly"
	}

	direction := "higher"
	if pearson.R < 0 {
		direction = "lower"
	}
	return fmt.Sprintf("Higher %s today precedes a %s %s %s the next day", a, degree, direction, b)
}
