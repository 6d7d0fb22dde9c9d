package health

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Aggregation selects how same-day readings collapse into a daily value.
type Aggregation string

const (
	// AggregateSum is for cumulative counts where readings are partial totals.
	AggregateSum Aggregation = "sum"
	// AggregateMean is for rate and level metrics.
	AggregateMean Aggregation = "mean"
)

// Range is an inclusive validation interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v is inside the range, boundaries included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// MetricRules holds the cleaning and aggregation parameters for one metric.
type MetricRules struct {
	// Value1Range bounds the primary value; violations flag the record invalid.
	Value1Range Range `yaml:"value_1_range"`
	// Value2Range bounds the secondary value when present. Nil disables the check.
	Value2Range *Range `yaml:"value_2_range,omitempty"`
	// RequireV1AboveV2 enforces value_1 > value_2 when both are present
	// (systolic must exceed diastolic).
	RequireV1AboveV2 bool `yaml:"require_v1_above_v2,omitempty"`
	// ZThreshold is the |z| cutoff for the z-score outlier test.
	ZThreshold float64 `yaml:"z_threshold"`
	// IQRFactor scales the Tukey fence for the record-level outlier test.
	// Deliberately independent from the daily-anomaly and recovery factors.
	IQRFactor float64 `yaml:"iqr_factor"`
	// Aggregate selects the daily aggregation rule.
	Aggregate Aggregation `yaml:"aggregate"`
}

// RuleSet maps each metric to its cleaning rules.
type RuleSet map[Metric]MetricRules

// DefaultRules returns the standard per-metric ruleset.
func DefaultRules() RuleSet {
	return RuleSet{
		MetricBP: {
			Value1Range:      Range{Min: 80, Max: 200},  // systolic, mmHg
			Value2Range:      &Range{Min: 50, Max: 130}, // diastolic, mmHg
			RequireV1AboveV2: true,
			ZThreshold:       3.0,
			IQRFactor:        2.5,
			Aggregate:        AggregateMean,
		},
		MetricSleep: {
			Value1Range: Range{Min: 0, Max: 24}, // hours
			ZThreshold:  2.5,
			IQRFactor:   2.0,
			Aggregate:   AggregateMean,
		},
		MetricSteps: {
			Value1Range: Range{Min: 0, Max: 50000},
			ZThreshold:  3.0,
			IQRFactor:   3.0,
			Aggregate:   AggregateSum,
		},
		MetricHR: {
			Value1Range: Range{Min: 30, Max: 220}, // bpm
			ZThreshold:  2.5,
			IQRFactor:   2.0,
			Aggregate:   AggregateMean,
		},
		MetricSpO2: {
			Value1Range: Range{Min: 80, Max: 100}, // percent
			ZThreshold:  2.0,
			IQRFactor:   1.5,
			Aggregate:   AggregateMean,
		},
		MetricTemp: {
			Value1Range: Range{Min: 90, Max: 105}, // Fahrenheit
			ZThreshold:  2.0,
			IQRFactor:   1.5,
			Aggregate:   AggregateMean,
		},
	}
}

// Validate checks that the ruleset covers only known metrics with sane
// parameters.
func (rs RuleSet) Validate() error {
	for metric, rules := range rs {
		if !metric.IsValid() {
			return fmt.Errorf("unknown metric %q in ruleset", metric)
		}
		if rules.Value1Range.Min > rules.Value1Range.Max {
			return fmt.Errorf("%s: value_1 range min %.1f exceeds max %.1f",
				metric, rules.Value1Range.Min, rules.Value1Range.Max)
		}
		if rules.Value2Range != nil && rules.Value2Range.Min > rules.Value2Range.Max {
			return fmt.Errorf("%s: value_2 range min %.1f exceeds max %.1f",
				metric, rules.Value2Range.Min, rules.Value2Range.Max)
		}
		if rules.ZThreshold <= 0 {
			return fmt.Errorf("%s: z threshold must be positive, got %.2f", metric, rules.ZThreshold)
		}
		if rules.IQRFactor <= 0 {
			return fmt.Errorf("%s: IQR factor must be positive, got %.2f", metric, rules.IQRFactor)
		}
		switch rules.Aggregate {
		case AggregateSum, AggregateMean:
		default:
			return fmt.Errorf("%s: unknown aggregation %q", metric, rules.Aggregate)
		}
	}
	return nil
}

// LoadRulesFile reads per-metric rule overrides from a YAML file and merges
// them over the defaults. Metrics absent from the file keep their defaults.
func LoadRulesFile(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	overrides := make(RuleSet)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	merged := DefaultRules().Merge(overrides)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return merged, nil
}

// Merge overlays non-zero rules from other onto a copy of the ruleset.
// Metrics absent from other keep their existing rules.
func (rs RuleSet) Merge(other RuleSet) RuleSet {
	merged := make(RuleSet, len(rs))
	for m, r := range rs {
		merged[m] = r
	}
	for m, r := range other {
		merged[m] = r
	}
	return merged
}
