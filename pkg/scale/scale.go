// Package scale detects geometric/modular numeric progressions within one
// category's values (spacing scales, typographic modular scales).
package scale

import (
	"math"
	"sort"

	"github.com/gnana997/tokensync/pkg/token"
)

// Known progression ratios per category, tried in order.
var (
	spacingRatios    = []float64{2, 1.5, 1.25, 1.618, 3, 4}
	typographyRatios = []float64{1.2, 1.25, 1.333, 1.414, 1.5, 1.618, 2}
)

// Relative tolerances for accepting a consecutive ratio as matching a
// candidate. Typography scales are tighter in practice.
const (
	spacingTolerance    = 0.15
	typographyTolerance = 0.12

	// minMatchFraction is the share of consecutive ratios that must fall
	// within tolerance of a candidate for it to be accepted.
	minMatchFraction = 0.6
)

// Detect finds a geometric progression in a category's numeric values.
// Values are deduplicated and sorted first; fewer than 3 distinct positive
// values can't establish a pattern. A nil result means "no detectable
// pattern", not an error.
func Detect(values []float64, cat token.Category) *token.ScalePattern {
	distinct := dedupe(values)
	if len(distinct) < 3 {
		return nil
	}

	ratios := consecutiveRatios(distinct)

	candidates, tolerance := spacingRatios, spacingTolerance
	if cat == token.CategoryTypography {
		candidates, tolerance = typographyRatios, typographyTolerance
	}

	for _, candidate := range candidates {
		if matchFraction(ratios, candidate, tolerance) >= minMatchFraction {
			return &token.ScalePattern{
				BaseValue: distinct[0],
				Ratio:     candidate,
				Values:    distinct,
			}
		}
	}

	// No known progression; accept a custom ratio only when every observed
	// ratio is mutually close to the median.
	med := median(ratios)
	for _, r := range ratios {
		if relativeDiff(r, med) > tolerance {
			return nil
		}
	}
	return &token.ScalePattern{
		BaseValue: distinct[0],
		Ratio:     math.Round(med*1000) / 1000,
		Values:    distinct,
	}
}

func dedupe(values []float64) []float64 {
	seen := make(map[float64]bool, len(values))
	var out []float64
	for _, v := range values {
		if v > 0 && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func consecutiveRatios(sorted []float64) []float64 {
	ratios := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		ratios = append(ratios, sorted[i]/sorted[i-1])
	}
	return ratios
}

func matchFraction(ratios []float64, candidate, tolerance float64) float64 {
	if len(ratios) == 0 {
		return 0
	}
	matched := 0
	for _, r := range ratios {
		if relativeDiff(r, candidate) <= tolerance {
			matched++
		}
	}
	return float64(matched) / float64(len(ratios))
}

func relativeDiff(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return math.Abs(a-b) / b
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
