// Package stats computes the reference aggregate set {min, max, mean, std, p15}
// of a metric within each group of rows and broadcasts it back onto the rows.
//
// Standard deviation is the sample (n-1) estimator and is NaN for groups with
// fewer than two observations. P15 uses linear interpolation between order
// statistics. Within a group Min <= P15 <= Max and Min <= Mean <= Max always
// hold; P15 and Mean have no fixed order.
package stats

import (
	"math"
	"slices"

	"github.com/pable/go-load-metrics/internal/model"
)

// ReferenceQuantile is the lower reference percentile used for scoring.
const ReferenceQuantile = 0.15

// Percentile returns the p-quantile (0 <= p <= 1) of sorted values, linearly
// interpolating between the two closest ranks at index p*(n-1).
// Returns NaN for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	count := len(sorted)
	if count == 0 {
		return math.NaN()
	}
	idx := p * float64(count-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= count {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Describe computes the aggregate set of values, skipping NaN.
// An empty (or all-NaN) input yields NaN in every field.
func Describe(values []float64) model.Aggregates {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	n := len(clean)
	if n == 0 {
		nan := math.NaN()
		return model.Aggregates{Min: nan, Max: nan, Mean: nan, Std: nan, P15: nan}
	}
	slices.Sort(clean)

	var sum float64
	for _, v := range clean {
		sum += v
	}
	// Clamp so rounding cannot push the mean of near-constant values outside [min, max].
	mean := math.Min(math.Max(sum/float64(n), clean[0]), clean[n-1])

	std := math.NaN()
	switch {
	case n < 2:
	case clean[0] == clean[n-1]:
		std = 0
	default:
		var ss float64
		for _, v := range clean {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	return model.Aggregates{
		Min:   clean[0],
		Max:   clean[n-1],
		Mean:  mean,
		Std:   std,
		P15:   Percentile(clean, ReferenceQuantile),
		Count: n,
	}
}

// Group describes value(i) for every row i in [0, n), grouped by key(i).
func Group[K comparable](n int, key func(int) K, value func(int) float64) map[K]model.Aggregates {
	buckets := make(map[K][]float64)
	for i := 0; i < n; i++ {
		k := key(i)
		buckets[k] = append(buckets[k], value(i))
	}
	out := make(map[K]model.Aggregates, len(buckets))
	for k, vs := range buckets {
		out[k] = Describe(vs)
	}
	return out
}

// Broadcast returns, for each row, the aggregates of the row's group.
func Broadcast[K comparable](n int, key func(int) K, groups map[K]model.Aggregates) []model.Aggregates {
	out := make([]model.Aggregates, n)
	for i := range out {
		out[i] = groups[key(i)]
	}
	return out
}

// Transform is Group followed by Broadcast: one aggregate set per row,
// row count preserved.
func Transform[K comparable](n int, key func(int) K, value func(int) float64) []model.Aggregates {
	return Broadcast(n, key, Group(n, key, value))
}
