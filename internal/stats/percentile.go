// Package stats holds the small numeric helpers behind the leaderboard tables.
package stats

import (
	"math"
	"sort"
)

// TopDecile is the fraction of rows that clear a percentile threshold.
const TopDecile = 0.1

// PercentileThreshold returns the 90th percentile cut of values: the value a
// row must reach to land in the top decile. An empty input yields +Inf so that
// no row can qualify.
func PercentileThreshold(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(1)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	idx := int(math.Floor(TopDecile*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// MeanStd returns the population mean and standard deviation.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(len(values)))
	return mean, std
}

// ZScores standardises values against their own mean and deviation. A zero
// deviation maps every value to 0.
func ZScores(values []float64) []float64 {
	mean, std := MeanStd(values)
	out := make([]float64, len(values))
	if std == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}
