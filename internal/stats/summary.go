package stats

import (
	"math"
	"slices"

	"github.com/DoyleJ11/ti-helper/internal/store"
)

// Summarize computes the distribution of samples. It returns false when there
// are no samples. Std is the population standard deviation and the quartiles
// are linearly interpolated between closest ranks.
func Summarize(samples []float64) (Summary, bool) {
	if len(samples) == 0 {
		return Summary{}, false
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}

	return Summary{
		Mean:  mean,
		Std:   math.Sqrt(sq / float64(len(sorted))),
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Q25:   percentile(sorted, 0.25),
		Q75:   percentile(sorted, 0.75),
	}, true
}

// percentile expects sorted input.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median is the 50th percentile of samples, zero when empty.
func Median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return percentile(sorted, 0.5)
}

// samplesOf extracts one metric from each row.
func samplesOf(rows []store.MatchRow, m Metric) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		switch m {
		case MetricLastHits:
			out = append(out, float64(r.LastHitsAt5))
		case MetricKills:
			out = append(out, float64(r.Kills))
		}
	}
	return out
}
