package analysis

import (
	"math"
	"sort"
)

// ComputeThreshold derives the density cutoff of a period from the reliable routes that
// have a density. When there are none it returns cfg.MinDensity.
func ComputeThreshold(metrics []RouteMetric, cfg Config) (float64, error) {
	method, err := ParseThresholdMethod(string(cfg.ThresholdMethod))
	if err != nil {
		return 0, err
	}

	values := reliableDensities(metrics)
	if len(values) == 0 {
		return cfg.MinDensity, nil
	}
	sort.Float64s(values)

	switch method {
	case ThresholdTrimmedMean:
		return trimmedMean(values), nil
	case ThresholdMean:
		return mean(values), nil
	default:
		return median(values), nil
	}
}

func reliableDensities(metrics []RouteMetric) []float64 {
	values := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		if !m.Reliable || m.Density == nil {
			continue
		}
		values = append(values, *m.Density)
	}
	return values
}

// median expects sorted input
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile uses linear interpolation between closest ranks; expects sorted input
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// trimmedMean keeps values within [p10, p90] inclusive; expects sorted input
func trimmedMean(sorted []float64) float64 {
	lo := quantile(sorted, TrimLowerQuantile)
	hi := quantile(sorted, TrimUpperQuantile)

	kept := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v >= lo && v <= hi {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return median(sorted)
	}
	return mean(kept)
}
