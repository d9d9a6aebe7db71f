package analysis

import "math"

// classificationRule is one entry of the ordered rule table.
// Rules later in the table assume every earlier rule failed.
type classificationRule struct {
	Priority Priority
	Matches  func(m RouteMetric, threshold float64, cfg Config) bool
}

// classificationRules is evaluated top to bottom, first match wins.
// CLEAR is the fallthrough and has no entry.
var classificationRules = []classificationRule{
	{PriorityUnreliable, func(m RouteMetric, _ float64, _ Config) bool {
		return !m.Reliable
	}},
	{PriorityNoData, func(m RouteMetric, _ float64, _ Config) bool {
		return m.Density == nil || m.Pax == 0
	}},
	{PriorityHigh, func(m RouteMetric, threshold float64, cfg Config) bool {
		d := *m.Density
		return d >= threshold &&
			d >= cfg.MinDensity &&
			d >= threshold*cfg.HighPriorityMultiplier &&
			m.InadCount >= cfg.HighPriorityMinInad
	}},
	{PriorityWatchList, func(m RouteMetric, threshold float64, _ Config) bool {
		return *m.Density >= threshold
	}},
}

// Classify assigns exactly one label to a scored route.
func Classify(m RouteMetric, threshold float64, cfg Config) Priority {
	for _, rule := range classificationRules {
		if rule.Matches(m, threshold, cfg) {
			return rule.Priority
		}
	}
	return PriorityClear
}

// ClassifyAll returns a copy of metrics with Priority set on every row.
func ClassifyAll(metrics []RouteMetric, threshold float64, cfg Config) []RouteMetric {
	out := make([]RouteMetric, len(metrics))
	for i, m := range metrics {
		m.Priority = Classify(m, threshold, cfg)
		out[i] = m
	}
	return out
}

// Summarize counts classified routes per label. TotalInad counts every included case of
// the period, not only the cases on routes that passed the funnel.
func Summarize(cases []Case, metrics []RouteMetric, threshold float64, method ThresholdMethod) Summary {
	s := Summary{
		Threshold: roundTo(threshold, 4),
		Method:    method,
	}
	for _, c := range cases {
		if c.Included {
			s.TotalInad++
		}
	}
	for _, m := range metrics {
		switch m.Priority {
		case PriorityHigh:
			s.HighPriority++
		case PriorityWatchList:
			s.WatchList++
		case PriorityClear:
			s.Clear++
		case PriorityUnreliable:
			s.Unreliable++
		case PriorityNoData:
			s.NoData++
		}
	}
	return s
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
