package analysis

// DetectSystemic folds classified periods, in the given order, into per-route histories of
// flagged (HIGH_PRIORITY or WATCH_LIST) appearances and returns the routes flagged in at
// least cfg.SystemicPeriods periods. Routes are returned in the order they were first
// flagged; ties within a period keep that period's route order.
//
// Appearances are counted across the whole series whether or not the periods are adjacent.
func DetectSystemic(periods []ClassifiedPeriod, cfg Config) []SystemicCase {
	type tracked struct {
		airline string
		origin  string
		history []HistoryEntry
		indices []int
	}

	byRoute := make(map[routeKey]*tracked)
	var order []*tracked

	for idx, p := range periods {
		for _, m := range p.Routes {
			if !m.Priority.Flagged() {
				continue
			}
			key := routeKey{airline: m.Airline, origin: m.Origin}
			t, ok := byRoute[key]
			if !ok {
				t = &tracked{airline: m.Airline, origin: m.Origin}
				byRoute[key] = t
				order = append(order, t)
			}
			// A route is recorded once per period even if the input repeats it.
			if n := len(t.indices); n > 0 && t.indices[n-1] == idx {
				continue
			}
			t.history = append(t.history, HistoryEntry{
				Period:   p.Period,
				Priority: m.Priority,
				Density:  copyDensity(m.Density),
			})
			t.indices = append(t.indices, idx)
		}
	}

	cases := make([]SystemicCase, 0)
	for _, t := range order {
		appearances := len(t.history)
		if appearances < cfg.SystemicPeriods {
			continue
		}
		cases = append(cases, SystemicCase{
			Airline:        t.airline,
			Origin:         t.origin,
			Appearances:    appearances,
			Recurring:      appearances >= cfg.SystemicPeriods,
			MaxConsecutive: maxConsecutive(t.indices),
			Trend:          historyTrend(t.history),
			LatestPriority: t.history[appearances-1].Priority,
			History:        t.history,
		})
	}
	return cases
}

// historyTrend compares the first and last recorded density.
func historyTrend(history []HistoryEntry) Trend {
	if len(history) < 2 {
		return TrendStable
	}
	first := history[0].Density
	last := history[len(history)-1].Density
	if first == nil || last == nil || *first == 0 || *last == 0 {
		return TrendStable
	}

	change := (*last - *first) / *first * 100
	switch {
	case change > TrendChangePercent:
		return TrendWorsening
	case change < -TrendChangePercent:
		return TrendImproving
	default:
		return TrendStable
	}
}

// maxConsecutive returns the longest run of adjacent series positions.
func maxConsecutive(indices []int) int {
	if len(indices) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(indices); i++ {
		if indices[i] == indices[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// SummarizeSystemic counts systemic cases overall, worsening and recurring.
func SummarizeSystemic(cases []SystemicCase) SystemicSummary {
	s := SystemicSummary{Total: len(cases)}
	for _, c := range cases {
		if c.Trend == TrendWorsening {
			s.Worsening++
		}
		if c.Recurring {
			s.Recurring++
		}
	}
	return s
}

// ComputeHistoricTrend compares the flagged route counts of the first and last snapshot.
func ComputeHistoricTrend(snapshots []PeriodSnapshot) HistoricTrend {
	if len(snapshots) == 0 {
		return HistoricTrend{Direction: DirectionFlat}
	}
	first := snapshots[0]
	last := snapshots[len(snapshots)-1]

	trend := HistoricTrend{
		HighPriorityChange: last.HighPriorityCount - first.HighPriorityCount,
		WatchListChange:    last.WatchListCount - first.WatchListCount,
	}
	trend.TotalChange = trend.HighPriorityChange + trend.WatchListChange

	switch {
	case trend.TotalChange > 0:
		trend.Direction = DirectionUp
	case trend.TotalChange < 0:
		trend.Direction = DirectionDown
	default:
		trend.Direction = DirectionFlat
	}
	return trend
}

func copyDensity(d *float64) *float64 {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
